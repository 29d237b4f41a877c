package server

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"mini-feign/charset"
	"mini-feign/codec"

	"go.uber.org/zap"
)

// handleCall decodes the body, invokes the method and writes the encoded reply.
// Status codes: 404 unknown method, 413 body too large, 415 no codec for the
// request, 400 undecodable body, 406 no codec for Accept, 500 handler error.
func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	svc, method, ok := s.lookup(r.PathValue("service"), r.PathValue("method"))
	if !ok {
		http.Error(w, "rpc: can't find "+r.PathValue("service")+"."+r.PathValue("method"), http.StatusNotFound)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	contentType := r.Header.Get("Content-Type")
	argv := reflect.New(method.ArgType)
	if len(data) > 0 {
		dec := codec.FindDecoder(s.codecs, argv.Interface(), contentType)
		if dec == nil {
			http.Error(w, "unsupported content type "+contentType, http.StatusUnsupportedMediaType)
			return
		}
		if err := dec.Decode(data, argv.Interface()); err != nil {
			http.Error(w, "malformed request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	replyv := reflect.New(method.ReplyType)
	if err := svc.Call(r.Context(), method, argv, replyv); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	reply := replyv.Interface()
	enc := s.negotiate(reply, r.Header.Get("Accept"), contentType)
	if enc == nil {
		http.Error(w, "no acceptable representation", http.StatusNotAcceptable)
		return
	}
	out, err := enc.Encode(reply)
	if err != nil {
		s.logger.Error("failed to encode reply", zap.String("service", svc.name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ct := enc.ContentType()
	if !enc.Binary() {
		ct = charset.WithContentType(ct, charset.UTF8)
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

// negotiate picks the reply codec: each Accept entry in order, then the request's
// own media type, then whatever codec takes the value.
func (s *Server) negotiate(reply any, accept, contentType string) codec.Codec {
	for _, mt := range strings.Split(accept, ",") {
		mt = codec.MediaType(mt)
		if mt == "" || mt == "*/*" {
			continue
		}
		if c := codec.FindEncoder(s.codecs, reply, mt); c != nil {
			return c
		}
	}
	if accept != "" && !strings.Contains(accept, "*/*") {
		return nil
	}
	if c := codec.FindEncoder(s.codecs, reply, codec.MediaType(contentType)); c != nil {
		return c
	}
	return codec.FindEncoder(s.codecs, reply, "")
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func accessLog(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		logger.Info("handled request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("requestId", r.Header.Get("X-Request-Id")),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
