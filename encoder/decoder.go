package encoder

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"mini-feign/charset"
	"mini-feign/codec"

	"go.uber.org/zap"
)

type Decoder struct {
	codecs    []codec.Codec
	decode404 bool
	logger    *zap.Logger
}

type DecoderOption func(*Decoder)

func WithDecoderCodecs(codecs ...codec.Codec) DecoderOption {
	return func(d *Decoder) {
		d.codecs = codecs
	}
}

// WithDecode404 makes a 404 response leave the target untouched instead of failing.
func WithDecode404() DecoderOption {
	return func(d *Decoder) {
		d.decode404 = true
	}
}

func WithDecoderLogger(logger *zap.Logger) DecoderOption {
	return func(d *Decoder) {
		d.logger = logger
	}
}

func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		codecs: codec.Default(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode404 reports whether 404 responses should be handed to Decode.
func (d *Decoder) Decode404() bool {
	return d.decode404
}

// Decode reads resp's body into v and closes it. An empty body or a nil v is a no-op.
// Text bodies declared in a charset other than UTF-8 are converted to UTF-8 first.
func (d *Decoder) Decode(resp *http.Response, v any) error {
	defer resp.Body.Close()

	if v == nil || (resp.StatusCode == http.StatusNotFound && d.decode404) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	contentType := resp.Header.Get("Content-Type")
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &DecodeError{TargetType: fmt.Sprintf("%T", v), ContentType: contentType, Status: resp.StatusCode, Err: err}
	}
	if len(data) == 0 {
		return nil
	}

	c := codec.FindDecoder(d.codecs, v, contentType)
	if c == nil {
		return &DecodeError{TargetType: fmt.Sprintf("%T", v), ContentType: contentType, Status: resp.StatusCode}
	}

	if cs := charset.FromContentType(contentType); cs != "" && !c.Binary() && !strings.EqualFold(charset.Canonical(cs), charset.UTF8) {
		text, err := charset.Decode(data, cs)
		if err != nil {
			return &DecodeError{TargetType: fmt.Sprintf("%T", v), ContentType: contentType, Status: resp.StatusCode, Err: err}
		}
		data = []byte(text)
	}

	if err := c.Decode(data, v); err != nil {
		return &DecodeError{TargetType: fmt.Sprintf("%T", v), ContentType: contentType, Status: resp.StatusCode, Err: err}
	}

	d.logger.Debug("decoded response body",
		zap.String("codec", c.Type().String()),
		zap.String("contentType", contentType),
		zap.Int("bytes", len(data)),
	)
	return nil
}
