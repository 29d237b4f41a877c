package middleware

import (
	"context"
	"net/http"
	"time"

	"mini-feign/template"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-Id"

// LoggingMiddleware logs every request with its status and latency, and tags
// requests that carry no X-Request-Id with a fresh one.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *template.Request) (*http.Response, error) {
			if req.Header(RequestIDHeader) == "" {
				req = req.WithHeader(RequestIDHeader, uuid.NewString())
			}

			start := time.Now()
			resp, err := next(ctx, req)
			fields := []zap.Field{
				zap.String("method", req.Method()),
				zap.String("url", req.URL()),
				zap.String("requestId", req.Header(RequestIDHeader)),
				zap.Int("bytes", len(req.Body())),
				zap.Duration("duration", time.Since(start)),
			}
			if err != nil {
				logger.Warn("request failed", append(fields, zap.Error(err))...)
				return resp, err
			}
			logger.Info("request completed", append(fields, zap.Int("status", resp.StatusCode))...)
			return resp, nil
		}
	}
}
