package middleware

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"mini-feign/template"

	"go.uber.org/zap"
)

// RetryMiddleware retries timeouts, refused connections and 502/503/504 answers
// with exponential backoff. Other failures are returned immediately.
func RetryMiddleware(maxRetries int, baseDelay time.Duration, logger *zap.Logger) Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *template.Request) (*http.Response, error) {
			resp, err := next(ctx, req)
			for i := 0; i < maxRetries; i++ {
				if !retryable(resp, err) {
					return resp, err // Success or non-retryable error
				}

				var reason string
				if err != nil {
					reason = err.Error()
				} else {
					reason = resp.Status
					io.Copy(io.Discard, resp.Body)
					resp.Body.Close()
				}
				logger.Info("retrying request",
					zap.Int("attempt", i+1),
					zap.String("method", req.Method()),
					zap.String("url", req.URL()),
					zap.String("reason", reason),
				)

				select {
				case <-time.After(baseDelay * time.Duration(1<<i)): // Exponential backoff
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				resp, err = next(ctx, req)
			}
			return resp, err // Return last response after retries
		}
	}
}

func retryable(resp *http.Response, err error) bool {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return false
		}
		if errors.Is(err, ErrTimeout) || errors.Is(err, syscall.ECONNREFUSED) {
			return true
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true
		}
		return strings.Contains(err.Error(), "connection refused")
	}
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}
