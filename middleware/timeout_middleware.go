package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"mini-feign/template"
)

var ErrTimeout = errors.New("request timed out")

type result struct {
	resp *http.Response
	err  error
}

// TimeOutMiddleware bounds the time until response headers arrive. The deadline
// stays attached to the response body and is released when the body is closed.
func TimeOutMiddleware(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(parent context.Context, req *template.Request) (*http.Response, error) {
			ctx, cancel := context.WithTimeout(parent, timeout)

			done := make(chan result, 1)
			go func() {
				resp, err := next(ctx, req)
				done <- result{resp, err}
			}()

			select {
			case r := <-done:
				if r.err != nil {
					cancel()
					if errors.Is(ctx.Err(), context.DeadlineExceeded) {
						return nil, errors.Join(ErrTimeout, r.err)
					}
					return nil, r.err
				}
				r.resp.Body = &cancelOnClose{ReadCloser: r.resp.Body, cancel: cancel}
				return r.resp, nil
			case <-ctx.Done():
				cancel()
				// The handler may still answer; release whatever it returns.
				go func() {
					if r := <-done; r.resp != nil {
						r.resp.Body.Close()
					}
				}()
				if err := parent.Err(); errors.Is(err, context.Canceled) {
					return nil, err // the caller gave up, not a timeout
				}
				return nil, ErrTimeout
			}
		}
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
