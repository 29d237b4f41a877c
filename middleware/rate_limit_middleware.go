package middleware

import (
	"context"
	"errors"
	"net/http"

	"mini-feign/template"

	"golang.org/x/time/rate"
)

var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitMiddleware 创建一个基于令牌桶算法的限流中间件，超出的请求直接拒绝
func RateLimitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *template.Request) (*http.Response, error) {
			if !limiter.Allow() {
				return nil, ErrRateLimited
			}
			return next(ctx, req)
		}
	}
}

// RateLimitWaitMiddleware queues requests until a token is available or ctx ends.
func RateLimitWaitMiddleware(r float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *template.Request) (*http.Response, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, errors.Join(ErrRateLimited, err)
			}
			return next(ctx, req)
		}
	}
}
