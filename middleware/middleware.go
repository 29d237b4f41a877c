// Package middleware wraps request execution with cross-cutting behavior.
//
// Middlewares compose like an onion: Chain(A, B, C)(h) runs A's "before" first
// and A's "after" last.
package middleware

import (
	"context"
	"net/http"

	"mini-feign/template"
)

type HandlerFunc func(ctx context.Context, req *template.Request) (*http.Response, error)

type Middleware func(next HandlerFunc) HandlerFunc

// Chain 将多个中间件组合成一个中间件
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
