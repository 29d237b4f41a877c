package transport

import (
	"context"
	"net/http"

	"mini-feign/template"
)

// Transport executes a request and returns the raw response.
type Transport interface {
	Do(ctx context.Context, req *template.Request, opts template.Options) (*http.Response, error)
}

// HTTPTransport sends requests with pooled net/http clients.
type HTTPTransport struct {
	pool *Pool
}

func NewHTTPTransport(pool *Pool) *HTTPTransport {
	if pool == nil {
		pool = NewPool(0, nil)
	}
	return &HTTPTransport{pool: pool}
}

func (t *HTTPTransport) Do(ctx context.Context, req *template.Request, opts template.Options) (*http.Response, error) {
	hreq, err := ToHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	c, err := t.pool.Get(opts)
	if err != nil {
		return nil, err
	}
	return c.Do(hreq)
}

func (t *HTTPTransport) Close() error {
	return t.pool.Close()
}
