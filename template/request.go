package template

import (
	"fmt"
	"net/http"
	"time"
)

// Request is an immutable, fully resolved request ready for a transport.
type Request struct {
	method  string
	url     string
	headers http.Header
	body    []byte
	charset string
}

func (r *Request) Method() string {
	return r.method
}

func (r *Request) URL() string {
	return r.url
}

// Headers returns a copy; the request itself never changes.
func (r *Request) Headers() http.Header {
	return r.headers.Clone()
}

func (r *Request) Header(key string) string {
	return r.headers.Get(key)
}

// Body returns a copy of the body bytes.
func (r *Request) Body() []byte {
	if r.body == nil {
		return nil
	}
	return append([]byte(nil), r.body...)
}

func (r *Request) Charset() string {
	return r.charset
}

// WithHeader returns a copy of r with key set to value.
func (r *Request) WithHeader(key, value string) *Request {
	cp := *r
	cp.headers = r.headers.Clone()
	cp.headers.Set(key, value)
	return &cp
}

func (r *Request) String() string {
	return fmt.Sprintf("%s %s (%d bytes, charset=%q)", r.method, r.url, len(r.body), r.charset)
}

// Options control how a single request is executed.
type Options struct {
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	FollowRedirects bool
}

func DefaultOptions() Options {
	return Options{
		ConnectTimeout:  10 * time.Second,
		ReadTimeout:     60 * time.Second,
		FollowRedirects: true,
	}
}
