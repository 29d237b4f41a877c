// Package template holds the mutable description of an HTTP request while it is
// being assembled, and the immutable Request it is finally turned into.
//
// The body is a byte slice plus an optional charset. When the charset is set the
// body is treated as text by the transport and re-encoded on the way out. An empty
// charset means the bytes are sent exactly as they are.
package template

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var (
	ErrNoMethod     = errors.New("request method is required")
	ErrBodyNotAllow = errors.New("request body not allowed for method")
)

type RequestTemplate struct {
	method  string
	target  string
	path    string
	query   url.Values
	headers http.Header
	body    []byte
	charset string
}

func New() *RequestTemplate {
	return &RequestTemplate{
		query:   url.Values{},
		headers: http.Header{},
	}
}

// Method sets the HTTP method, normalized to upper case.
func (t *RequestTemplate) Method(method string) *RequestTemplate {
	t.method = strings.ToUpper(strings.TrimSpace(method))
	return t
}

func (t *RequestTemplate) GetMethod() string {
	return t.method
}

// Target sets the base URL (scheme, host and optional base path).
func (t *RequestTemplate) Target(target string) *RequestTemplate {
	t.target = strings.TrimRight(target, "/")
	return t
}

// Path appends path to the target. A leading slash is added when missing.
func (t *RequestTemplate) Path(path string) *RequestTemplate {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	t.path = path
	return t
}

// Query sets the values of a query parameter. No values removes it.
func (t *RequestTemplate) Query(key string, values ...string) *RequestTemplate {
	if len(values) == 0 {
		t.query.Del(key)
		return t
	}
	t.query[key] = append([]string(nil), values...)
	return t
}

// Header sets the values of a header. No values removes it.
func (t *RequestTemplate) Header(key string, values ...string) *RequestTemplate {
	if len(values) == 0 {
		t.headers.Del(key)
		return t
	}
	t.headers[http.CanonicalHeaderKey(key)] = append([]string(nil), values...)
	return t
}

// Headers returns a copy of the current headers.
func (t *RequestTemplate) Headers() http.Header {
	return t.headers.Clone()
}

func (t *RequestTemplate) HeaderValue(key string) string {
	return t.headers.Get(key)
}

func (t *RequestTemplate) ClearHeaders() *RequestTemplate {
	t.headers = http.Header{}
	return t
}

// Body replaces the body and its charset together. Pass an empty charset to
// mark the body as raw bytes.
func (t *RequestTemplate) Body(data []byte, charset string) *RequestTemplate {
	t.body = data
	t.charset = charset
	return t
}

func (t *RequestTemplate) BodyBytes() []byte {
	return t.body
}

func (t *RequestTemplate) Charset() string {
	return t.charset
}

// URL renders target, path and query.
func (t *RequestTemplate) URL() string {
	u := t.target + t.path
	if len(t.query) > 0 {
		u += "?" + t.query.Encode()
	}
	return u
}

// Request validates the template and takes an immutable snapshot of it.
func (t *RequestTemplate) Request() (*Request, error) {
	if t.method == "" {
		return nil, ErrNoMethod
	}
	if len(t.body) > 0 && (t.method == http.MethodGet || t.method == http.MethodHead) {
		return nil, fmt.Errorf("%w: %s", ErrBodyNotAllow, t.method)
	}

	var body []byte
	if t.body != nil {
		body = append([]byte(nil), t.body...)
	}
	return &Request{
		method:  t.method,
		url:     t.URL(),
		headers: t.headers.Clone(),
		body:    body,
		charset: t.charset,
	}, nil
}
