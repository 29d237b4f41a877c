// Package transport turns immutable requests into net/http requests and executes them.
//
// Body handling follows the request's charset:
//
//	charset set   -> body is read as text in that charset and written back in the
//	                 charset declared by Content-Type (or the same one), like a
//	                 string entity. Content-Type gains a charset parameter.
//	charset empty -> body bytes are sent unchanged, like a byte array entity.
//
// Only the second form is safe for binary payloads such as protobuf.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"mini-feign/charset"
	"mini-feign/template"
)

// defaultTextContentType is used for text bodies that carry no Content-Type.
const defaultTextContentType = "text/plain"

// ToHTTPRequest builds the net/http request for req. ContentLength always
// equals the number of body bytes actually sent.
func ToHTTPRequest(ctx context.Context, req *template.Request) (*http.Request, error) {
	headers := req.Headers()
	headers.Del("Content-Length")

	body, err := entityBody(req, headers)
	if err != nil {
		return nil, err
	}

	hreq, err := http.NewRequestWithContext(ctx, req.Method(), req.URL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", req.Method(), req.URL(), err)
	}
	hreq.Header = headers
	hreq.ContentLength = int64(len(body))
	return hreq, nil
}

func entityBody(req *template.Request, headers http.Header) ([]byte, error) {
	body := req.Body()
	cs := req.Charset()
	if cs == "" || len(body) == 0 {
		return body, nil
	}

	contentType := headers.Get("Content-Type")
	target := charset.FromContentType(contentType)
	switch {
	case target != "":
	case contentType != "":
		target = cs
		headers.Set("Content-Type", charset.WithContentType(contentType, cs))
	default:
		target = cs
		headers.Set("Content-Type", charset.WithContentType(defaultTextContentType, cs))
	}

	if charset.Canonical(target) == charset.Canonical(cs) {
		out, err := charset.Recode(body, cs)
		if err != nil {
			return nil, fmt.Errorf("write body as %s: %w", cs, err)
		}
		return out, nil
	}

	text, err := charset.Decode(body, cs)
	if err != nil {
		return nil, fmt.Errorf("read body as %s: %w", cs, err)
	}
	out, err := charset.Encode(text, target)
	if err != nil {
		return nil, fmt.Errorf("write body as %s: %w", target, err)
	}
	return out, nil
}
