package client

import (
	"fmt"
	"io"
	"net/http"

	"mini-feign/template"
)

// maxErrorBody caps how much of a failed response is kept for the error message.
const maxErrorBody = 4 << 10

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func newStatusError(req *template.Request, resp *http.Response) *StatusError {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Method:     req.Method(),
		URL:        req.URL(),
		StatusCode: resp.StatusCode,
		Body:       body,
	}
}

func (e *StatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("status %d reading %s %s", e.StatusCode, e.Method, e.URL)
	}
	return fmt.Sprintf("status %d reading %s %s; content: %s", e.StatusCode, e.Method, e.URL, e.Body)
}
