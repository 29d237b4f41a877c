package codec

import (
	"mime"
	"strings"
)

// MediaType strips parameters from a Content-Type value and lowercases it.
// Unparseable values are returned trimmed and lowercased.
func MediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		if i := strings.IndexByte(contentType, ';'); i >= 0 {
			contentType = contentType[:i]
		}
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// matchMediaType reports whether mediaType is compatible with any of supported.
// An empty media type or a wildcard matches everything; "type/*" matches any subtype.
func matchMediaType(mediaType string, supported ...string) bool {
	mt := MediaType(mediaType)
	if mt == "" || mt == "*/*" {
		return true
	}
	for _, s := range supported {
		if mt == s {
			return true
		}
		if strings.HasSuffix(mt, "/*") && strings.HasPrefix(s, strings.TrimSuffix(mt, "*")) {
			return true
		}
	}
	return false
}

// isJSONMediaType also accepts structured syntax suffixes such as application/problem+json.
func isJSONMediaType(mediaType string) bool {
	if matchMediaType(mediaType, MediaTypeJSON) {
		return true
	}
	return strings.HasSuffix(MediaType(mediaType), "+json")
}
