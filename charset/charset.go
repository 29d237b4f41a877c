// Package charset resolves character encodings by their IANA names and runs
// bytes through the text conversion used for string request bodies.
//
// Recode is lossy by nature: the bytes are first read as text in the named
// charset, with every invalid sequence replaced by U+FFFD, and the text is then
// written back in the same charset. Well-formed text survives unchanged.
// Arbitrary binary data does not.
package charset

import (
	"errors"
	"fmt"
	"mime"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// UTF8 is the canonical name of the default text charset.
const UTF8 = "UTF-8"

var ErrUnsupported = errors.New("unsupported charset")

// Lookup returns the encoding registered under name (case-insensitive).
func Lookup(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnsupported)
	}
	if strings.EqualFold(name, UTF8) || strings.EqualFold(name, "utf8") {
		return unicode.UTF8, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnsupported, name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, name)
	}
	return enc, nil
}

// Canonical returns the preferred MIME name for name, or name itself when the index has none.
func Canonical(name string) string {
	enc, err := Lookup(name)
	if err != nil {
		return name
	}
	if enc == unicode.UTF8 {
		return UTF8
	}
	if n, err := ianaindex.MIME.Name(enc); err == nil && n != "" {
		return n
	}
	if n, err := ianaindex.IANA.Name(enc); err == nil {
		return n
	}
	return name
}

// Decode reads body as text in the named charset.
func Decode(body []byte, name string) (string, error) {
	enc, err := Lookup(name)
	if err != nil {
		return "", err
	}
	text, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return string(text), nil
}

// Encode writes text in the named charset. Characters the charset cannot
// represent are replaced with its substitution byte.
func Encode(text string, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	out, err := encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return out, nil
}

// Recode passes body through Decode and then Encode with the same charset.
func Recode(body []byte, name string) ([]byte, error) {
	text, err := Decode(body, name)
	if err != nil {
		return nil, err
	}
	return Encode(text, name)
}

// FromContentType returns the charset parameter of a Content-Type value, or "".
func FromContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}

// WithContentType adds a charset parameter to contentType unless one is present.
func WithContentType(contentType, name string) string {
	if contentType == "" || name == "" || FromContentType(contentType) != "" {
		return contentType
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	params["charset"] = name
	return mime.FormatMediaType(mediaType, params)
}
