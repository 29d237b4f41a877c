package codec

import (
	"errors"
	"fmt"
)

// TextCodec writes strings as text/plain.
type TextCodec struct{}

func (c *TextCodec) Encode(v any) ([]byte, error) {
	switch s := v.(type) {
	case string:
		return []byte(s), nil
	case fmt.Stringer:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("TextCodec: cannot encode %T", v)
}

func (c *TextCodec) Decode(data []byte, v any) error {
	out, ok := v.(*string)
	if !ok {
		return errors.New("TextCodec: v must be *string")
	}
	*out = string(data)
	return nil
}

func (c *TextCodec) Type() CodecType {
	return CodecTypeText
}

func (c *TextCodec) ContentType() string {
	return MediaTypeText
}

// CanEncode accepts strings for any text-compatible media type, and
// fmt.Stringer values only when text/plain was requested explicitly.
func (c *TextCodec) CanEncode(v any, mediaType string) bool {
	switch v.(type) {
	case string:
		return matchMediaType(mediaType, MediaTypeText)
	case fmt.Stringer:
		return MediaType(mediaType) == MediaTypeText
	}
	return false
}

func (c *TextCodec) CanDecode(v any, mediaType string) bool {
	_, ok := v.(*string)
	return ok && matchMediaType(mediaType, MediaTypeText)
}

func (c *TextCodec) Binary() bool {
	return false
}
