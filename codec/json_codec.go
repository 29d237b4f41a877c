package codec

import (
	"encoding/json"
)

// JSONCodec uses Go's standard library encoding/json for serialization.
// It is the fallback for plain Go values and is therefore listed last.
type JSONCodec struct{}

func (c *JSONCodec) Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c *JSONCodec) Decode(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (c *JSONCodec) Type() CodecType {
	return CodecTypeJSON
}

func (c *JSONCodec) ContentType() string {
	return MediaTypeJSON
}

func (c *JSONCodec) CanEncode(v any, mediaType string) bool {
	return v != nil && isJSONMediaType(mediaType)
}

func (c *JSONCodec) CanDecode(v any, mediaType string) bool {
	return v != nil && isJSONMediaType(mediaType)
}

func (c *JSONCodec) Binary() bool {
	return false
}
