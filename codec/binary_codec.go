package codec

import (
	"errors"
	"io"
)

// BinaryCodec passes raw byte slices through untouched.
// It accepts any media type, since the bytes already are the body.
type BinaryCodec struct{}

func (c *BinaryCodec) Encode(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case io.Reader:
		return io.ReadAll(b)
	}
	return nil, errors.New("BinaryCodec: v must be []byte or io.Reader")
}

func (c *BinaryCodec) Decode(data []byte, v any) error {
	out, ok := v.(*[]byte)
	if !ok {
		return errors.New("BinaryCodec: v must be *[]byte")
	}
	*out = append((*out)[:0], data...)
	return nil
}

func (c *BinaryCodec) Type() CodecType {
	return CodecTypeBinary
}

func (c *BinaryCodec) ContentType() string {
	return MediaTypeOctet
}

func (c *BinaryCodec) CanEncode(v any, mediaType string) bool {
	switch v.(type) {
	case []byte, io.Reader:
		return true
	}
	return false
}

func (c *BinaryCodec) CanDecode(v any, mediaType string) bool {
	_, ok := v.(*[]byte)
	return ok
}

func (c *BinaryCodec) Binary() bool {
	return true
}
