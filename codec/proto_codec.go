package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// Marshaler and Unmarshaler are the gogo-style method pair implemented by
// messages that are not backed by a protobuf descriptor.
type Marshaler interface {
	Marshal() ([]byte, error)
}

type Unmarshaler interface {
	Unmarshal(data []byte) error
}

// ProtobufCodec writes protobuf binary wire format.
type ProtobufCodec struct{}

func (c *ProtobufCodec) Encode(v any) ([]byte, error) {
	switch m := v.(type) {
	case proto.Message:
		return proto.Marshal(m)
	case Marshaler:
		return m.Marshal()
	}
	return nil, fmt.Errorf("ProtobufCodec: %T is not a protobuf message", v)
}

func (c *ProtobufCodec) Decode(data []byte, v any) error {
	switch m := v.(type) {
	case proto.Message:
		return proto.Unmarshal(data, m)
	case Unmarshaler:
		return m.Unmarshal(data)
	}
	return fmt.Errorf("ProtobufCodec: %T is not a protobuf message", v)
}

func (c *ProtobufCodec) Type() CodecType {
	return CodecTypeProtobuf
}

func (c *ProtobufCodec) ContentType() string {
	return MediaTypeProtobuf
}

func (c *ProtobufCodec) CanEncode(v any, mediaType string) bool {
	switch v.(type) {
	case proto.Message, Marshaler:
		return matchMediaType(mediaType, MediaTypeProtobuf, "application/protobuf")
	}
	return false
}

func (c *ProtobufCodec) CanDecode(v any, mediaType string) bool {
	switch v.(type) {
	case proto.Message, Unmarshaler:
		return matchMediaType(mediaType, MediaTypeProtobuf, "application/protobuf")
	}
	return false
}

func (c *ProtobufCodec) Binary() bool {
	return true
}
