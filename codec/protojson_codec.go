package codec

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// ProtoJSONCodec writes descriptor-backed protobuf messages using the canonical
// proto3 JSON mapping. It only claims a value when JSON was asked for explicitly.
type ProtoJSONCodec struct {
	EmitDefaults bool
}

func (c *ProtoJSONCodec) Encode(v any) ([]byte, error) {
	m, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("ProtoJSONCodec: %T is not a proto.Message", v)
	}
	return protojson.MarshalOptions{EmitUnpopulated: c.EmitDefaults}.Marshal(m)
}

func (c *ProtoJSONCodec) Decode(data []byte, v any) error {
	m, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("ProtoJSONCodec: %T is not a proto.Message", v)
	}
	return protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(data, m)
}

func (c *ProtoJSONCodec) Type() CodecType {
	return CodecTypeProtoJSON
}

func (c *ProtoJSONCodec) ContentType() string {
	return MediaTypeJSON
}

func (c *ProtoJSONCodec) CanEncode(v any, mediaType string) bool {
	_, ok := v.(proto.Message)
	return ok && explicitJSON(mediaType)
}

func (c *ProtoJSONCodec) CanDecode(v any, mediaType string) bool {
	_, ok := v.(proto.Message)
	return ok && explicitJSON(mediaType)
}

func (c *ProtoJSONCodec) Binary() bool {
	return false
}

func explicitJSON(mediaType string) bool {
	mt := MediaType(mediaType)
	return mt != "" && mt != "*/*" && isJSONMediaType(mt)
}
