// Package codec converts request and response bodies between Go values and bytes.
//
// Each Codec owns one content type and knows which values it can write and read.
// The encoder and decoder walk an ordered list of codecs and use the first one
// that accepts both the value and the negotiated media type.
package codec

import (
	"fmt"
	"strings"
)

type CodecType byte

const (
	CodecTypeJSON      CodecType = 0
	CodecTypeBinary    CodecType = 1
	CodecTypeProtobuf  CodecType = 2
	CodecTypeProtoJSON CodecType = 3
	CodecTypeText      CodecType = 4
)

// Media types produced by the built-in codecs.
const (
	MediaTypeJSON     = "application/json"
	MediaTypeProtobuf = "application/x-protobuf"
	MediaTypeOctet    = "application/octet-stream"
	MediaTypeText     = "text/plain"
)

type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
	Type() CodecType
	// ContentType is written to the Content-Type header when the caller did not set one.
	ContentType() string
	CanEncode(v any, mediaType string) bool
	CanDecode(v any, mediaType string) bool
	// Binary reports whether the encoded form is opaque bytes rather than text.
	Binary() bool
}

func GetCodec(codecType CodecType) Codec {
	switch codecType {
	case CodecTypeBinary:
		return &BinaryCodec{}
	case CodecTypeProtobuf:
		return &ProtobufCodec{}
	case CodecTypeProtoJSON:
		return &ProtoJSONCodec{}
	case CodecTypeText:
		return &TextCodec{}
	}

	return &JSONCodec{}
}

// Default returns the built-in codecs in lookup order. Raw bytes and protobuf
// messages come first so that a generic codec never claims them.
func Default() []Codec {
	return []Codec{
		&BinaryCodec{},
		&ProtobufCodec{},
		&ProtoJSONCodec{},
		&TextCodec{},
		&JSONCodec{},
	}
}

// FindEncoder returns the first codec able to write v as mediaType, or nil.
func FindEncoder(codecs []Codec, v any, mediaType string) Codec {
	for _, c := range codecs {
		if c.CanEncode(v, mediaType) {
			return c
		}
	}
	return nil
}

// FindDecoder returns the first codec able to read mediaType into v, or nil.
func FindDecoder(codecs []Codec, v any, mediaType string) Codec {
	for _, c := range codecs {
		if c.CanDecode(v, mediaType) {
			return c
		}
	}
	return nil
}

func (t CodecType) String() string {
	switch t {
	case CodecTypeJSON:
		return "json"
	case CodecTypeBinary:
		return "binary"
	case CodecTypeProtobuf:
		return "protobuf"
	case CodecTypeProtoJSON:
		return "protojson"
	case CodecTypeText:
		return "text"
	}
	return fmt.Sprintf("codec(%d)", byte(t))
}

// ParseCodecType maps a configuration name ("json", "protobuf", ...) to its CodecType.
func ParseCodecType(name string) (CodecType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return CodecTypeJSON, nil
	case "binary", "bytes":
		return CodecTypeBinary, nil
	case "protobuf", "proto":
		return CodecTypeProtobuf, nil
	case "protojson":
		return CodecTypeProtoJSON, nil
	case "text":
		return CodecTypeText, nil
	}
	return 0, fmt.Errorf("unknown codec %q", name)
}
