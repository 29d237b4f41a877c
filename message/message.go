// Package message defines the protobuf messages exchanged by the example echo service.
//
// The types are hand-maintained against the schema below and encode to the exact
// protobuf wire layout, so they interoperate with any protobuf runtime:
//
//	message Request {
//	  int32  id  = 1;
//	  string msg = 2;
//	}
//
//	message Reply {
//	  int32  id     = 1;
//	  string msg    = 2;
//	  int64  length = 3;
//	}
//
// Both follow the gogo marshaler contract (Marshal() ([]byte, error) and
// Unmarshal([]byte) error), which is what the protobuf codec looks for on values
// that are not proto.Message.
package message

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrInvalidProtocolBuffer is wrapped by every Unmarshal failure.
// The input was not a well-formed protobuf encoding of the target message.
var ErrInvalidProtocolBuffer = errors.New("invalid protocol buffer")

const (
	fieldID     protowire.Number = 1
	fieldMsg    protowire.Number = 2
	fieldLength protowire.Number = 3
)

// Request carries an identifier and a free-form UTF-8 text.
type Request struct {
	ID  int32
	Msg string
}

// Marshal encodes r in protobuf wire format. Zero-valued fields are omitted.
func (r *Request) Marshal() ([]byte, error) {
	b := make([]byte, 0, r.Size())
	b = appendInt32(b, fieldID, r.ID)
	b = appendString(b, fieldMsg, r.Msg)
	return b, nil
}

// Size returns the encoded length of r.
func (r *Request) Size() int {
	return sizeInt32(fieldID, r.ID) + sizeString(fieldMsg, r.Msg)
}

// Unmarshal replaces the contents of r with the message decoded from data.
func (r *Request) Unmarshal(data []byte) error {
	r.Reset()
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldID:
			v, n, err := consumeInt32(num, typ, b)
			r.ID = v
			return n, err
		case fieldMsg:
			v, n, err := consumeString(num, typ, b)
			r.Msg = v
			return n, err
		}
		return skipField(num, typ, b)
	})
}

func (r *Request) Reset() { *r = Request{} }

func (r *Request) Equal(other *Request) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.ID == other.ID && r.Msg == other.Msg
}

func (r *Request) String() string {
	return fmt.Sprintf("id:%d msg:%q", r.ID, r.Msg)
}

// Reply is the echo service's answer: the request echoed back plus the byte
// length of the message text as received by the server.
type Reply struct {
	ID     int32
	Msg    string
	Length int64
}

func (r *Reply) Marshal() ([]byte, error) {
	b := make([]byte, 0, r.Size())
	b = appendInt32(b, fieldID, r.ID)
	b = appendString(b, fieldMsg, r.Msg)
	if r.Length != 0 {
		b = protowire.AppendTag(b, fieldLength, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.Length))
	}
	return b, nil
}

func (r *Reply) Size() int {
	n := sizeInt32(fieldID, r.ID) + sizeString(fieldMsg, r.Msg)
	if r.Length != 0 {
		n += protowire.SizeTag(fieldLength) + protowire.SizeVarint(uint64(r.Length))
	}
	return n
}

func (r *Reply) Unmarshal(data []byte) error {
	r.Reset()
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case fieldID:
			v, n, err := consumeInt32(num, typ, b)
			r.ID = v
			return n, err
		case fieldMsg:
			v, n, err := consumeString(num, typ, b)
			r.Msg = v
			return n, err
		case fieldLength:
			if typ != protowire.VarintType {
				return 0, wireTypeError(num, typ)
			}
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, parseError(num, n)
			}
			r.Length = int64(v)
			return n, nil
		}
		return skipField(num, typ, b)
	})
}

func (r *Reply) Reset() { *r = Reply{} }

func (r *Reply) Equal(other *Reply) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.ID == other.ID && r.Msg == other.Msg && r.Length == other.Length
}

func (r *Reply) String() string {
	return fmt.Sprintf("id:%d msg:%q length:%d", r.ID, r.Msg, r.Length)
}
