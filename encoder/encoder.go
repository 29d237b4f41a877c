// Package encoder writes Go values into request templates and reads response
// bodies back into Go values, choosing a codec by value type and media type.
//
// By default every codec except the raw byte codec marks the body with the UTF-8
// charset. That includes protobuf, so a protobuf body goes through the transport's
// text conversion and arrives corrupted whenever it is not valid UTF-8. Clear the
// charset on the template after encoding, or build the encoder with
// WithBinarySafeCharset, to send such bodies byte for byte.
package encoder

import (
	"fmt"

	"mini-feign/charset"
	"mini-feign/codec"
	"mini-feign/template"

	"go.uber.org/zap"
)

type Encoder struct {
	codecs     []codec.Codec
	charset    string
	binarySafe bool
	logger     *zap.Logger
}

type Option func(*Encoder)

// WithCodecs replaces the codec list. Order matters: the first match wins.
func WithCodecs(codecs ...codec.Codec) Option {
	return func(e *Encoder) {
		e.codecs = codecs
	}
}

// WithCharset changes the charset attached to text bodies.
func WithCharset(name string) Option {
	return func(e *Encoder) {
		e.charset = charset.Canonical(name)
	}
}

// WithBinarySafeCharset leaves the charset empty for every codec whose output is binary.
func WithBinarySafeCharset() Option {
	return func(e *Encoder) {
		e.binarySafe = true
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Encoder) {
		e.logger = logger
	}
}

func New(opts ...Option) *Encoder {
	e := &Encoder{
		codecs:  codec.Default(),
		charset: charset.UTF8,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode serializes v into tmpl's body. The template's Content-Type, when set,
// restricts the codec choice; otherwise it is filled in from the chosen codec.
// A nil v leaves an empty body with no charset.
func (e *Encoder) Encode(v any, tmpl *template.RequestTemplate) error {
	if v == nil {
		tmpl.Body(nil, "")
		return nil
	}

	contentType := tmpl.HeaderValue("Content-Type")
	c := codec.FindEncoder(e.codecs, v, contentType)
	if c == nil {
		return &EncodeError{ValueType: fmt.Sprintf("%T", v), ContentType: contentType}
	}

	data, err := c.Encode(v)
	if err != nil {
		return &EncodeError{ValueType: fmt.Sprintf("%T", v), ContentType: contentType, Err: err}
	}

	if contentType == "" {
		contentType = c.ContentType()
		tmpl.Header("Content-Type", contentType)
	}
	cs := e.charsetFor(c)
	tmpl.Body(data, cs)

	e.logger.Debug("encoded request body",
		zap.String("codec", c.Type().String()),
		zap.String("contentType", contentType),
		zap.String("charset", cs),
		zap.Int("bytes", len(data)),
	)
	return nil
}

func (e *Encoder) charsetFor(c codec.Codec) string {
	// Raw bytes never get a charset.
	if c.Type() == codec.CodecTypeBinary {
		return ""
	}
	if e.binarySafe && c.Binary() {
		return ""
	}
	return e.charset
}
