package encoder

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"mini-feign/charset"
	"mini-feign/message"
	"mini-feign/template"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type failingMessage struct{}

func (failingMessage) Marshal() ([]byte, error) {
	return nil, errors.New("boom")
}

type order struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func newPost() *template.RequestTemplate {
	return template.New().Method("POST")
}

func TestEncodeProtobufKeepsLegacyCharset(t *testing.T) {
	req := &message.Request{ID: 1000000, Msg: "电信设备"}
	tmpl := newPost()

	require.NoError(t, New().Encode(req, tmpl))

	want, _ := req.Marshal()
	require.Equal(t, want, tmpl.BodyBytes())
	require.Equal(t, charset.UTF8, tmpl.Charset())
	require.Equal(t, "application/x-protobuf", tmpl.HeaderValue("Content-Type"))
}

func TestEncodeBinarySafeCharset(t *testing.T) {
	tmpl := newPost()
	require.NoError(t, New(WithBinarySafeCharset()).Encode(&message.Request{ID: 1}, tmpl))
	require.Equal(t, "", tmpl.Charset())

	// Text codecs still carry the charset.
	tmpl = newPost()
	require.NoError(t, New(WithBinarySafeCharset()).Encode(&order{ID: 1}, tmpl))
	require.Equal(t, charset.UTF8, tmpl.Charset())
}

func TestEncodeRawBytesHasNoCharset(t *testing.T) {
	tmpl := newPost()
	require.NoError(t, New().Encode([]byte{0xc0, 0x84}, tmpl))
	require.Equal(t, "", tmpl.Charset())
	require.Equal(t, "application/octet-stream", tmpl.HeaderValue("Content-Type"))
}

func TestEncodeJSON(t *testing.T) {
	tmpl := newPost()
	require.NoError(t, New(WithCharset("latin1")).Encode(&order{ID: 7, Title: "x"}, tmpl))
	require.JSONEq(t, `{"id":7,"title":"x"}`, string(tmpl.BodyBytes()))
	require.Equal(t, "application/json", tmpl.HeaderValue("Content-Type"))
	require.Equal(t, "ISO-8859-1", tmpl.Charset())
}

func TestEncodeHonorsPresetContentType(t *testing.T) {
	tmpl := newPost().Header("Content-Type", "application/json")
	require.NoError(t, New().Encode(wrapperspb.String("hi"), tmpl))
	require.Equal(t, `"hi"`, strings.ReplaceAll(string(tmpl.BodyBytes()), " ", ""))
	require.Equal(t, "application/json", tmpl.HeaderValue("Content-Type"))
}

func TestEncodeNoSuitableCodec(t *testing.T) {
	tmpl := newPost().Header("Content-Type", "application/xml")
	err := New().Encode(&order{}, tmpl)

	var encErr *EncodeError
	require.True(t, errors.As(err, &encErr))
	require.Equal(t, "*encoder.order", encErr.ValueType)
	require.Equal(t, "application/xml", encErr.ContentType)
	require.Nil(t, encErr.Unwrap())
}

func TestEncodeCodecFailure(t *testing.T) {
	err := New().Encode(failingMessage{}, newPost())

	var encErr *EncodeError
	require.True(t, errors.As(err, &encErr))
	require.EqualError(t, encErr.Unwrap(), "boom")
}

func TestEncodeNil(t *testing.T) {
	tmpl := newPost().Body([]byte("old"), charset.UTF8)
	require.NoError(t, New().Encode(nil, tmpl))
	require.Nil(t, tmpl.BodyBytes())
	require.Equal(t, "", tmpl.Charset())
}

func response(status int, contentType string, body []byte) *http.Response {
	h := http.Header{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return &http.Response{
		StatusCode: status,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(string(body))),
	}
}

func TestDecodeProtobuf(t *testing.T) {
	want := &message.Reply{ID: 3, Msg: "ok", Length: 2}
	data, _ := want.Marshal()

	var got message.Reply
	require.NoError(t, NewDecoder().Decode(response(200, "application/x-protobuf", data), &got))
	require.True(t, want.Equal(&got))
}

func TestDecodeConvertsCharset(t *testing.T) {
	var got string
	resp := response(200, "text/plain; charset=ISO-8859-1", []byte("caf\xe9"))
	require.NoError(t, NewDecoder().Decode(resp, &got))
	require.Equal(t, "café", got)
}

func TestDecode404(t *testing.T) {
	got := order{ID: 5}
	require.NoError(t, NewDecoder(WithDecode404()).Decode(response(404, "application/json", []byte(`{"id":1}`)), &got))
	require.Equal(t, 5, got.ID)
}

func TestDecodeEmptyBody(t *testing.T) {
	var got order
	require.NoError(t, NewDecoder().Decode(response(200, "application/json", nil), &got))
}

func TestDecodeErrors(t *testing.T) {
	var got order
	err := NewDecoder().Decode(response(200, "application/x-protobuf", []byte{0x08}), &got)
	var decErr *DecodeError
	require.True(t, errors.As(err, &decErr))
	require.Nil(t, decErr.Err)

	var reply message.Reply
	err = NewDecoder().Decode(response(200, "application/x-protobuf", []byte{0x12, 0x05}), &reply)
	require.True(t, errors.Is(err, message.ErrInvalidProtocolBuffer))
}
