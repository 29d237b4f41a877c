package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"mini-feign/charset"
	"mini-feign/encoder"
	"mini-feign/message"
	"mini-feign/template"

	"github.com/stretchr/testify/require"
)

// a protobuf message with multi-byte text, so its encoding is not valid UTF-8
var fixture = &message.Request{
	ID: 1000000,
	Msg: "Erlang/OTP 最初是爱立信为开发电信设备系统设计的编程语言平台，" +
		"电信设备(路由器、接入网关、…)典型设计是通过背板连接主控板卡与多块业务板卡的分布式系统。",
}

func newRequestTemplate() *template.RequestTemplate {
	return template.New().Method("POST").Target("http://localhost:8080").Path("/Echo/Say")
}

func readBody(t *testing.T, hreq *http.Request) []byte {
	t.Helper()
	data, err := io.ReadAll(hreq.Body)
	require.NoError(t, err)
	require.EqualValues(t, len(data), hreq.ContentLength)
	return data
}

func TestProtobuf(t *testing.T) {
	tmpl := newRequestTemplate()
	require.NoError(t, encoder.New().Encode(fixture, tmpl))

	req, err := tmpl.Request()
	require.NoError(t, err)
	hreq, err := ToHTTPRequest(context.Background(), req)
	require.NoError(t, err)
	data := readBody(t, hreq)

	// the body on the wire differs from the original protobuf encoding
	want, _ := fixture.Marshal()
	require.NotEqual(t, len(want), len(data))
	require.Equal(t, "application/x-protobuf; charset=UTF-8", hreq.Header.Get("Content-Type"))

	var decoded message.Request
	err = decoded.Unmarshal(data)
	require.Error(t, err)
	require.True(t, errors.Is(err, message.ErrInvalidProtocolBuffer), "got %v", err)
}

func TestProtobufWithoutCharset(t *testing.T) {
	tmpl := newRequestTemplate()
	require.NoError(t, encoder.New().Encode(fixture, tmpl))
	// reset charset to none
	tmpl.Body(tmpl.BodyBytes(), "")

	req, err := tmpl.Request()
	require.NoError(t, err)
	hreq, err := ToHTTPRequest(context.Background(), req)
	require.NoError(t, err)
	data := readBody(t, hreq)

	want, _ := fixture.Marshal()
	require.Equal(t, want, data)
	require.Equal(t, "application/x-protobuf", hreq.Header.Get("Content-Type"))

	var decoded message.Request
	require.NoError(t, decoded.Unmarshal(data))
	require.True(t, fixture.Equal(&decoded))
}

func TestProtobufBinarySafeEncoder(t *testing.T) {
	tmpl := newRequestTemplate()
	require.NoError(t, encoder.New(encoder.WithBinarySafeCharset()).Encode(fixture, tmpl))

	req, err := tmpl.Request()
	require.NoError(t, err)
	hreq, err := ToHTTPRequest(context.Background(), req)
	require.NoError(t, err)

	want, _ := fixture.Marshal()
	require.Equal(t, want, readBody(t, hreq))
}

func TestTextBodyUsesDeclaredCharset(t *testing.T) {
	req, err := newRequestTemplate().
		Header("Content-Type", "text/plain; charset=ISO-8859-1").
		Body([]byte("café"), "UTF-8").
		Request()
	require.NoError(t, err)

	hreq, err := ToHTTPRequest(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, []byte("caf\xe9"), readBody(t, hreq))
	require.Equal(t, "text/plain; charset=ISO-8859-1", hreq.Header.Get("Content-Type"))
}

func TestTextBodyWithoutContentType(t *testing.T) {
	req, err := newRequestTemplate().Body([]byte("hello"), "UTF-8").Request()
	require.NoError(t, err)

	hreq, err := ToHTTPRequest(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), readBody(t, hreq))
	require.Equal(t, "text/plain; charset=UTF-8", hreq.Header.Get("Content-Type"))
}

func TestEmptyBody(t *testing.T) {
	req, err := template.New().Method("GET").Target("http://localhost").Header("Content-Length", "12").Request()
	require.NoError(t, err)

	hreq, err := ToHTTPRequest(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, http.NoBody, hreq.Body)
	require.EqualValues(t, 0, hreq.ContentLength)
	require.Empty(t, hreq.Header.Get("Content-Length"))
}

func TestUnsupportedCharset(t *testing.T) {
	req, err := newRequestTemplate().Body([]byte("x"), "x-no-such-charset").Request()
	require.NoError(t, err)

	_, err = ToHTTPRequest(context.Background(), req)
	require.ErrorIs(t, err, charset.ErrUnsupported)
}

func TestBodyIsReplayable(t *testing.T) {
	req, err := newRequestTemplate().Body([]byte{0x01, 0x02}, "").Request()
	require.NoError(t, err)

	hreq, err := ToHTTPRequest(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, hreq.GetBody)

	first := readBody(t, hreq)
	again, err := hreq.GetBody()
	require.NoError(t, err)
	second, err := io.ReadAll(again)
	require.NoError(t, err)
	require.True(t, bytes.Equal(first, second))
}
