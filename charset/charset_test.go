package charset

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{"UTF-8", "utf-8", "utf8", "ISO-8859-1", "US-ASCII", "UTF-16BE"} {
		enc, err := Lookup(name)
		require.NoError(t, err, "lookup %s", name)
		require.NotNil(t, enc, "lookup %s", name)
	}

	_, err := Lookup("no-such-charset")
	require.True(t, errors.Is(err, ErrUnsupported))

	_, err = Lookup("")
	require.True(t, errors.Is(err, ErrUnsupported))
}

func TestRecodeKeepsValidText(t *testing.T) {
	text := []byte("电信设备(路由器、接入网关、…)典型设计")

	out, err := Recode(text, UTF8)
	require.NoError(t, err)
	require.Equal(t, text, out)
}

func TestRecodeReplacesInvalidBytes(t *testing.T) {
	// 0xc0 can never start a UTF-8 sequence and 0x84 is a stray continuation byte.
	in := []byte{0x08, 0xc0, 0x84, 0x3d}

	out, err := Recode(in, UTF8)
	require.NoError(t, err)
	require.Equal(t, []byte{0x08, 0xef, 0xbf, 0xbd, 0xef, 0xbf, 0xbd, 0x3d}, out)
}

func TestRecodeSingleByteCharsetIsLossless(t *testing.T) {
	in := []byte{0x08, 0xc0, 0xe9, 0x3d, 0xff, 0xa0}

	out, err := Recode(in, "ISO-8859-1")
	require.NoError(t, err)
	require.True(t, bytes.Equal(in, out), "got % x", out)
}

func TestFromContentType(t *testing.T) {
	require.Equal(t, "UTF-8", FromContentType("application/json; charset=UTF-8"))
	require.Equal(t, "", FromContentType("application/x-protobuf"))
	require.Equal(t, "", FromContentType(""))
	require.Equal(t, "", FromContentType(";;;"))
}

func TestWithContentType(t *testing.T) {
	require.Equal(t, "application/x-protobuf; charset=UTF-8", WithContentType("application/x-protobuf", UTF8))
	require.Equal(t, "text/plain; charset=ISO-8859-1", WithContentType("text/plain; charset=ISO-8859-1", UTF8))
	require.Equal(t, "", WithContentType("", UTF8))
	require.Equal(t, "text/plain", WithContentType("text/plain", ""))
}

func TestCanonical(t *testing.T) {
	require.Equal(t, UTF8, Canonical("utf8"))
	require.Equal(t, "bogus", Canonical("bogus"))
}

func TestCanonicalMIMEName(t *testing.T) {
	require.Equal(t, "ISO-8859-1", Canonical("latin1"))
}
