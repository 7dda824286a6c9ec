package qr

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCode = "2@abcDEF123,xyz987,QWERTY==,ZXCV=="

func TestPNG(t *testing.T) {
	data, err := PNG(sampleCode, 256)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestPNG_DefaultSize(t *testing.T) {
	data, err := PNG(sampleCode, 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())
}

func TestPNGDataURL(t *testing.T) {
	url, err := PNGDataURL(sampleCode, 128)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, "data:image/png;base64,"))
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(raw))
	assert.NoError(t, err)
}

func TestTerminal(t *testing.T) {
	out, err := Terminal(sampleCode)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Greater(t, strings.Count(out, "\n"), 10)
}

func TestEmptyCode(t *testing.T) {
	_, err := PNG("", 128)
	assert.Error(t, err)
	_, err = Terminal("")
	assert.Error(t, err)
}
