package sticker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_StaticAttempts(t *testing.T) {
	p := DefaultPolicy()

	first := p.Attempt(false, 0)
	second := p.Attempt(false, 1)

	assert.Equal(t, ConversionAttempt{Index: 0, Dimension: 512, Quality: 90}, first)
	assert.Equal(t, ConversionAttempt{Index: 1, Dimension: 512, Quality: 60}, second)
}

func TestPolicy_AnimatedAttempts(t *testing.T) {
	p := DefaultPolicy()

	first := p.Attempt(true, 0)
	assert.Equal(t, 10, first.MaxDurationSeconds)
	assert.Equal(t, 15, first.FPS)
	assert.Equal(t, 512, first.Dimension)
	assert.Equal(t, 50, first.Quality)

	// Quality stays at 50 instead of rising to 60: libwebp's -qscale grows
	// the file as it grows, so a higher value would undo the reduction.
	second := p.Attempt(true, 1)
	assert.Equal(t, 8, second.MaxDurationSeconds)
	assert.Equal(t, 10, second.FPS)
	assert.Equal(t, 256, second.Dimension)
	assert.Equal(t, 50, second.Quality)
}

func TestPolicy_MonotonicReduction(t *testing.T) {
	policies := map[string]Policy{
		"default":        DefaultPolicy(),
		"high quality":   DefaultPolicy().WithOverrides(100, 30),
		"low quality":    DefaultPolicy().WithOverrides(10, 2),
		"below fallback": DefaultPolicy().WithOverrides(50, 10),
		"ignored values": DefaultPolicy().WithOverrides(-1, 0),
	}

	for name, p := range policies {
		for _, animated := range []bool{false, true} {
			a0 := p.Attempt(animated, 0)
			a1 := p.Attempt(animated, 1)

			assert.LessOrEqual(t, a1.Dimension, a0.Dimension, "%s: dimension", name)
			assert.LessOrEqual(t, a1.MaxDurationSeconds, a0.MaxDurationSeconds, "%s: duration", name)
			assert.LessOrEqual(t, a1.FPS, a0.FPS, "%s: fps", name)
			assert.LessOrEqual(t, a1.Quality, a0.Quality, "%s: quality", name)
			assert.NotEqual(t, a0, withIndex(a1, 0), "%s: fallback must reduce something", name)
		}
	}
}

func withIndex(a ConversionAttempt, index int) ConversionAttempt {
	a.Index = index
	return a
}

func TestPolicy_StaticFallbackBelowOverride(t *testing.T) {
	cases := []struct {
		quality  int
		fallback int
	}{
		{quality: 100, fallback: 60},
		{quality: 90, fallback: 60},
		{quality: 60, fallback: 50},
		{quality: 50, fallback: 40},
		{quality: 12, fallback: 5},
		{quality: MinStaticQuality, fallback: 5},
	}
	for _, tc := range cases {
		p := DefaultPolicy().WithOverrides(tc.quality, 10)

		assert.Equal(t, tc.quality, p.Attempt(false, 0).Quality)
		assert.Equal(t, tc.fallback, p.Attempt(false, 1).Quality, "quality %d", tc.quality)
	}
}

func TestPolicy_OverrideBelowMinimumIsIgnored(t *testing.T) {
	p := DefaultPolicy().WithOverrides(MinStaticQuality-1, 10)

	assert.Equal(t, 90, p.Attempt(false, 0).Quality)
	assert.Equal(t, 60, p.Attempt(false, 1).Quality)
}

func TestPolicy_AttemptIndexIsClamped(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, p.Attempt(true, 0), p.Attempt(true, -3))
	assert.Equal(t, p.Attempt(true, 1), p.Attempt(true, 7))
}

func TestExceeds(t *testing.T) {
	assert.False(t, Exceeds(SizeCeiling))
	assert.True(t, Exceeds(SizeCeiling+1))
	assert.False(t, Exceeds(0))
}

func TestMediaKind_Accepted(t *testing.T) {
	assert.True(t, MediaKindImage.Accepted())
	assert.True(t, MediaKindVideo.Accepted())
	assert.True(t, MediaKindDocument.Accepted())
	assert.False(t, MediaKindSticker.Accepted())
	assert.False(t, MediaKindOther.Accepted())
}

func TestMediaBlob_Extension(t *testing.T) {
	cases := map[string]string{
		"image/png":                "png",
		"video/mp4":                "mp4",
		"image/svg+xml":            "svgxml",
		"audio/ogg; codecs=opus":   "ogg",
		"":                         "bin",
		"application/octet-stream": "octetstream",
	}
	for mime, want := range cases {
		assert.Equal(t, want, MediaBlob{MimeType: mime}.Extension(), mime)
	}
}
