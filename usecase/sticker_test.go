package usecase

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	domainStats "github.com/AzielCF/piebot/domains/stats"
	domainSticker "github.com/AzielCF/piebot/domains/sticker"
	"github.com/AzielCF/piebot/infrastructure/transcoder"
	pkgError "github.com/AzielCF/piebot/pkg/error"
	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImageTranscoder struct {
	mu     sync.Mutex
	calls  []domainSticker.ConversionAttempt
	output func(quality int) ([]byte, error)
}

func (f *fakeImageTranscoder) Resize(_ context.Context, _ []byte, width, _ int, quality int) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, domainSticker.ConversionAttempt{Dimension: width, Quality: quality})
	f.mu.Unlock()
	return f.output(quality)
}

type fakeVideoTranscoder struct {
	mu     sync.Mutex
	calls  []domainSticker.ConversionAttempt
	inputs []domainSticker.MediaBlob
	output func(dimension int) ([]byte, error)
}

func (f *fakeVideoTranscoder) TranscodeToAnimatedWebp(_ context.Context, input domainSticker.MediaBlob, maxDurationSeconds, fps, dimension, quality int) ([]byte, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, input)
	f.calls = append(f.calls, domainSticker.ConversionAttempt{MaxDurationSeconds: maxDurationSeconds, FPS: fps, Dimension: dimension, Quality: quality})
	f.mu.Unlock()
	return f.output(dimension)
}

type fakeStats struct {
	mu      sync.Mutex
	records []domainStats.ConversionRecord
}

func (f *fakeStats) Record(_ context.Context, r domainStats.ConversionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, r)
	return nil
}

func (f *fakeStats) Summary(context.Context) (domainStats.Summary, error) {
	return domainStats.Summary{}, nil
}

func (f *fakeStats) Close() error { return nil }

func sized(n int) []byte {
	return make([]byte, n)
}

func imageBlob() domainSticker.MediaBlob {
	return domainSticker.MediaBlob{Data: []byte("png"), MimeType: "image/png", Kind: domainSticker.MediaKindImage}
}

func videoBlob() domainSticker.MediaBlob {
	return domainSticker.MediaBlob{Data: []byte("mp4"), MimeType: "video/mp4", Kind: domainSticker.MediaKindVideo}
}

func TestStickerService_StaticFirstAttemptFits(t *testing.T) {
	img := &fakeImageTranscoder{output: func(int) ([]byte, error) { return sized(2048), nil }}
	vid := &fakeVideoTranscoder{}
	svc := NewStickerService(img, vid, StickerOptions{})

	res, err := svc.Convert(context.Background(), imageBlob(), false)
	require.NoError(t, err)

	assert.Equal(t, domainSticker.MimeTypeWebP, res.MimeType)
	assert.False(t, res.Animated)
	assert.Equal(t, 1, res.Attempts)
	assert.False(t, res.Oversized)
	assert.Len(t, img.calls, 1)
	assert.Empty(t, vid.calls)
	assert.Equal(t, domainSticker.ConversionAttempt{Dimension: 512, Quality: 90}, img.calls[0])
}

func TestStickerService_StaticFallsBackToLowerQuality(t *testing.T) {
	img := &fakeImageTranscoder{output: func(q int) ([]byte, error) {
		if q == 90 {
			return sized(domainSticker.SizeCeiling + 1), nil
		}
		return sized(700 * 1024), nil
	}}
	svc := NewStickerService(img, &fakeVideoTranscoder{}, StickerOptions{})

	res, err := svc.Convert(context.Background(), imageBlob(), false)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Attempts)
	assert.Len(t, res.Data, 700*1024)
	require.Len(t, img.calls, 2)
	assert.Equal(t, 90, img.calls[0].Quality)
	assert.Equal(t, 60, img.calls[1].Quality)
}

func TestStickerService_OversizedAnimatedClip(t *testing.T) {
	vid := &fakeVideoTranscoder{output: func(int) ([]byte, error) {
		return sized(domainSticker.SizeCeiling + 10), nil
	}}
	svc := NewStickerService(&fakeImageTranscoder{}, vid, StickerOptions{})

	res, err := svc.Convert(context.Background(), videoBlob(), true)
	require.NoError(t, err, "best effort: the reduced attempt is delivered anyway")

	assert.True(t, res.Animated)
	assert.True(t, res.Oversized)
	assert.Equal(t, 2, res.Attempts)
	require.Len(t, vid.calls, 2, "no third attempt")

	first, second := vid.calls[0], vid.calls[1]
	assert.Equal(t, domainSticker.ConversionAttempt{MaxDurationSeconds: 10, FPS: 15, Dimension: 512, Quality: 50}, first)
	assert.Equal(t, 8, second.MaxDurationSeconds)
	assert.Equal(t, 10, second.FPS)
	assert.Equal(t, 256, second.Dimension)
	assert.LessOrEqual(t, second.Quality, first.Quality)
}

func TestStickerService_StrictCeilingFails(t *testing.T) {
	vid := &fakeVideoTranscoder{output: func(int) ([]byte, error) {
		return sized(domainSticker.SizeCeiling + 10), nil
	}}
	svc := NewStickerService(&fakeImageTranscoder{}, vid, StickerOptions{StrictCeiling: true})

	_, err := svc.Convert(context.Background(), videoBlob(), true)

	var te *pkgError.TranscodeError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1, te.Attempt)
}

func TestStickerService_TranscoderErrorStopsImmediately(t *testing.T) {
	cause := errors.New("decode: unknown format")
	img := &fakeImageTranscoder{output: func(int) ([]byte, error) { return nil, cause }}
	svc := NewStickerService(img, &fakeVideoTranscoder{}, StickerOptions{})

	_, err := svc.Convert(context.Background(), imageBlob(), false)

	var te *pkgError.TranscodeError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, cause)
	assert.Len(t, img.calls, 1)
}

func TestStickerService_EmptyOutputIsTranscodeError(t *testing.T) {
	img := &fakeImageTranscoder{output: func(int) ([]byte, error) { return nil, nil }}
	svc := NewStickerService(img, &fakeVideoTranscoder{}, StickerOptions{})

	_, err := svc.Convert(context.Background(), imageBlob(), false)

	var te *pkgError.TranscodeError
	assert.ErrorAs(t, err, &te)
}

func TestStickerService_InputValidation(t *testing.T) {
	img := &fakeImageTranscoder{}
	vid := &fakeVideoTranscoder{}
	svc := NewStickerService(img, vid, StickerOptions{})

	_, err := svc.Convert(context.Background(), domainSticker.MediaBlob{Kind: domainSticker.MediaKindImage}, false)
	var empty pkgError.DownloadEmptyError
	assert.ErrorAs(t, err, &empty)

	_, err = svc.Convert(context.Background(), domainSticker.MediaBlob{Data: []byte("x"), Kind: domainSticker.MediaKindSticker}, false)
	var unsupported pkgError.UnsupportedTypeError
	assert.ErrorAs(t, err, &unsupported)

	assert.Empty(t, img.calls)
	assert.Empty(t, vid.calls)
}

func TestStickerService_CommandPicksTranscoder(t *testing.T) {
	img := &fakeImageTranscoder{output: func(int) ([]byte, error) { return sized(10), nil }}
	vid := &fakeVideoTranscoder{output: func(int) ([]byte, error) { return sized(10), nil }}
	svc := NewStickerService(img, vid, StickerOptions{})

	// A document or image sent with !sa still goes through ffmpeg.
	doc := domainSticker.MediaBlob{Data: []byte("gif"), MimeType: "image/gif", Kind: domainSticker.MediaKindDocument}
	_, err := svc.Convert(context.Background(), doc, true)
	require.NoError(t, err)

	assert.Len(t, vid.calls, 1)
	assert.Empty(t, img.calls)
	require.Len(t, vid.inputs, 1)
	assert.Equal(t, "image/gif", vid.inputs[0].MimeType)
}

func TestStickerService_TimeoutReachesTranscoder(t *testing.T) {
	vid := &blockingVideoTranscoder{}
	svc := NewStickerService(&fakeImageTranscoder{}, vid, StickerOptions{TranscodeTimeout: 20 * time.Millisecond})

	_, err := svc.Convert(context.Background(), videoBlob(), true)

	var te *pkgError.TranscodeError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type blockingVideoTranscoder struct{}

func (blockingVideoTranscoder) TranscodeToAnimatedWebp(ctx context.Context, _ domainSticker.MediaBlob, _, _, _, _ int) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestStickerService_RecordsStats(t *testing.T) {
	stats := &fakeStats{}
	img := &fakeImageTranscoder{output: func(int) ([]byte, error) { return sized(42), nil }}
	svc := NewStickerService(img, &fakeVideoTranscoder{}, StickerOptions{Stats: stats})

	_, err := svc.Convert(context.Background(), imageBlob(), false)
	require.NoError(t, err)
	_, err = svc.Convert(context.Background(), domainSticker.MediaBlob{Kind: domainSticker.MediaKindImage}, false)
	require.Error(t, err)

	require.Len(t, stats.records, 2)
	assert.Equal(t, domainStats.OutcomeSuccess, stats.records[0].Outcome)
	assert.Equal(t, 42, stats.records[0].OutputBytes)
	assert.Equal(t, domainStats.OutcomeFailure, stats.records[1].Outcome)
	assert.NotEmpty(t, stats.records[1].Error)
}

func TestStickerService_RecordedErrorStaysValidUTF8(t *testing.T) {
	stats := &fakeStats{}
	cause := errors.New(strings.Repeat("não é possível decodificar ", 40))
	vid := &fakeVideoTranscoder{output: func(int) ([]byte, error) { return nil, cause }}
	svc := NewStickerService(&fakeImageTranscoder{}, vid, StickerOptions{Stats: stats})

	_, err := svc.Convert(context.Background(), videoBlob(), true)
	require.Error(t, err)

	require.Len(t, stats.records, 1)
	recorded := stats.records[0].Error
	assert.LessOrEqual(t, len(recorded), 512)
	assert.True(t, utf8.ValidString(recorded))
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	s := "falha: ação inválida"
	for n := 0; n < len(s); n++ {
		got := truncate(s, n)
		assert.True(t, utf8.ValidString(got), "n=%d", n)
		assert.LessOrEqual(t, len(got), n)
		assert.True(t, strings.HasPrefix(s, got))
	}
	assert.Equal(t, s, truncate(s, len(s)))
}

func TestStickerService_StaticHappyPathWithRealEncoder(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2000, 2000))
	for y := 0; y < 2000; y++ {
		for x := 0; x < 2000; x++ {
			src.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x ^ y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	svc := NewStickerService(transcoder.NewImageTranscoder(), transcoder.NewVideoTranscoder("", t.TempDir()), StickerOptions{})
	res, err := svc.Convert(context.Background(), domainSticker.MediaBlob{
		Data:     buf.Bytes(),
		MimeType: "image/png",
		Kind:     domainSticker.MediaKindImage,
	}, false)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(res.Data), domainSticker.SizeCeiling)
	cfg, err := webp.DecodeConfig(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.Width)
	assert.Equal(t, 512, cfg.Height)
}
