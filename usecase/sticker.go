package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	domainStats "github.com/AzielCF/piebot/domains/stats"
	domainSticker "github.com/AzielCF/piebot/domains/sticker"
	pkgError "github.com/AzielCF/piebot/pkg/error"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// StickerOptions tunes the conversion pipeline.
type StickerOptions struct {
	Policy           domainSticker.Policy
	TranscodeTimeout time.Duration
	// StrictCeiling fails conversions whose last attempt is still above the
	// ceiling instead of returning the oversized sticker.
	StrictCeiling bool
	Stats         domainStats.IStatsRepository
}

type serviceSticker struct {
	image   domainSticker.IImageTranscoder
	video   domainSticker.IVideoTranscoder
	policy  domainSticker.Policy
	timeout time.Duration
	strict  bool
	stats   domainStats.IStatsRepository
}

func NewStickerService(image domainSticker.IImageTranscoder, video domainSticker.IVideoTranscoder, opts StickerOptions) domainSticker.IStickerUsecase {
	if opts.Policy == (domainSticker.Policy{}) {
		opts.Policy = domainSticker.DefaultPolicy()
	}
	if opts.TranscodeTimeout <= 0 {
		opts.TranscodeTimeout = 60 * time.Second
	}
	return &serviceSticker{
		image:   image,
		video:   video,
		policy:  opts.Policy,
		timeout: opts.TranscodeTimeout,
		strict:  opts.StrictCeiling,
		stats:   opts.Stats,
	}
}

// Convert runs at most two transcoding attempts. The command (animated or not)
// picks the transcoder; the declared MIME type does not.
func (service *serviceSticker) Convert(ctx context.Context, blob domainSticker.MediaBlob, animated bool) (result domainSticker.StickerResult, err error) {
	started := time.Now()
	defer func() {
		service.record(ctx, blob, animated, result, err, time.Since(started))
	}()

	if len(blob.Data) == 0 {
		return result, pkgError.DownloadEmptyError("media download returned no data")
	}
	if !blob.Kind.Accepted() {
		return result, pkgError.UnsupportedTypeError(fmt.Sprintf("media kind %q cannot be converted", blob.Kind))
	}

	logrus.Infof("[STICKER] Converting %s (%s, %s), animated=%v", blob.Kind, blob.MimeType, humanize.Bytes(uint64(len(blob.Data))), animated)

	var out []byte
	for i := 0; i < domainSticker.MaxAttempts; i++ {
		attempt := service.policy.Attempt(animated, i)

		out, err = service.transcode(ctx, blob, animated, attempt)
		if err != nil {
			logrus.WithError(err).Errorf("[STICKER] Attempt %d failed", attempt.Index)
			return domainSticker.StickerResult{}, pkgError.NewTranscodeError(attempt.Index, err)
		}
		if len(out) == 0 {
			return domainSticker.StickerResult{}, pkgError.NewTranscodeError(attempt.Index, errors.New("transcoder produced no output"))
		}

		logrus.Infof("[STICKER] Attempt %d produced %s", attempt.Index, humanize.Bytes(uint64(len(out))))

		if !domainSticker.Exceeds(len(out)) {
			return domainSticker.StickerResult{
				Data:     out,
				MimeType: domainSticker.MimeTypeWebP,
				Animated: animated,
				Attempts: i + 1,
			}, nil
		}
	}

	if service.strict {
		return domainSticker.StickerResult{}, pkgError.NewTranscodeError(domainSticker.MaxAttempts-1,
			fmt.Errorf("output of %s is above the %s ceiling", humanize.Bytes(uint64(len(out))), humanize.Bytes(domainSticker.SizeCeiling)))
	}

	logrus.Warnf("[STICKER] Still %s after the reduced attempt, sending anyway", humanize.Bytes(uint64(len(out))))
	return domainSticker.StickerResult{
		Data:      out,
		MimeType:  domainSticker.MimeTypeWebP,
		Animated:  animated,
		Attempts:  domainSticker.MaxAttempts,
		Oversized: true,
	}, nil
}

func (service *serviceSticker) transcode(ctx context.Context, blob domainSticker.MediaBlob, animated bool, attempt domainSticker.ConversionAttempt) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, service.timeout)
	defer cancel()

	if animated {
		return service.video.TranscodeToAnimatedWebp(ctx, blob, attempt.MaxDurationSeconds, attempt.FPS, attempt.Dimension, attempt.Quality)
	}
	return service.image.Resize(ctx, blob.Data, attempt.Dimension, attempt.Dimension, attempt.Quality)
}

func (service *serviceSticker) record(ctx context.Context, blob domainSticker.MediaBlob, animated bool, result domainSticker.StickerResult, convErr error, took time.Duration) {
	if service.stats == nil {
		return
	}

	rec := domainStats.ConversionRecord{
		Animated:    animated,
		InputKind:   string(blob.Kind),
		InputBytes:  len(blob.Data),
		OutputBytes: len(result.Data),
		Attempts:    result.Attempts,
		Oversized:   result.Oversized,
		Outcome:     domainStats.OutcomeSuccess,
		DurationMs:  took.Milliseconds(),
	}
	if convErr != nil {
		rec.Outcome = domainStats.OutcomeFailure
		rec.Error = truncate(convErr.Error(), 512)
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := service.stats.Record(recordCtx, rec); err != nil {
		logrus.WithError(err).Warn("[STICKER] Failed to record conversion stats")
	}
}

// truncate keeps at most n bytes of s without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
