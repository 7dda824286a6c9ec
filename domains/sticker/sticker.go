package sticker

import (
	"context"
	"strings"
)

// MediaKind classifies downloaded media the way the chat transport reports it.
type MediaKind string

const (
	MediaKindImage    MediaKind = "image"
	MediaKindVideo    MediaKind = "video"
	MediaKindDocument MediaKind = "document"
	MediaKindSticker  MediaKind = "sticker"
	MediaKindOther    MediaKind = "other"
)

// Accepted reports whether the kind can be turned into a sticker.
func (k MediaKind) Accepted() bool {
	switch k {
	case MediaKindImage, MediaKindVideo, MediaKindDocument:
		return true
	}
	return false
}

const MimeTypeWebP = "image/webp"

// MediaBlob is a downloaded media payload. It is never mutated after download.
type MediaBlob struct {
	Data     []byte
	MimeType string
	Kind     MediaKind
}

// Extension derives a filesystem-safe extension from the MIME subtype.
func (b MediaBlob) Extension() string {
	mime := b.MimeType
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	_, sub, ok := strings.Cut(mime, "/")
	if !ok {
		return "bin"
	}
	ext := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return -1
	}, sub)
	if ext == "" {
		return "bin"
	}
	return ext
}

// ConversionAttempt holds the transcoding parameters for one attempt.
// MaxDurationSeconds and FPS are zero for static stickers.
type ConversionAttempt struct {
	Index              int `json:"index"`
	MaxDurationSeconds int `json:"max_duration_seconds"`
	FPS                int `json:"fps"`
	Dimension          int `json:"dimension"`
	Quality            int `json:"quality"`
}

// StickerResult is the terminal value of a successful conversion.
type StickerResult struct {
	Data      []byte
	MimeType  string
	Animated  bool
	Attempts  int
	Oversized bool
}

// PackInfo is embedded into every sticker so WhatsApp shows author and pack name.
type PackInfo struct {
	ID        string
	Name      string
	Publisher string
	Emojis    []string
}

type IImageTranscoder interface {
	Resize(ctx context.Context, input []byte, width, height, quality int) ([]byte, error)
}

type IVideoTranscoder interface {
	TranscodeToAnimatedWebp(ctx context.Context, input MediaBlob, maxDurationSeconds, fps, dimension, quality int) ([]byte, error)
}

type IMetadataWriter interface {
	Embed(webp []byte, pack PackInfo) ([]byte, error)
}

type IStickerUsecase interface {
	Convert(ctx context.Context, blob MediaBlob, animated bool) (StickerResult, error)
}
