package command

import (
	"context"
	"strings"

	"github.com/AzielCF/piebot/domains/session"
)

// Kind is the classification of an inbound message body.
type Kind string

const (
	KindNone            Kind = ""
	KindPing            Kind = "!ping"
	KindStaticSticker   Kind = "!s"
	KindAnimatedSticker Kind = "!sa"
)

// Parse classifies a message body. Only exact commands match after trimming
// and lower-casing.
func Parse(body string) Kind {
	switch Kind(strings.ToLower(strings.TrimSpace(body))) {
	case KindPing:
		return KindPing
	case KindStaticSticker:
		return KindStaticSticker
	case KindAnimatedSticker:
		return KindAnimatedSticker
	}
	return KindNone
}

// IsSticker reports whether the command requests a sticker.
func (k Kind) IsSticker() bool {
	return k == KindStaticSticker || k == KindAnimatedSticker
}

// IGreetedStore remembers which chats already got the welcome message.
type IGreetedStore interface {
	// MarkGreeted records the chat and reports whether it was not greeted before.
	MarkGreeted(ctx context.Context, chatID string) (bool, error)
	Len(ctx context.Context) int
	Close() error
}

type ICommandUsecase interface {
	Handle(ctx context.Context, msg session.IncomingMessage) error
}
