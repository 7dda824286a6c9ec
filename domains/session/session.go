package session

import (
	"context"
	"time"

	"github.com/AzielCF/piebot/domains/sticker"
)

// State is the lifecycle state of the chat session.
type State string

const (
	StateUninitialized    State = "uninitialized"
	StateAwaitingQR       State = "awaiting_qr"
	StateAuthenticated    State = "authenticated"
	StateReady            State = "ready"
	StateDisconnected     State = "disconnected"
	StateReauthenticating State = "reauthenticating"
)

// Payload is an outbound message. Exactly one of Text or Sticker is set.
type Payload struct {
	Text    string
	Sticker *sticker.StickerResult
}

// SendOptions tweak how a payload is delivered.
type SendOptions struct {
	QuotedMessageID string
	StickerAuthor   string
	StickerName     string
}

// OutboundMessage is one entry of the pending send queue.
type OutboundMessage struct {
	Destination string
	Payload     Payload
	Options     SendOptions
}

// IncomingMessage is the transport-neutral view of a received chat message.
type IncomingMessage struct {
	ID        string
	ChatID    string
	SenderID  string
	PushName  string
	FromMe    bool
	Body      string
	MediaKind sticker.MediaKind
	MimeType  string
	HasQuote  bool
	Timestamp time.Time

	// Source is the transport's own message value. Only the ChatSession that
	// produced the message interprets it.
	Source any
}

// HasMedia reports whether the message carries media of any kind.
func (m IncomingMessage) HasMedia() bool {
	return m.MediaKind != "" && m.MediaKind != sticker.MediaKindOther
}

// Listener receives connection events from the transport. The lifecycle is
// the only implementation and the only writer of State.
type Listener interface {
	HandleQR(code string)
	HandleAuthenticated()
	HandleAuthFailure(reason string)
	HandleReady()
	HandleDisconnected(reason string)
}

// ChatSession is the capability the core needs from the chat transport.
type ChatSession interface {
	Subscribe(listener Listener)
	OnMessage(handler func(msg IncomingMessage))
	Initialize(ctx context.Context) error
	Destroy(ctx context.Context) error
	SendMessage(ctx context.Context, destination string, payload Payload, opts SendOptions) error
	SendPresenceAvailable(ctx context.Context) error
	QuotedMessage(ctx context.Context, msg IncomingMessage) (*IncomingMessage, error)
	DownloadMedia(ctx context.Context, msg IncomingMessage) (*sticker.MediaBlob, error)
	React(ctx context.Context, msg IncomingMessage, emoji string) error
	PushName() string
	Close() error
}

// Snapshot is a read-only copy of the lifecycle for presentation.
type Snapshot struct {
	State             State      `json:"state"`
	Ready             bool       `json:"ready"`
	HasQR             bool       `json:"has_qr"`
	ReconnectAttempts int        `json:"reconnect_attempts"`
	QueuedMessages    int        `json:"queued_messages"`
	ReadySince        *time.Time `json:"ready_since,omitempty"`
}

type ISessionUsecase interface {
	Listener
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
	SafeSend(ctx context.Context, destination string, payload Payload, opts SendOptions) error
	State() State
	IsReady() bool
	CurrentQR() string
	Snapshot() Snapshot
	Fatal() <-chan error
}
