package usecase

import (
	"context"
	"errors"
	"sync"

	domainSession "github.com/AzielCF/piebot/domains/session"
	domainSticker "github.com/AzielCF/piebot/domains/sticker"
)

type sentMessage struct {
	Destination string
	Payload     domainSession.Payload
	Options     domainSession.SendOptions
}

type reaction struct {
	MessageID string
	Emoji     string
}

// fakeChat records every call made against the transport.
type fakeChat struct {
	mu sync.Mutex

	listener domainSession.Listener
	handler  func(domainSession.IncomingMessage)

	initCalls     int
	destroyCalls  int
	presenceCalls int
	initErr       error
	onInit        func(call int)
	sendErr       error
	reactErr      error
	downloadErr   error

	sent      []sentMessage
	reactions []reaction

	quoted   map[string]*domainSession.IncomingMessage
	media    map[string]*domainSticker.MediaBlob
	pushName string
}

func newFakeChat() *fakeChat {
	return &fakeChat{
		quoted: map[string]*domainSession.IncomingMessage{},
		media:  map[string]*domainSticker.MediaBlob{},
	}
}

func (f *fakeChat) Subscribe(l domainSession.Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listener = l
}

func (f *fakeChat) OnMessage(h func(domainSession.IncomingMessage)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
}

// Initialize runs onInit outside the lock so it can feed events back into
// the listener while initialization is in flight.
func (f *fakeChat) Initialize(context.Context) error {
	f.mu.Lock()
	f.initCalls++
	call, hook, err := f.initCalls, f.onInit, f.initErr
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	return err
}

func (f *fakeChat) Destroy(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyCalls++
	return nil
}

func (f *fakeChat) SendMessage(_ context.Context, dest string, p domainSession.Payload, o domainSession.SendOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMessage{Destination: dest, Payload: p, Options: o})
	return nil
}

func (f *fakeChat) SendPresenceAvailable(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presenceCalls++
	return nil
}

func (f *fakeChat) QuotedMessage(_ context.Context, msg domainSession.IncomingMessage) (*domainSession.IncomingMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.quoted[msg.ID]
	if !ok {
		return nil, errors.New("quoted message not found")
	}
	return q, nil
}

func (f *fakeChat) DownloadMedia(_ context.Context, msg domainSession.IncomingMessage) (*domainSticker.MediaBlob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	blob, ok := f.media[msg.ID]
	if !ok {
		return nil, nil
	}
	return blob, nil
}

func (f *fakeChat) React(_ context.Context, msg domainSession.IncomingMessage, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, reaction{MessageID: msg.ID, Emoji: emoji})
	return f.reactErr
}

func (f *fakeChat) PushName() string { return f.pushName }

func (f *fakeChat) Close() error { return nil }

func (f *fakeChat) counts() (init, destroy, presence int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initCalls, f.destroyCalls, f.presenceCalls
}

func (f *fakeChat) sentMessages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func (f *fakeChat) reactionEmojis() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.reactions))
	for _, r := range f.reactions {
		out = append(out, r.Emoji)
	}
	return out
}
