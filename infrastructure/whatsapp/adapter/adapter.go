package adapter

import (
	"strings"
	"sync"

	domainSession "github.com/AzielCF/piebot/domains/session"
	domainSticker "github.com/AzielCF/piebot/domains/sticker"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
)

// Config holds what the adapter needs to open the device store and client.
type Config struct {
	DBURI           string
	LogLevel        string
	OS              string
	MaxDownloadSize int64
	Metadata        domainSticker.IMetadataWriter
}

// WhatsAppAdapter implements session.ChatSession on top of whatsmeow. It owns
// the device store and a single client that is rebuilt on every Initialize.
type WhatsAppAdapter struct {
	cfg Config

	mu        sync.RWMutex
	container *sqlstore.Container
	client    *whatsmeow.Client
	handlerID uint32
	stopQR    func()

	listener domainSession.Listener
	onMsg    func(domainSession.IncomingMessage)

	// Listener callbacks run on one goroutine, in order, so that whatsmeow's
	// event loop never waits on a queue drain.
	notifications chan func(domainSession.Listener)
	done          chan struct{}
	closeOnce     sync.Once
}

var _ domainSession.ChatSession = (*WhatsAppAdapter)(nil)

func NewAdapter(cfg Config) *WhatsAppAdapter {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "ERROR"
	}
	wa := &WhatsAppAdapter{
		cfg:           cfg,
		notifications: make(chan func(domainSession.Listener), 64),
		done:          make(chan struct{}),
	}
	go wa.dispatchNotifications()
	return wa
}

func (wa *WhatsAppAdapter) Subscribe(listener domainSession.Listener) {
	wa.mu.Lock()
	defer wa.mu.Unlock()
	wa.listener = listener
}

func (wa *WhatsAppAdapter) OnMessage(handler func(domainSession.IncomingMessage)) {
	wa.mu.Lock()
	defer wa.mu.Unlock()
	wa.onMsg = handler
}

func (wa *WhatsAppAdapter) notify(fn func(domainSession.Listener)) {
	select {
	case wa.notifications <- fn:
	case <-wa.done:
	}
}

func (wa *WhatsAppAdapter) dispatchNotifications() {
	for {
		select {
		case fn := <-wa.notifications:
			wa.mu.RLock()
			l := wa.listener
			wa.mu.RUnlock()
			if l != nil {
				fn(l)
			}
		case <-wa.done:
			return
		}
	}
}

func (wa *WhatsAppAdapter) currentClient() *whatsmeow.Client {
	wa.mu.RLock()
	defer wa.mu.RUnlock()
	return wa.client
}

// PushName returns the display name of the logged in account.
func (wa *WhatsAppAdapter) PushName() string {
	client := wa.currentClient()
	if client == nil || client.Store == nil {
		return ""
	}
	if client.Store.PushName != "" {
		return client.Store.PushName
	}
	if client.Store.ID != nil {
		return client.Store.ID.User
	}
	return ""
}

// Close stops the notification dispatcher and releases the device store.
// Destroy should be called first.
func (wa *WhatsAppAdapter) Close() error {
	var err error
	wa.closeOnce.Do(func() {
		close(wa.done)

		wa.mu.Lock()
		container := wa.container
		wa.container = nil
		wa.mu.Unlock()

		if container != nil {
			err = container.Close()
		}
	})
	return err
}

// parseJID accepts full JIDs or bare phone numbers.
func parseJID(chatID string) (types.JID, error) {
	if strings.Contains(chatID, "@") {
		return types.ParseJID(chatID)
	}
	return types.NewJID(chatID, types.DefaultUserServer), nil
}
