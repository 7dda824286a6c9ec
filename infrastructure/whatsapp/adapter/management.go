package adapter

import (
	"context"
	"fmt"
	"time"

	domainSession "github.com/AzielCF/piebot/domains/session"
	domainSticker "github.com/AzielCF/piebot/domains/sticker"
	"github.com/dustin/go-humanize"
	"go.mau.fi/whatsmeow/proto/waCommon"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"
)

func sourceMessage(msg domainSession.IncomingMessage) (*waE2E.Message, error) {
	m, ok := msg.Source.(*waE2E.Message)
	if !ok || m == nil {
		return nil, fmt.Errorf("message %s has no whatsapp payload", msg.ID)
	}
	return m, nil
}

// QuotedMessage returns the message msg replies to, built from the quote
// embedded in its context info.
func (wa *WhatsAppAdapter) QuotedMessage(_ context.Context, msg domainSession.IncomingMessage) (*domainSession.IncomingMessage, error) {
	m, err := sourceMessage(msg)
	if err != nil {
		return nil, err
	}
	ci := contextInfo(m)
	quoted := ci.GetQuotedMessage()
	if quoted == nil {
		return nil, fmt.Errorf("message %s does not quote another message", msg.ID)
	}

	kind, mime, _ := mediaInfo(quoted)
	sender := ci.GetParticipant()
	if sender == "" {
		sender = msg.ChatID
	}
	return &domainSession.IncomingMessage{
		ID:        ci.GetStanzaID(),
		ChatID:    msg.ChatID,
		SenderID:  sender,
		Body:      messageText(quoted),
		MediaKind: kind,
		MimeType:  mime,
		HasQuote:  contextInfo(quoted).GetQuotedMessage() != nil,
		Source:    quoted,
	}, nil
}

// DownloadMedia fetches and decrypts the media of msg. It returns nil when
// the message carries no media.
func (wa *WhatsAppAdapter) DownloadMedia(ctx context.Context, msg domainSession.IncomingMessage) (*domainSticker.MediaBlob, error) {
	client := wa.currentClient()
	if client == nil {
		return nil, errNoClient
	}
	m, err := sourceMessage(msg)
	if err != nil {
		return nil, err
	}

	target := downloadable(m)
	if target == nil {
		return nil, nil
	}
	kind, mime, size := mediaInfo(m)
	if limit := wa.cfg.MaxDownloadSize; limit > 0 && size > uint64(limit) {
		return nil, fmt.Errorf("media is %s, above the %s download limit", humanize.Bytes(size), humanize.Bytes(uint64(limit)))
	}

	data, err := client.Download(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to download media: %w", err)
	}
	return &domainSticker.MediaBlob{Data: data, MimeType: mime, Kind: kind}, nil
}

// React sets emoji as the bot's reaction to msg.
func (wa *WhatsAppAdapter) React(ctx context.Context, msg domainSession.IncomingMessage, emoji string) error {
	client := wa.currentClient()
	if client == nil {
		return errNoClient
	}
	chat, err := parseJID(msg.ChatID)
	if err != nil {
		return err
	}

	key := &waCommon.MessageKey{
		FromMe:    proto.Bool(msg.FromMe),
		ID:        proto.String(msg.ID),
		RemoteJID: proto.String(chat.String()),
	}
	if chat.Server == types.GroupServer && msg.SenderID != "" {
		key.Participant = proto.String(msg.SenderID)
	}

	_, err = client.SendMessage(ctx, chat, &waE2E.Message{
		ReactionMessage: &waE2E.ReactionMessage{
			Key:               key,
			Text:              proto.String(emoji),
			SenderTimestampMS: proto.Int64(time.Now().UnixMilli()),
		},
	})
	return err
}

// SendPresenceAvailable marks the account online.
func (wa *WhatsAppAdapter) SendPresenceAvailable(ctx context.Context) error {
	client := wa.currentClient()
	if client == nil {
		return errNoClient
	}
	if !client.IsConnected() {
		return fmt.Errorf("client is not connected")
	}
	return client.SendPresence(ctx, types.PresenceAvailable)
}
