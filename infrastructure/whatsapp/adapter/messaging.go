package adapter

import (
	"context"
	"errors"
	"fmt"

	domainSession "github.com/AzielCF/piebot/domains/session"
	domainSticker "github.com/AzielCF/piebot/domains/sticker"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"
)

var errNoClient = errors.New("chat session is not initialized")

// SendMessage delivers a text or sticker payload to destination.
func (wa *WhatsAppAdapter) SendMessage(ctx context.Context, destination string, payload domainSession.Payload, opts domainSession.SendOptions) error {
	client := wa.currentClient()
	if client == nil {
		return errNoClient
	}

	jid, err := parseJID(destination)
	if err != nil {
		return fmt.Errorf("invalid JID %q: %w", destination, err)
	}

	var msg *waE2E.Message
	if payload.Sticker != nil {
		msg, err = wa.buildSticker(ctx, client, payload.Sticker, opts)
		if err != nil {
			return err
		}
	} else {
		msg = &waE2E.Message{
			ExtendedTextMessage: &waE2E.ExtendedTextMessage{
				Text:        proto.String(payload.Text),
				ContextInfo: quoteContext(jid, opts.QuotedMessageID),
			},
		}
	}

	resp, err := client.SendMessage(ctx, jid, msg)
	if err != nil {
		return err
	}
	logrus.Debugf("[WHATSAPP] Sent message %s to %s", resp.ID, jid.String())
	return nil
}

func (wa *WhatsAppAdapter) buildSticker(ctx context.Context, client *whatsmeow.Client, result *domainSticker.StickerResult, opts domainSession.SendOptions) (*waE2E.Message, error) {
	data := result.Data
	if wa.cfg.Metadata != nil && (opts.StickerName != "" || opts.StickerAuthor != "") {
		tagged, err := wa.cfg.Metadata.Embed(data, domainSticker.PackInfo{
			ID:        uuid.NewString(),
			Name:      opts.StickerName,
			Publisher: opts.StickerAuthor,
		})
		if err != nil {
			logrus.WithError(err).Warn("[WHATSAPP] Failed to embed sticker metadata, sending without it")
		} else {
			data = tagged
		}
	}

	uploaded, err := client.Upload(ctx, data, whatsmeow.MediaImage)
	if err != nil {
		return nil, fmt.Errorf("failed to upload sticker: %w", err)
	}

	mime := result.MimeType
	if mime == "" {
		mime = domainSticker.MimeTypeWebP
	}
	return &waE2E.Message{
		StickerMessage: &waE2E.StickerMessage{
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			MediaKey:      uploaded.MediaKey,
			Mimetype:      proto.String(mime),
			FileEncSHA256: uploaded.FileEncSHA256,
			FileSHA256:    uploaded.FileSHA256,
			FileLength:    proto.Uint64(uploaded.FileLength),
			IsAnimated:    proto.Bool(result.Animated),
		},
	}, nil
}

func quoteContext(jid types.JID, quotedID string) *waE2E.ContextInfo {
	if quotedID == "" {
		return nil
	}
	return &waE2E.ContextInfo{
		StanzaID:      proto.String(quotedID),
		Participant:   proto.String(jid.String()),
		QuotedMessage: &waE2E.Message{Conversation: proto.String("")},
	}
}
