package adapter

import (
	"fmt"

	domainSession "github.com/AzielCF/piebot/domains/session"
	domainSticker "github.com/AzielCF/piebot/domains/sticker"
	"github.com/sirupsen/logrus"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types/events"
)

// handleEvent maps whatsmeow events to listener callbacks and inbound messages.
func (wa *WhatsAppAdapter) handleEvent(evt any) {
	switch v := evt.(type) {
	case *events.PairSuccess:
		logrus.Infof("[WHATSAPP] Paired with %s", v.ID.String())
		wa.notify(func(l domainSession.Listener) { l.HandleAuthenticated() })

	case *events.Connected:
		wa.notify(func(l domainSession.Listener) {
			l.HandleAuthenticated()
			l.HandleReady()
		})

	case *events.Disconnected:
		wa.notify(func(l domainSession.Listener) { l.HandleDisconnected("connection lost") })

	case *events.KeepAliveTimeout:
		logrus.Debugf("[WHATSAPP] Keep-alive timeout (%d errors)", v.ErrorCount)

	case *events.StreamReplaced:
		wa.notify(func(l domainSession.Listener) { l.HandleDisconnected("stream replaced by another client") })

	case *events.LoggedOut:
		reason := fmt.Sprintf("logged out: %s", v.Reason.String())
		wa.notify(func(l domainSession.Listener) { l.HandleAuthFailure(reason) })

	case *events.ConnectFailure:
		reason := fmt.Sprintf("connect failure: %s %s", v.Reason.String(), v.Message)
		wa.notify(func(l domainSession.Listener) { l.HandleAuthFailure(reason) })

	case *events.ClientOutdated:
		wa.notify(func(l domainSession.Listener) { l.HandleAuthFailure("client outdated") })

	case *events.TemporaryBan:
		reason := "temporary ban: " + v.String()
		wa.notify(func(l domainSession.Listener) { l.HandleAuthFailure(reason) })

	case *events.Message:
		if isStatusBroadcast(v) {
			return
		}
		wa.mu.RLock()
		handler := wa.onMsg
		wa.mu.RUnlock()
		if handler == nil {
			return
		}
		handler(toIncoming(v))
	}
}

func isStatusBroadcast(v *events.Message) bool {
	return v.Info.Chat.String() == "status@broadcast" ||
		v.Info.Sender.String() == "status@broadcast" ||
		v.Info.IsIncomingBroadcast()
}

func toIncoming(v *events.Message) domainSession.IncomingMessage {
	kind, mime, _ := mediaInfo(v.Message)
	ci := contextInfo(v.Message)
	return domainSession.IncomingMessage{
		ID:        v.Info.ID,
		ChatID:    v.Info.Chat.ToNonAD().String(),
		SenderID:  v.Info.Sender.ToNonAD().String(),
		PushName:  v.Info.PushName,
		FromMe:    v.Info.IsFromMe,
		Body:      messageText(v.Message),
		MediaKind: kind,
		MimeType:  mime,
		HasQuote:  ci.GetQuotedMessage() != nil,
		Timestamp: v.Info.Timestamp,
		Source:    v.Message,
	}
}

// messageText returns the text body or the media caption.
func messageText(m *waE2E.Message) string {
	if m == nil {
		return ""
	}
	switch {
	case m.GetConversation() != "":
		return m.GetConversation()
	case m.GetExtendedTextMessage() != nil:
		return m.GetExtendedTextMessage().GetText()
	case m.GetImageMessage() != nil:
		return m.GetImageMessage().GetCaption()
	case m.GetVideoMessage() != nil:
		return m.GetVideoMessage().GetCaption()
	case m.GetDocumentMessage() != nil:
		return m.GetDocumentMessage().GetCaption()
	}
	return ""
}

// mediaInfo classifies the media carried by m.
func mediaInfo(m *waE2E.Message) (domainSticker.MediaKind, string, uint64) {
	if m == nil {
		return "", "", 0
	}
	if img := m.GetImageMessage(); img != nil {
		return domainSticker.MediaKindImage, img.GetMimetype(), img.GetFileLength()
	}
	if vid := m.GetVideoMessage(); vid != nil {
		return domainSticker.MediaKindVideo, vid.GetMimetype(), vid.GetFileLength()
	}
	if doc := m.GetDocumentMessage(); doc != nil {
		return domainSticker.MediaKindDocument, doc.GetMimetype(), doc.GetFileLength()
	}
	if st := m.GetStickerMessage(); st != nil {
		return domainSticker.MediaKindSticker, st.GetMimetype(), st.GetFileLength()
	}
	if m.GetAudioMessage() != nil {
		return domainSticker.MediaKindOther, m.GetAudioMessage().GetMimetype(), m.GetAudioMessage().GetFileLength()
	}
	return "", "", 0
}

func downloadable(m *waE2E.Message) whatsmeow.DownloadableMessage {
	switch {
	case m.GetImageMessage() != nil:
		return m.GetImageMessage()
	case m.GetVideoMessage() != nil:
		return m.GetVideoMessage()
	case m.GetDocumentMessage() != nil:
		return m.GetDocumentMessage()
	case m.GetStickerMessage() != nil:
		return m.GetStickerMessage()
	case m.GetAudioMessage() != nil:
		return m.GetAudioMessage()
	}
	return nil
}

func contextInfo(m *waE2E.Message) *waE2E.ContextInfo {
	switch {
	case m.GetExtendedTextMessage() != nil:
		return m.GetExtendedTextMessage().GetContextInfo()
	case m.GetImageMessage() != nil:
		return m.GetImageMessage().GetContextInfo()
	case m.GetVideoMessage() != nil:
		return m.GetVideoMessage().GetContextInfo()
	case m.GetDocumentMessage() != nil:
		return m.GetDocumentMessage().GetContextInfo()
	case m.GetStickerMessage() != nil:
		return m.GetStickerMessage().GetContextInfo()
	}
	return nil
}
