package usecase

import (
	"context"
	"errors"

	domainCommand "github.com/AzielCF/piebot/domains/command"
	domainSession "github.com/AzielCF/piebot/domains/session"
	domainSticker "github.com/AzielCF/piebot/domains/sticker"
	pkgError "github.com/AzielCF/piebot/pkg/error"
	"github.com/sirupsen/logrus"
)

const (
	MessageGreeting = "👋 Olá! Sou o PieBot\n\nComandos disponíveis:\n• !ping - testar conexão\n• !s - criar figurinha estática\n• !sa - criar figurinha animada\n\nEnvie uma imagem/vídeo junto com o comando ou responda a uma mídia!"
	MessagePong     = "🏓 Pong!"

	MessageNeedImage      = "❌ Envie uma imagem com o comando !s"
	MessageNeedVideo      = "❌ Envie um GIF ou vídeo MP4 com o comando !sa"
	MessageDownloadFailed = "❌ Falha ao baixar mídia"
	MessageStaticFailed   = "❌ Erro ao criar figurinha estática. Verifique se o arquivo é uma imagem válida."
	MessageAnimatedFailed = "❌ Erro ao criar figurinha animada. Verifique se o arquivo é um GIF ou vídeo válido."

	ReactionProcessing = "⏳"
	ReactionSuccess    = "✅"
	ReactionFailure    = "❌"
)

const (
	defaultStickerAuthor = "PieBot"
	defaultStaticName    = "Sticker"
	defaultAnimatedName  = "Animated"
)

// CommandOptions names the stickers produced by the router.
type CommandOptions struct {
	StickerAuthor string
	StaticName    string
	AnimatedName  string
}

type serviceCommand struct {
	session  domainSession.ISessionUsecase
	chat     domainSession.ChatSession
	stickers domainSticker.IStickerUsecase
	greeted  domainCommand.IGreetedStore
	opts     CommandOptions
}

func NewCommandService(
	session domainSession.ISessionUsecase,
	chat domainSession.ChatSession,
	stickers domainSticker.IStickerUsecase,
	greeted domainCommand.IGreetedStore,
	opts CommandOptions,
) domainCommand.ICommandUsecase {
	if opts.StickerAuthor == "" {
		opts.StickerAuthor = defaultStickerAuthor
	}
	if opts.StaticName == "" {
		opts.StaticName = defaultStaticName
	}
	if opts.AnimatedName == "" {
		opts.AnimatedName = defaultAnimatedName
	}
	return &serviceCommand{
		session:  session,
		chat:     chat,
		stickers: stickers,
		greeted:  greeted,
		opts:     opts,
	}
}

// Handle processes one inbound message. User-facing failures are answered in
// the chat and never returned; the error is reserved for delivery problems
// the caller may want to log.
func (service *serviceCommand) Handle(ctx context.Context, msg domainSession.IncomingMessage) error {
	if msg.FromMe {
		return nil
	}

	kind := domainCommand.Parse(msg.Body)
	logrus.Debugf("[COMMAND] Message from %s: %q", msg.ChatID, msg.Body)

	service.greet(ctx, msg.ChatID)

	switch {
	case kind == domainCommand.KindPing:
		return service.reply(ctx, msg.ChatID, MessagePong)
	case kind.IsSticker():
		return service.handleSticker(ctx, msg, kind == domainCommand.KindAnimatedSticker)
	}
	return nil
}

func (service *serviceCommand) greet(ctx context.Context, chatID string) {
	if service.greeted == nil {
		return
	}
	first, err := service.greeted.MarkGreeted(ctx, chatID)
	if err != nil {
		logrus.WithError(err).Warnf("[COMMAND] Failed to check greeting state for %s", chatID)
		return
	}
	if !first {
		return
	}
	logrus.Infof("[COMMAND] Greeting new chat %s", chatID)
	if err := service.reply(ctx, chatID, MessageGreeting); err != nil {
		logrus.WithError(err).Warnf("[COMMAND] Failed to greet %s", chatID)
	}
}

func (service *serviceCommand) handleSticker(ctx context.Context, msg domainSession.IncomingMessage, animated bool) error {
	target, ok := service.resolveTarget(ctx, msg)
	if !ok {
		if animated {
			return service.reply(ctx, msg.ChatID, MessageNeedVideo)
		}
		return service.reply(ctx, msg.ChatID, MessageNeedImage)
	}

	service.react(ctx, msg, ReactionProcessing)

	blob, err := service.chat.DownloadMedia(ctx, target)
	if err == nil && (blob == nil || len(blob.Data) == 0) {
		err = pkgError.DownloadEmptyError("media download returned no data")
	}
	if err != nil {
		logrus.WithError(err).Errorf("[COMMAND] Failed to download media %s", target.ID)
		service.react(ctx, msg, ReactionFailure)
		return service.reply(ctx, msg.ChatID, MessageDownloadFailed)
	}
	if blob.Kind == "" {
		blob.Kind = target.MediaKind
	}

	result, err := service.stickers.Convert(ctx, *blob, animated)
	if err != nil {
		logrus.WithError(err).Errorf("[COMMAND] Sticker conversion failed for %s", msg.ChatID)
		service.react(ctx, msg, ReactionFailure)
		return service.reply(ctx, msg.ChatID, service.failureMessage(err, animated))
	}

	name := service.opts.StaticName
	if animated {
		name = service.opts.AnimatedName
	}
	err = service.session.SafeSend(ctx, msg.ChatID, domainSession.Payload{Sticker: &result}, domainSession.SendOptions{
		StickerAuthor: service.opts.StickerAuthor,
		StickerName:   name,
	})
	if err != nil {
		service.react(ctx, msg, ReactionFailure)
		return err
	}

	service.react(ctx, msg, ReactionSuccess)
	return nil
}

// resolveTarget picks the message whose media becomes the sticker: the
// message itself, else the quoted one.
func (service *serviceCommand) resolveTarget(ctx context.Context, msg domainSession.IncomingMessage) (domainSession.IncomingMessage, bool) {
	if msg.MediaKind.Accepted() {
		return msg, true
	}
	if !msg.HasQuote {
		return msg, false
	}

	quoted, err := service.chat.QuotedMessage(ctx, msg)
	if err != nil {
		logrus.WithError(err).Warnf("[COMMAND] Failed to fetch quoted message for %s", msg.ID)
		return msg, false
	}
	if quoted == nil || !quoted.MediaKind.Accepted() {
		return msg, false
	}
	return *quoted, true
}

func (service *serviceCommand) failureMessage(err error, animated bool) string {
	var empty pkgError.DownloadEmptyError
	if errors.As(err, &empty) {
		return MessageDownloadFailed
	}
	var unsupported pkgError.UnsupportedTypeError
	if errors.As(err, &unsupported) {
		if animated {
			return MessageNeedVideo
		}
		return MessageNeedImage
	}
	if animated {
		return MessageAnimatedFailed
	}
	return MessageStaticFailed
}

func (service *serviceCommand) reply(ctx context.Context, chatID, text string) error {
	return service.session.SafeSend(ctx, chatID, domainSession.Payload{Text: text}, domainSession.SendOptions{})
}

// react is best effort; failures are only logged.
func (service *serviceCommand) react(ctx context.Context, msg domainSession.IncomingMessage, emoji string) {
	if err := service.chat.React(ctx, msg, emoji); err != nil {
		logrus.WithError(err).Debugf("[COMMAND] Could not react %s to %s", emoji, msg.ID)
	}
}
