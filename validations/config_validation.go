package validations

import (
	"context"

	coreconfig "github.com/AzielCF/piebot/core/config"
	domainSticker "github.com/AzielCF/piebot/domains/sticker"
	pkgError "github.com/AzielCF/piebot/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// ValidateConfig rejects configurations the bot cannot run with.
func ValidateConfig(ctx context.Context, cfg *coreconfig.Config) error {
	if cfg == nil {
		return pkgError.ValidationError("config is not loaded")
	}

	err := validation.ValidateStructWithContext(ctx, &cfg.App,
		validation.Field(&cfg.App.Port, validation.Required, is.Port),
	)
	if err != nil {
		return pkgError.ValidationError("app: " + err.Error())
	}

	err = validation.ValidateStructWithContext(ctx, &cfg.Session,
		validation.Field(&cfg.Session.DBURI, validation.Required),
		validation.Field(&cfg.Session.MaxReconnectAttempts, validation.Required, validation.Min(1)),
		validation.Field(&cfg.Session.KeepAliveInterval, validation.Required, validation.Min(0).Exclusive()),
		validation.Field(&cfg.Session.QueueCapacity, validation.Required, validation.Min(1)),
		validation.Field(&cfg.Session.ReconnectCooldown, validation.Min(0)),
		validation.Field(&cfg.Session.InitTimeout, validation.Required, validation.Min(0).Exclusive()),
	)
	if err != nil {
		return pkgError.ValidationError("session: " + err.Error())
	}

	err = validation.ValidateStructWithContext(ctx, &cfg.Sticker,
		validation.Field(&cfg.Sticker.Quality, validation.Required, validation.Min(domainSticker.MinStaticQuality), validation.Max(100)),
		validation.Field(&cfg.Sticker.VideoLimitSeconds, validation.Required, validation.Min(1)),
		validation.Field(&cfg.Sticker.TranscodeTimeout, validation.Required),
		validation.Field(&cfg.Sticker.FFmpegPath, validation.Required),
		validation.Field(&cfg.Sticker.Author, validation.Length(0, 128)),
	)
	if err != nil {
		return pkgError.ValidationError("sticker: " + err.Error())
	}

	err = validation.ValidateStructWithContext(ctx, &cfg.Database,
		validation.Field(&cfg.Database.Driver, validation.Required, validation.In("sqlite", "postgres")),
		validation.Field(&cfg.Database.ValkeyAddress, validation.When(cfg.Database.ValkeyEnabled, validation.Required)),
	)
	if err != nil {
		return pkgError.ValidationError("database: " + err.Error())
	}

	return nil
}
