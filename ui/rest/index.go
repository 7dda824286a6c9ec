package rest

import (
	domainSession "github.com/AzielCF/piebot/domains/session"
	domainStats "github.com/AzielCF/piebot/domains/stats"
	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type Index struct {
	Session domainSession.ISessionUsecase
	Stats   domainStats.IStatsRepository
}

func InitRestIndex(app fiber.Router, session domainSession.ISessionUsecase, stats domainStats.IStatsRepository) Index {
	handler := Index{Session: session, Stats: stats}
	app.Get("/", handler.Page)
	return handler
}

func (handler *Index) Page(c *fiber.Ctx) error {
	snapshot := handler.Session.Snapshot()

	var summary domainStats.Summary
	if handler.Stats != nil {
		s, err := handler.Stats.Summary(c.UserContext())
		if err != nil {
			logrus.WithError(err).Warn("[REST] Failed to load sticker stats")
		} else {
			summary = s
		}
	}

	online := ""
	if snapshot.ReadySince != nil {
		online = humanize.Time(*snapshot.ReadySince)
	}

	return renderPage(c, "index", map[string]any{
		"Session": snapshot,
		"Online":  online,
		"Created": summary.Total - summary.Failed,
		"Output":  humanize.Bytes(uint64(summary.OutputBytes)),
	})
}
