package rest

import (
	"github.com/AzielCF/piebot/core/config"
	domainCommand "github.com/AzielCF/piebot/domains/command"
	domainSession "github.com/AzielCF/piebot/domains/session"
	domainStats "github.com/AzielCF/piebot/domains/stats"
	"github.com/AzielCF/piebot/pkg/msgworker"
	"github.com/AzielCF/piebot/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type PoolStatsProvider interface {
	Stats() msgworker.PoolStats
}

type Stats struct {
	Session domainSession.ISessionUsecase
	Repo    domainStats.IStatsRepository
	Pool    PoolStatsProvider
	Greeted domainCommand.IGreetedStore
}

func InitRestStats(app fiber.Router, handler Stats) Stats {
	app.Get("/stats", handler.GetStats)
	app.Get("/stats/workers", handler.GetWorkerPoolStats)
	return handler
}

// GetStats returns the conversion history summary with the session state.
func (handler *Stats) GetStats(c *fiber.Ctx) error {
	results := map[string]any{
		"session":  handler.Session.Snapshot(),
		"settings": config.Settings(),
	}
	if handler.Repo != nil {
		summary, err := handler.Repo.Summary(c.UserContext())
		utils.PanicIfNeeded(err)
		results["stickers"] = summary
	}
	if handler.Greeted != nil {
		results["greeted_chats"] = handler.Greeted.Len(c.UserContext())
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Stats retrieved",
		Results: results,
	})
}

// GetWorkerPoolStats returns real-time message worker pool statistics.
func (handler *Stats) GetWorkerPoolStats(c *fiber.Ctx) error {
	if handler.Pool == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(utils.ResponseData{
			Status:  fiber.StatusServiceUnavailable,
			Code:    "SERVICE_UNAVAILABLE",
			Message: "Message worker pool not initialized",
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Worker pool stats retrieved",
		Results: handler.Pool.Stats(),
	})
}
