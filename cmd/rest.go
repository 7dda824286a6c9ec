package cmd

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	coreconfig "github.com/AzielCF/piebot/core/config"
	"github.com/AzielCF/piebot/ui/rest"
	"github.com/AzielCF/piebot/ui/rest/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Run the bot with its HTTP status page",
	Long:  `Connects the WhatsApp session and serves /, /qr and /health on the configured port.`,
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	if err := initApp(); err != nil {
		logrus.Fatalf("[APP] Failed to initialize: %v", err)
	}
	cfg := coreconfig.Global

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		ServerHeader:          "Hidden",
	})

	app.Use(requestid.New())
	app.Use(middleware.Recovery())
	if cfg.App.Debug {
		app.Use(logger.New())
	}

	rest.InitRestIndex(app, sessionUsecase, statsRepo)
	rest.InitRestQR(app, sessionUsecase)
	rest.InitRestHealth(app, sessionUsecase)
	rest.InitRestStats(app.Group("/api"), rest.Stats{
		Session: sessionUsecase,
		Repo:    statsRepo,
		Pool:    messagePool,
		Greeted: greetedStore,
	})
	rest.InitRestNotFound(app)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messagePool.Start(ctx)
	if err := sessionUsecase.Start(ctx); err != nil {
		logrus.WithError(err).Error("[SESSION] Failed to start session")
	}

	var once sync.Once
	shutdown := func() {
		once.Do(func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stopCancel()

			if err := sessionUsecase.Shutdown(stopCtx); err != nil {
				logrus.WithError(err).Error("[SESSION] Error during shutdown")
			}
			messagePool.Stop()
			if err := app.ShutdownWithContext(stopCtx); err != nil {
				logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
			}
			StopApp()
		})
	}

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	exitCode := 0
	go func() {
		select {
		case <-sigChan:
			logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		case err := <-sessionUsecase.Fatal():
			logrus.WithError(err).Error("[SESSION] Session cannot recover, exiting for the supervisor to restart")
			exitCode = 1
		}
		shutdown()
	}()

	logrus.Infof("[REST] Listening on :%s (environment %s)", cfg.App.Port, cfg.App.Environment)
	if err := app.Listen("0.0.0.0:" + cfg.App.Port); err != nil {
		logrus.Errorf("[REST] Failed to start: %v", err)
		exitCode = 1
	}
	shutdown()
	os.Exit(exitCode)
}
