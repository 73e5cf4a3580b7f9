package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bryan-buckman/syndicate/internal/config"
	"github.com/bryan-buckman/syndicate/internal/feed"
	"github.com/bryan-buckman/syndicate/internal/llm"
	"github.com/bryan-buckman/syndicate/internal/logging"
	"github.com/bryan-buckman/syndicate/internal/model"
	"github.com/bryan-buckman/syndicate/internal/platform"
	"github.com/bryan-buckman/syndicate/internal/publish"
	"github.com/bryan-buckman/syndicate/internal/schedule"
	"github.com/bryan-buckman/syndicate/internal/server"
	"github.com/bryan-buckman/syndicate/internal/transform"
)

func main() {
	logger := logging.New()
	cfg := config.Load(logger)

	// A bad limit table is a configuration error, not a runtime one.
	if err := platform.Validate(); err != nil {
		logger.WithError(err).Fatal("Platform limit table is invalid")
	}

	generator := llm.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiAPIURL)
	selector := feed.NewSelector(logger)
	transformer := transform.New(generator)

	publishers := publish.Registry{
		model.PlatformTwitter:  publish.NewTwitterClient(""),
		model.PlatformLinkedIn: publish.NewLinkedInClient(""),
	}

	registry := schedule.NewRegistry()
	batches := schedule.NewBatchRegistry()
	dispatcher := schedule.NewDispatcher(publishers, registry, logger)
	scheduler := schedule.NewScheduler(registry, dispatcher, logger)
	scheduler.Start()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Info("Shutting down")
		scheduler.Stop()
		os.Exit(0)
	}()

	srv := server.New(cfg, logger, selector, transformer, scheduler, batches, registry)
	if err := srv.Start(cfg.ListenAddr); err != nil {
		logger.WithError(err).Fatal("Server exited")
	}
}
