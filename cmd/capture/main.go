package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/user/schedule-capture-service/internal/adapter/chromedp_portal"
	"github.com/user/schedule-capture-service/internal/adapter/pdf"
	"github.com/user/schedule-capture-service/internal/repository"
	"github.com/user/schedule-capture-service/internal/usecase"
	"github.com/user/schedule-capture-service/pkg/config"
	"github.com/user/schedule-capture-service/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "could not load config:", err)
		return 1
	}

	// --- Logger ---
	logger.Init(os.Stdout, logger.Level(cfg.LogLevel))
	slog.Info("Logger initialized", "level", cfg.LogLevel)

	// --- Use Case ---
	factory := func() (repository.PortalRepository, error) {
		return chromedp_portal.NewPortal(cfg.LookupTimeout())
	}
	capture := usecase.NewScheduleCapture(factory, pdf.NewStamper(), cfg, os.Stdin)

	result, err := capture.Run(context.Background())
	if err != nil {
		slog.Error("Schedule generation failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		if result != nil {
			slog.Warn("Degraded artifact delivered", "path", result.Path)
		}
		return 1
	}

	slog.Info("Schedule capture completed", "file", result.Path)
	return 0
}
