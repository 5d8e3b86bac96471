package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/matheus3301/wtox/internal/api"
	"github.com/matheus3301/wtox/internal/lock"
	"github.com/matheus3301/wtox/internal/logging"
	"github.com/matheus3301/wtox/internal/session"
	"github.com/matheus3301/wtox/internal/tui"
	"go.uber.org/zap"
)

const binaryName = "wtoxtui"

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	debugFlag := flag.Bool("debug", false, "log at debug level")
	flag.Parse()

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		exit(err)
	}

	cfg, err := session.LoadConfig(sessionName)
	if err != nil {
		exit(fmt.Errorf("load config for session %q: %w", sessionName, err))
	}
	if err := session.ValidateConfig(cfg); err != nil {
		exit(err)
	}
	if err := session.EnsureDir(sessionName); err != nil {
		exit(err)
	}

	held, err := lock.Acquire(session.LockPath(sessionName, binaryName), binaryName)
	if err != nil {
		exit(err)
	}
	defer func() { _ = held.Release() }()

	// The screen owns stdout and stderr, so logs only go to the file.
	logger, err := logging.New(session.LogPath(sessionName, binaryName), sessionName, logging.Options{Debug: *debugFlag})
	if err != nil {
		exit(err)
	}
	defer func() { _ = logger.Sync() }()

	client, err := api.New(cfg, logger)
	if err != nil {
		exit(err)
	}

	app := tui.NewApp(tui.Options{
		Session: sessionName,
		Config:  cfg,
		Client:  client,
		Logger:  logger,
	})
	logger.Info("starting", zap.String("server", cfg.ServerURL))
	if err := app.Run(); err != nil {
		logger.Error("tui exited", zap.Error(err))
		exit(err)
	}
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
