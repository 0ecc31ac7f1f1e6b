package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/germanamz/minirag/pkg/engine"
	"github.com/germanamz/minirag/pkg/mcpserver"
)

// runMCP serves the generate tool over stdin/stdout until the client
// disconnects or a signal arrives. Logs go to stderr so stdout stays clean
// for the protocol.
func runMCP(args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	envFile := fs.String("env", ".env", "path to .env file (ignored if missing)")
	configPath := fs.String("config", "", "path to an optional YAML configuration file")
	verbose := fs.Bool("verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := loadDotEnv(*envFile); err != nil {
		return err
	}

	cfg, err := resolveConfig(runOptions{configPath: *configPath})
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := newLogger(os.Stderr, level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	eng, err := engine.New(ctx, cfg, engine.WithLogger(log))
	if err != nil {
		return err
	}

	active := eng.Config()
	log.Info("mcp server starting", "model", active.Provider.Model, "backend", active.Provider.Kind)

	err = mcpserver.New("minirag", version, eng).Serve(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
