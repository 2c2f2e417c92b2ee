package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/rocketscienceinc/connectfour-backend/internal/config"
	"github.com/rocketscienceinc/connectfour-backend/internal/terminal"
)

// main - plays a local two-player game in the terminal.
func main() {
	configPath := flag.String("config", "config.yml", "path to the config file")
	logPath := flag.String("log", "", "file to write logs to, logs are dropped when empty")
	flag.Parse()

	if err := run(*configPath, *logPath); err != nil {
		fmt.Fprintf(os.Stderr, "terminal game failed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, logPath string) error {
	conf, err := config.Load(configPath)
	if err != nil {
		return err
	}

	var out io.Writer = io.Discard
	if logPath != "" {
		logFile, openErr := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if openErr != nil {
			return fmt.Errorf("failed to open log file: %w", openErr)
		}
		defer logFile.Close()

		out = logFile
	}

	// stdout belongs to the screen, so logs go elsewhere.
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: conf.SlogLevel()}))

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}

	if err = screen.Init(); err != nil {
		return fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	terminal.New(logger, screen).Run(ctx)

	return nil
}
