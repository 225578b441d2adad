// Command smoke runs an end-to-end scenario against a running scanmark
// server and verifies scan/player consistency.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/scanmark/internal/smoke"
	"github.com/okian/scanmark/pkg/logger"
)

func main() {
	addr := flag.String("addr", "http://localhost:8090", "base URL of the server under test")
	players := flag.Int("players", 5, "number of players to load")
	scans := flag.Int("scans", 20, "number of scans to post")
	keep := flag.Bool("keep", false, "keep the smoke event instead of deleting it")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := smoke.Config{
		Addr:    *addr,
		Players: *players,
		Scans:   *scans,
		Keep:    *keep,
	}
	if err := smoke.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "smoke run failed", logger.Error(err))
		os.Exit(1)
	}
}
