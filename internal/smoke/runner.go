package smoke

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/scanmark/pkg/logger"
)

// Config controls one smoke run.
type Config struct {
	// Addr is the base URL of the server under test.
	Addr string

	// Players and Scans size the generated data set.
	Players int
	Scans   int

	// Keep leaves the smoke event in place for inspection.
	Keep bool
}

// Run executes one end-to-end scenario: create an event, load players, post
// scans, cycle each scan through assign/reassign/clear, then verify the
// back-references both locally and through the server-side audit.
func Run(ctx context.Context, cfg Config) error {
	log := logger.Named("smoke")
	client := NewClient(cfg.Addr)
	event := fmt.Sprintf("smoke-%d", time.Now().Unix())

	if err := client.CreateEvent(ctx, event); err != nil {
		return err
	}
	log.Info(ctx, "event created", logger.String("event", event))
	if !cfg.Keep {
		defer func() {
			if err := client.DeleteEvent(context.Background(), event); err != nil {
				log.Warn(ctx, "cleanup failed", logger.Error(err))
			}
		}()
	}

	players := make([]Player, cfg.Players)
	for i := range players {
		players[i] = Player{ID: fmt.Sprintf("player-%d", i), Name: fmt.Sprintf("Player %d", i)}
	}
	if err := client.SetPlayers(ctx, event, players); err != nil {
		return err
	}

	scanIDs := make([]string, cfg.Scans)
	for i := range scanIDs {
		id, err := client.PostScan(ctx, event, []byte(fmt.Sprintf("payload-%d", i)))
		if err != nil {
			return err
		}
		scanIDs[i] = id
	}
	log.Info(ctx, "data loaded",
		logger.Int("players", cfg.Players),
		logger.Int("scans", cfg.Scans),
	)

	// Assign round-robin, then move every scan to the next player so each
	// transition exercises the clear-old/set-new path, then clear the last.
	for i, id := range scanIDs {
		if err := client.MarkScan(ctx, event, id, players[i%len(players)].ID); err != nil {
			return err
		}
	}
	for i, id := range scanIDs {
		if err := client.MarkScan(ctx, event, id, players[(i+1)%len(players)].ID); err != nil {
			return err
		}
	}
	if len(scanIDs) > 0 {
		if err := client.MarkScan(ctx, event, scanIDs[len(scanIDs)-1], ""); err != nil {
			return err
		}
	}

	if err := verify(ctx, client, event); err != nil {
		return err
	}
	log.Info(ctx, "smoke run passed", logger.String("event", event))
	return nil
}

// verify cross-checks the scan and player listings against each other and
// against the server-side audit.
func verify(ctx context.Context, client *Client, event string) error {
	scans, err := client.ListScans(ctx, event)
	if err != nil {
		return err
	}
	players, err := client.ListPlayers(ctx, event)
	if err != nil {
		return err
	}

	byPlayer := make(map[string]string, len(players))
	for _, p := range players {
		byPlayer[p.ID] = p.ScanID
	}
	for _, sc := range scans {
		if sc.PlayerID == "" {
			continue
		}
		if byPlayer[sc.PlayerID] != sc.ID {
			return fmt.Errorf("asymmetric reference: scan %s -> player %s -> scan %q",
				sc.ID, sc.PlayerID, byPlayer[sc.PlayerID])
		}
	}

	violations, err := client.CheckEvent(ctx, event)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return fmt.Errorf("server audit reported %d violations, first: %s", len(violations), violations[0])
	}
	return nil
}
