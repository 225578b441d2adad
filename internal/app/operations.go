package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/google/uuid"

	"github.com/okian/scanmark/internal/adapters/fslock"
	"github.com/okian/scanmark/internal/adapters/repository"
	"github.com/okian/scanmark/internal/domain/model"
	"github.com/okian/scanmark/pkg/logger"
	"github.com/okian/scanmark/pkg/metrics"
)

// ListEvents enumerates all events in directory order.
func (s *Service) ListEvents(ctx context.Context) ([]model.Event, error) {
	rel, err := s.lockMaster(ctx, repository.KindEvent, "", fslock.Shared)
	if err != nil {
		return nil, err
	}
	defer rel()

	names, err := s.store.List(repository.KindEvent, "")
	if err != nil {
		return nil, err
	}
	events := []model.Event{}
	for _, name := range names {
		if s.store.EventDirExists(name) {
			events = append(events, model.Event{Name: name})
		}
	}
	return events, nil
}

// CreateEvent creates a new, empty event.
func (s *Service) CreateEvent(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("event name required")
	}
	relM, err := s.lockMaster(ctx, repository.KindEvent, "", fslock.Exclusive)
	if err != nil {
		return err
	}
	defer relM()
	relI, err := s.lockItem(ctx, repository.KindEvent, name, "", fslock.Exclusive)
	if err != nil {
		return err
	}
	defer relI()

	if err := s.store.CreateEventDir(name); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("event %s: %w", name, ErrAlreadyExists)
		}
		return fmt.Errorf("create event %s: %w", name, err)
	}
	s.logger.Info(ctx, "event created", logger.String("event", name))
	return nil
}

// DeleteEvent removes an event together with every player, scan, payload
// and lock file it owns.
func (s *Service) DeleteEvent(ctx context.Context, name string) error {
	relM, err := s.lockMaster(ctx, repository.KindEvent, "", fslock.Exclusive)
	if err != nil {
		return err
	}
	defer relM()
	relI, err := s.lockItem(ctx, repository.KindEvent, name, "", fslock.Exclusive)
	if err != nil {
		return err
	}
	defer relI()

	if !s.store.EventDirExists(name) {
		return fmt.Errorf("event %s: %w", name, ErrNotFound)
	}
	if err := s.store.RemoveEventDir(name); err != nil {
		return err
	}
	s.logger.Info(ctx, "event deleted", logger.String("event", name))
	return nil
}

// ListPlayers returns all player records of an event in directory order.
func (s *Service) ListPlayers(ctx context.Context, event string) ([]model.Player, error) {
	relE, err := s.ensureEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	defer relE()
	return s.readPlayers(ctx, event)
}

// readPlayers reads every player record under the players master. The
// caller must hold the shared event lock.
func (s *Service) readPlayers(ctx context.Context, event string) ([]model.Player, error) {
	relM, err := s.lockMaster(ctx, repository.KindPlayer, event, fslock.Shared)
	if err != nil {
		return nil, err
	}
	defer relM()

	ids, err := s.store.List(repository.KindPlayer, event)
	if err != nil {
		return nil, err
	}
	players := []model.Player{}
	for _, id := range ids {
		relI, err := s.lockItem(ctx, repository.KindPlayer, id, event, fslock.Shared)
		if err != nil {
			return nil, err
		}
		p, err := s.store.ReadPlayer(event, id)
		relI()
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

// SetPlayers replaces the entire player set of an event. Existing records
// are deleted first, then every supplied player is written; duplicate ids in
// the input collapse to the last occurrence.
func (s *Service) SetPlayers(ctx context.Context, event string, players []model.Player) error {
	for _, p := range players {
		if p.ID == "" {
			return fmt.Errorf("player id required")
		}
	}

	relE, err := s.ensureEvent(ctx, event)
	if err != nil {
		return err
	}
	defer relE()
	relM, err := s.lockMaster(ctx, repository.KindPlayer, event, fslock.Exclusive)
	if err != nil {
		return err
	}
	defer relM()

	ids, err := s.store.List(repository.KindPlayer, event)
	if err != nil {
		return err
	}
	for _, id := range ids {
		relI, err := s.lockItem(ctx, repository.KindPlayer, id, event, fslock.Exclusive)
		if err != nil {
			return err
		}
		err = s.store.DeletePlayer(event, id)
		relI()
		if err != nil {
			return err
		}
	}
	for _, p := range players {
		relI, err := s.lockItem(ctx, repository.KindPlayer, p.ID, event, fslock.Exclusive)
		if err != nil {
			return err
		}
		err = s.store.WritePlayer(event, p)
		relI()
		if err != nil {
			return err
		}
	}
	s.logger.Info(ctx, "players replaced",
		logger.String("event", event),
		logger.Int("count", len(players)),
	)
	return nil
}

// ListScans returns all scan records of an event in directory order,
// payloads omitted. With unmarkedOnly set, scans owned by a player are
// filtered out.
func (s *Service) ListScans(ctx context.Context, event string, unmarkedOnly bool) ([]model.Scan, error) {
	relE, err := s.ensureEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	defer relE()

	scans, err := s.readScans(ctx, event)
	if err != nil {
		return nil, err
	}
	if !unmarkedOnly {
		return scans, nil
	}
	unmarked := []model.Scan{}
	for _, sc := range scans {
		if !sc.Marked() {
			unmarked = append(unmarked, sc)
		}
	}
	return unmarked, nil
}

// readScans reads every scan record under the scans master. The caller must
// hold the shared event lock.
func (s *Service) readScans(ctx context.Context, event string) ([]model.Scan, error) {
	relM, err := s.lockMaster(ctx, repository.KindScan, event, fslock.Shared)
	if err != nil {
		return nil, err
	}
	defer relM()

	ids, err := s.store.List(repository.KindScan, event)
	if err != nil {
		return nil, err
	}
	scans := []model.Scan{}
	for _, id := range ids {
		relI, err := s.lockItem(ctx, repository.KindScan, id, event, fslock.Shared)
		if err != nil {
			return nil, err
		}
		sc, err := s.store.ReadScan(event, id)
		relI()
		if err != nil {
			return nil, err
		}
		scans = append(scans, sc)
	}
	return scans, nil
}

// GetScan returns one scan record with its payload attached when the
// payload blob exists.
func (s *Service) GetScan(ctx context.Context, event, id string) (model.Scan, error) {
	relE, err := s.ensureEvent(ctx, event)
	if err != nil {
		return model.Scan{}, err
	}
	defer relE()
	relM, err := s.lockMaster(ctx, repository.KindScan, event, fslock.Shared)
	if err != nil {
		return model.Scan{}, err
	}
	defer relM()

	if !s.store.ScanExists(event, id) {
		return model.Scan{}, fmt.Errorf("scan %s: %w", id, ErrNotFound)
	}
	relI, err := s.lockItem(ctx, repository.KindScan, id, event, fslock.Shared)
	if err != nil {
		return model.Scan{}, err
	}
	defer relI()

	sc, err := s.store.ReadScan(event, id)
	if err != nil {
		return model.Scan{}, err
	}
	if s.store.PayloadExists(event, id) {
		data, err := s.store.ReadPayload(event, id)
		if err != nil {
			return model.Scan{}, err
		}
		sc.Data = data
	}
	return sc, nil
}

// PostScan stores a new, unmarked scan with its payload and returns the
// generated id.
func (s *Service) PostScan(ctx context.Context, event string, data []byte) (string, error) {
	relE, err := s.ensureEvent(ctx, event)
	if err != nil {
		return "", err
	}
	defer relE()
	relM, err := s.lockMaster(ctx, repository.KindScan, event, fslock.Exclusive)
	if err != nil {
		return "", err
	}
	defer relM()

	id := s.newScanID(event)
	relI, err := s.lockItem(ctx, repository.KindScan, id, event, fslock.Exclusive)
	if err != nil {
		return "", err
	}
	defer relI()

	if err := s.store.WriteScan(event, model.Scan{ID: id}); err != nil {
		return "", err
	}
	if err := s.store.WritePayload(event, id, data); err != nil {
		return "", err
	}
	metrics.RecordScanPosted()
	s.logger.Debug(ctx, "scan posted",
		logger.String("event", event),
		logger.String("scan", id),
		logger.Int("bytes", len(data)),
	)
	return id, nil
}

// newScanID draws fixed-width random tokens until one names an unused scan
// record path. The loop is unbounded; a collision among random UUIDs is
// vanishingly rare, so it terminates on the first draw in practice.
func (s *Service) newScanID(event string) string {
	for {
		id := uuid.NewString()
		if !s.store.ScanExists(event, id) {
			return id
		}
	}
}

// MarkScan assigns a scan to a player, or clears the assignment when
// playerID is empty. The scan record and the affected player records are
// updated as one logical transition:
//
//	scans master (shared) -> scan item (exclusive)
//	-> new-player item (exclusive, when assigning)
//	-> old-player item (exclusive, when a prior owner exists)
//
// If the requested owner already matches, nothing is written. There is no
// rollback: a failure after the scan write but before the player writes
// leaves a symmetry violation, which CheckEvent reports.
func (s *Service) MarkScan(ctx context.Context, event, scanID, playerID string) error {
	relE, err := s.ensureEvent(ctx, event)
	if err != nil {
		return err
	}
	defer relE()
	relM, err := s.lockMaster(ctx, repository.KindScan, event, fslock.Shared)
	if err != nil {
		return err
	}
	defer relM()

	if !s.store.ScanExists(event, scanID) {
		return fmt.Errorf("scan %s: %w", scanID, ErrNotFound)
	}
	relS, err := s.lockItem(ctx, repository.KindScan, scanID, event, fslock.Exclusive)
	if err != nil {
		return err
	}
	defer relS()

	if playerID != "" {
		relNew, err := s.lockItem(ctx, repository.KindPlayer, playerID, event, fslock.Exclusive)
		if err != nil {
			return err
		}
		defer relNew()
		if !s.store.PlayerExists(event, playerID) {
			return fmt.Errorf("player %s: %w", playerID, ErrNotFound)
		}
	}

	current, err := s.store.ReadScan(event, scanID)
	if err != nil {
		return err
	}
	if current.PlayerID == playerID {
		return nil
	}

	if err := s.store.WriteScan(event, model.Scan{ID: scanID, PlayerID: playerID}); err != nil {
		return err
	}

	if current.PlayerID != "" {
		relOld, err := s.lockItem(ctx, repository.KindPlayer, current.PlayerID, event, fslock.Exclusive)
		if err != nil {
			return err
		}
		defer relOld()
		if err := s.setPlayerScan(event, current.PlayerID, ""); err != nil {
			return err
		}
	}
	if playerID != "" {
		if err := s.setPlayerScan(event, playerID, scanID); err != nil {
			return err
		}
	}

	metrics.RecordMarkApplied()
	s.logger.Debug(ctx, "scan marked",
		logger.String("event", event),
		logger.String("scan", scanID),
		logger.String("player", playerID),
		logger.String("previous", current.PlayerID),
	)
	return nil
}

// setPlayerScan rewrites one player record with a new scan reference. The
// caller must hold the player's exclusive item lock.
func (s *Service) setPlayerScan(event, playerID, scanID string) error {
	p, err := s.store.ReadPlayer(event, playerID)
	if err != nil {
		return err
	}
	p.ScanID = scanID
	return s.store.WritePlayer(event, p)
}

// CheckEvent audits the scan<->player back-references of an event and
// returns a description of every violation found. It mutates nothing;
// repairing is left to the operator.
func (s *Service) CheckEvent(ctx context.Context, event string) ([]string, error) {
	relE, err := s.ensureEvent(ctx, event)
	if err != nil {
		return nil, err
	}
	defer relE()

	scans, err := s.readScans(ctx, event)
	if err != nil {
		return nil, err
	}
	players, err := s.readPlayers(ctx, event)
	if err != nil {
		return nil, err
	}

	scanOwner := make(map[string]string, len(scans))
	for _, sc := range scans {
		scanOwner[sc.ID] = sc.PlayerID
	}
	playerScan := make(map[string]string, len(players))
	for _, p := range players {
		playerScan[p.ID] = p.ScanID
	}

	violations := []string{}
	for _, sc := range scans {
		if sc.PlayerID == "" {
			continue
		}
		held, ok := playerScan[sc.PlayerID]
		switch {
		case !ok:
			violations = append(violations, fmt.Sprintf("scan %s owned by missing player %s", sc.ID, sc.PlayerID))
		case held != sc.ID:
			violations = append(violations, fmt.Sprintf("scan %s owned by player %s, but player holds %q", sc.ID, sc.PlayerID, held))
		}
	}
	for _, p := range players {
		if p.ScanID == "" {
			continue
		}
		owner, ok := scanOwner[p.ScanID]
		switch {
		case !ok:
			violations = append(violations, fmt.Sprintf("player %s holds missing scan %s", p.ID, p.ScanID))
		case owner != p.ID:
			violations = append(violations, fmt.Sprintf("player %s holds scan %s, but scan is owned by %q", p.ID, p.ScanID, owner))
		}
	}
	return violations, nil
}
