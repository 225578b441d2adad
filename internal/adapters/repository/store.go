package repository

import (
	"fmt"
	"os"
	"strings"

	"github.com/okian/scanmark/internal/domain/model"
	"github.com/okian/scanmark/internal/domain/record"
	"github.com/okian/scanmark/pkg/metrics"
)

// Default file and directory permissions.
const (
	defaultDirPerm  = 0o700
	defaultFilePerm = 0o600
)

// Store reads and writes serialized records beneath a Resolver's root.
//
// Writes are plain whole-file overwrites: no staging rename, no fsync. A
// write interrupted mid-way can leave a truncated record; callers get
// consistency from the locking protocol, not from the store.
type Store struct {
	paths    *Resolver
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// NewStore creates a Store over the given Resolver with configuration options.
func NewStore(paths *Resolver, opts ...StoreOption) *Store {
	s := &Store{
		paths:    paths,
		dirPerm:  defaultDirPerm,
		filePerm: defaultFilePerm,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Paths returns the Resolver the store operates on.
func (s *Store) Paths() *Resolver { return s.paths }

// EnsureRoot creates the root directory if it does not exist yet.
func (s *Store) EnsureRoot() error {
	if err := os.MkdirAll(s.paths.Root(), s.dirPerm); err != nil {
		return fmt.Errorf("create root %s: %w", s.paths.Root(), err)
	}
	return nil
}

// EventDirExists reports whether the event's directory is present.
func (s *Store) EventDirExists(name string) bool {
	info, err := os.Stat(s.paths.EventDir(name))
	return err == nil && info.IsDir()
}

// CreateEventDir creates the event's directory. The raw error is returned
// so callers can distinguish fs.ErrExist.
func (s *Store) CreateEventDir(name string) error {
	return os.Mkdir(s.paths.EventDir(name), s.dirPerm)
}

// RemoveEventDir removes the event's directory and everything it owns,
// records and lock files included.
func (s *Store) RemoveEventDir(name string) error {
	if err := os.RemoveAll(s.paths.EventDir(name)); err != nil {
		return fmt.Errorf("remove event %s: %w", name, err)
	}
	return nil
}

// List returns the ids of all items of the given kind. With an empty event
// it lists event names under the root; otherwise it lists inside the
// event's directory. Lock files never collide with data prefixes.
func (s *Store) List(kind Kind, event string) ([]string, error) {
	dir := s.paths.Root()
	if event != "" {
		dir = s.paths.EventDir(event)
	} else if kind != KindEvent {
		// Resolver would reject this too; fail loudly here for listings.
		panic(fmt.Sprintf("repository: listing %s requires an event scope", kind))
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s in %s: %w", kind, dir, err)
	}
	var ids []string
	prefix := string(kind)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), prefix) {
			ids = append(ids, strings.TrimPrefix(e.Name(), prefix))
		}
	}
	return ids, nil
}

// ReadPlayer reads and decodes one player record.
func (s *Store) ReadPlayer(event, id string) (model.Player, error) {
	data, err := os.ReadFile(s.paths.DataPath(KindPlayer, id, event))
	if err != nil {
		return model.Player{}, fmt.Errorf("read player %s: %w", id, err)
	}
	metrics.RecordRecordRead(KindPlayer.String())
	p, err := record.DecodePlayer(data)
	if err != nil {
		return model.Player{}, fmt.Errorf("player %s: %w", id, err)
	}
	return p, nil
}

// WritePlayer encodes and writes one player record.
func (s *Store) WritePlayer(event string, p model.Player) error {
	data, err := record.EncodePlayer(p)
	if err != nil {
		return fmt.Errorf("player %s: %w", p.ID, err)
	}
	if err := os.WriteFile(s.paths.DataPath(KindPlayer, p.ID, event), data, s.filePerm); err != nil {
		return fmt.Errorf("write player %s: %w", p.ID, err)
	}
	metrics.RecordRecordWrite(KindPlayer.String())
	return nil
}

// DeletePlayer removes one player record.
func (s *Store) DeletePlayer(event, id string) error {
	if err := os.Remove(s.paths.DataPath(KindPlayer, id, event)); err != nil {
		return fmt.Errorf("delete player %s: %w", id, err)
	}
	return nil
}

// PlayerExists reports whether a player record is present.
func (s *Store) PlayerExists(event, id string) bool {
	_, err := os.Stat(s.paths.DataPath(KindPlayer, id, event))
	return err == nil
}

// ReadScan reads and decodes one scan record. The payload is not attached.
func (s *Store) ReadScan(event, id string) (model.Scan, error) {
	data, err := os.ReadFile(s.paths.DataPath(KindScan, id, event))
	if err != nil {
		return model.Scan{}, fmt.Errorf("read scan %s: %w", id, err)
	}
	metrics.RecordRecordRead(KindScan.String())
	sc, err := record.DecodeScan(data)
	if err != nil {
		return model.Scan{}, fmt.Errorf("scan %s: %w", id, err)
	}
	return sc, nil
}

// WriteScan encodes and writes one scan record. Any payload on disk is
// untouched.
func (s *Store) WriteScan(event string, sc model.Scan) error {
	data, err := record.EncodeScan(sc)
	if err != nil {
		return fmt.Errorf("scan %s: %w", sc.ID, err)
	}
	if err := os.WriteFile(s.paths.DataPath(KindScan, sc.ID, event), data, s.filePerm); err != nil {
		return fmt.Errorf("write scan %s: %w", sc.ID, err)
	}
	metrics.RecordRecordWrite(KindScan.String())
	return nil
}

// ScanExists reports whether a scan record is present.
func (s *Store) ScanExists(event, id string) bool {
	_, err := os.Stat(s.paths.DataPath(KindScan, id, event))
	return err == nil
}

// ReadPayload reads a scan's raw payload blob.
func (s *Store) ReadPayload(event, id string) ([]byte, error) {
	data, err := os.ReadFile(s.paths.DataPath(KindPayload, id, event))
	if err != nil {
		return nil, fmt.Errorf("read payload %s: %w", id, err)
	}
	metrics.RecordRecordRead(KindPayload.String())
	return data, nil
}

// WritePayload writes a scan's raw payload blob.
func (s *Store) WritePayload(event, id string, data []byte) error {
	if err := os.WriteFile(s.paths.DataPath(KindPayload, id, event), data, s.filePerm); err != nil {
		return fmt.Errorf("write payload %s: %w", id, err)
	}
	metrics.RecordRecordWrite(KindPayload.String())
	return nil
}

// PayloadExists reports whether a scan's payload blob is present.
func (s *Store) PayloadExists(event, id string) bool {
	_, err := os.Stat(s.paths.DataPath(KindPayload, id, event))
	return err == nil
}
