// Package record implements the versioned on-disk encoding of player and
// scan records.
//
// Records are CBOR maps with named fields wrapped in a small envelope
// carrying a format version, so field order never matters and a format
// change is detected instead of silently misread. Scan payload blobs are
// not records; they are stored as raw bytes elsewhere.
package record

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/okian/scanmark/internal/domain/model"
)

// Version is the current record format version.
const Version = 1

// envelope wraps every record body with its format version.
type envelope struct {
	Version int             `cbor:"v"`
	Body    cbor.RawMessage `cbor:"b"`
}

type playerBody struct {
	ID     string `cbor:"id"`
	Name   string `cbor:"name"`
	ScanID string `cbor:"scan_id,omitempty"`
}

type scanBody struct {
	ID       string `cbor:"id"`
	PlayerID string `cbor:"player_id,omitempty"`
}

func encode(body interface{}) ([]byte, error) {
	b, err := cbor.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode record body: %w", err)
	}
	out, err := cbor.Marshal(envelope{Version: Version, Body: b})
	if err != nil {
		return nil, fmt.Errorf("encode record envelope: %w", err)
	}
	return out, nil
}

func decode(data []byte, body interface{}) error {
	var env envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %s", ErrCorrupt, err)
	}
	if env.Version != Version {
		return fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, env.Version, Version)
	}
	if err := cbor.Unmarshal(env.Body, body); err != nil {
		return fmt.Errorf("%w: %s", ErrCorrupt, err)
	}
	return nil
}

// EncodePlayer serializes a player record.
func EncodePlayer(p model.Player) ([]byte, error) {
	return encode(playerBody{ID: p.ID, Name: p.Name, ScanID: p.ScanID})
}

// DecodePlayer deserializes a player record.
func DecodePlayer(data []byte) (model.Player, error) {
	var body playerBody
	if err := decode(data, &body); err != nil {
		return model.Player{}, err
	}
	return model.Player{ID: body.ID, Name: body.Name, ScanID: body.ScanID}, nil
}

// EncodeScan serializes a scan record. The payload is never part of the
// record; it lives in its own blob file.
func EncodeScan(s model.Scan) ([]byte, error) {
	return encode(scanBody{ID: s.ID, PlayerID: s.PlayerID})
}

// DecodeScan deserializes a scan record.
func DecodeScan(data []byte) (model.Scan, error) {
	var body scanBody
	if err := decode(data, &body); err != nil {
		return model.Scan{}, err
	}
	return model.Scan{ID: body.ID, PlayerID: body.PlayerID}, nil
}
