// Package snapshot persists named document expectations and checks live
// subjects against them.
//
// A snapshot is an append-only version of a named document. Bodies are
// stored in canonical JSON with a SHA256 checksum computed at write time;
// reads verify the checksum before the body is trusted as an expectation.
package snapshot

import (
	"crypto/sha256"
	"database/sql"
	"fmt"
	"time"

	"github.com/doppelgang/doppel/internal/core/db"
	"github.com/doppelgang/doppel/internal/document"
	"github.com/doppelgang/doppel/internal/types"
	"github.com/doppelgang/doppel/pkg/equiv"
)

// Store reads and writes snapshots through named queries.
type Store struct {
	queries *db.Queries
}

// NewStore wraps a loaded query set.
func NewStore(queries *db.Queries) *Store {
	return &Store{queries: queries}
}

// ListEntry summarizes one snapshot name: how many versions exist and when
// the newest was captured.
type ListEntry struct {
	Name     string
	Versions int
	LatestAt time.Time
}

// Save captures doc as the newest version of name. The body is canonical
// JSON whatever the source encoding; format records the encoding the
// document arrived in.
func (s *Store) Save(name string, format document.Format, doc any) (*types.Snapshot, error) {
	if err := types.ValidateSnapshotName(name); err != nil {
		return nil, err
	}

	body, err := document.Canonical(doc)
	if err != nil {
		return nil, err
	}
	if len(body) > types.MaxDocumentSize {
		return nil, fmt.Errorf("%w: canonical form is %d bytes", types.ErrDocumentTooLarge, len(body))
	}

	snap := &types.Snapshot{
		ID:        types.NewSnapshotID(),
		Name:      name,
		Format:    string(format),
		Checksum:  bodyChecksum(body),
		Body:      body,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	_, err = s.queries.Exec("insert-snapshot",
		string(snap.ID), snap.Name, snap.Format, snap.Checksum,
		string(snap.Body), snap.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return snap, nil
}

// Latest returns the newest version of name. UUIDv7 ordering makes the
// highest snapshot_id the most recent insert, so no timestamp tiebreak is
// needed.
func (s *Store) Latest(name string) (*types.Snapshot, error) {
	if err := types.ValidateSnapshotName(name); err != nil {
		return nil, err
	}

	var row struct {
		SnapshotID string `db:"snapshot_id"`
		Name       string `db:"name"`
		Format     string `db:"format"`
		Checksum   string `db:"checksum"`
		Body       string `db:"body"`
		CreatedAt  string `db:"created_at"`
	}

	err := s.queries.Get("latest-snapshot", &row, name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", types.ErrSnapshotNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	body := []byte(row.Body)
	if bodyChecksum(body) != row.Checksum {
		return nil, fmt.Errorf("%w: %s (version %s)", types.ErrSnapshotCorrupt, row.Name, row.SnapshotID)
	}

	createdAt, err := time.Parse(time.RFC3339, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at on snapshot %s: %w", row.SnapshotID, err)
	}

	return &types.Snapshot{
		ID:        types.SnapshotID(row.SnapshotID),
		Name:      row.Name,
		Format:    row.Format,
		Checksum:  row.Checksum,
		Body:      types.Document(body),
		CreatedAt: createdAt,
	}, nil
}

// List summarizes every snapshot name in ascending name order.
func (s *Store) List() ([]ListEntry, error) {
	var rows []struct {
		Name     string `db:"name"`
		Versions int    `db:"versions"`
		LatestAt string `db:"latest_at"`
	}

	if err := s.queries.Select("list-snapshots", &rows); err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	entries := make([]ListEntry, 0, len(rows))
	for _, row := range rows {
		latest, err := time.Parse(time.RFC3339, row.LatestAt)
		if err != nil {
			return nil, fmt.Errorf("invalid created_at under snapshot %s: %w", row.Name, err)
		}
		entries = append(entries, ListEntry{
			Name:     row.Name,
			Versions: row.Versions,
			LatestAt: latest,
		})
	}

	return entries, nil
}

// Versions reports how many versions of name exist. Zero with no error
// means the name was never snapshotted.
func (s *Store) Versions(name string) (int, error) {
	if err := types.ValidateSnapshotName(name); err != nil {
		return 0, err
	}
	var n int
	if err := s.queries.Get("count-snapshots", &n, name); err != nil {
		return 0, fmt.Errorf("database error: %w", err)
	}
	return n, nil
}

// Check compares subject against the latest stored version of name under
// plan. The stored body decodes as JSON; the engine reconciles its numeric
// shapes against whatever the subject carries.
func (s *Store) Check(name string, subject any, plan *equiv.Plan) (equiv.Result, error) {
	snap, err := s.Latest(name)
	if err != nil {
		return equiv.Result{}, err
	}

	expectation, err := document.Decode([]byte(snap.Body), document.FormatJSON)
	if err != nil {
		return equiv.Result{}, fmt.Errorf("stored snapshot %s does not decode: %w", snap.ID, err)
	}

	return equiv.Compare(plan, subject, expectation), nil
}

// bodyChecksum is the hex SHA256 of the canonical body bytes.
func bodyChecksum(body []byte) string {
	hash := sha256.Sum256(body)
	return fmt.Sprintf("%x", hash)
}
