// Package types provides domain models shared across Doppel components.
//
// Zero-dependency design: types.go and errors.go use only the standard
// library to keep embedding cost minimal. ID utilities in ids.go import uuid
// but are isolated for selective inclusion.
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// SnapshotID represents a UUIDv7 snapshot identifier.
// String alias enables type safety while maintaining JSON string serialization.
// UUIDv7 time-ordering ensures sequential IDs cluster in B-tree indexes.
type SnapshotID string

// Document represents an arbitrary JSON document captured for comparison.
// json.RawMessage wrapper preserves original bytes for checksum stability;
// the comparison engine operates on the decoded structure, never these bytes.
type Document json.RawMessage

// MarshalJSON implements json.Marshaler.
// Delegates to json.RawMessage to preserve original document bytes unchanged.
func (d Document) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	return json.RawMessage(d).MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
// Delegates to json.RawMessage to capture raw bytes without parsing.
func (d *Document) UnmarshalJSON(data []byte) error {
	return (*json.RawMessage)(d).UnmarshalJSON(data)
}

// Snapshot is a stored expectation: a named, checksummed document version.
// Checksum covers Body bytes; a mismatch on read means the row was damaged
// after write and the snapshot must not be trusted as an expectation.
type Snapshot struct {
	ID        SnapshotID
	Name      string
	Format    string
	Checksum  string
	Body      Document
	CreatedAt time.Time
}

// Resource limits enforced before documents enter storage or comparison.
const (
	// MaxDocumentSize limits captured documents to prevent OOM during decode.
	// 4MB allows typical API responses and fixtures; larger artifacts should
	// be split before snapshotting.
	MaxDocumentSize = 4 * 1024 * 1024

	// MaxSnapshotNameLength prevents excessively long names.
	// 128 chars accommodates namespaced names like "billing/invoice-v2.golden".
	MaxSnapshotNameLength = 128
)

// ValidateSnapshotName rejects names that cannot key a snapshot row.
// Names are free-form except for length bounds and surrounding whitespace,
// which survives shell quoting accidents and then never matches on lookup.
func ValidateSnapshotName(name string) error {
	if name == "" {
		return ErrSnapshotNameInvalid
	}
	if len(name) > MaxSnapshotNameLength {
		return fmt.Errorf("%w: %d chars exceeds limit %d", ErrSnapshotNameTooLong, len(name), MaxSnapshotNameLength)
	}
	if name[0] == ' ' || name[len(name)-1] == ' ' {
		return fmt.Errorf("%w: leading or trailing space", ErrSnapshotNameInvalid)
	}
	return nil
}
