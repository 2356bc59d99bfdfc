package types

import "errors"

// Sentinel errors for Doppel operations.
var (
	// ErrSnapshotNotFound indicates no stored snapshot carries the requested name.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrSnapshotCorrupt indicates a stored snapshot failed checksum verification.
	ErrSnapshotCorrupt = errors.New("snapshot body does not match its checksum")

	// ErrSnapshotNameInvalid indicates a snapshot name that cannot key a row.
	ErrSnapshotNameInvalid = errors.New("invalid snapshot name")

	// ErrSnapshotNameTooLong indicates a name exceeding MaxSnapshotNameLength.
	ErrSnapshotNameTooLong = errors.New("snapshot name too long")

	// ErrDocumentTooLarge indicates a document exceeding MaxDocumentSize.
	ErrDocumentTooLarge = errors.New("document exceeds maximum size")

	// ErrDocumentEmpty indicates an empty input where a document was required.
	ErrDocumentEmpty = errors.New("document is empty")

	// ErrUnsupportedFormat indicates a document format Doppel cannot decode.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)
