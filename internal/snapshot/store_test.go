package snapshot

import (
	"errors"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/doppelgang/doppel/internal/core/db"
	"github.com/doppelgang/doppel/internal/document"
	"github.com/doppelgang/doppel/internal/types"
	"github.com/doppelgang/doppel/pkg/equiv"
)

func newTestStore(t *testing.T) (*Store, *sqlx.DB) {
	t.Helper()

	conn, err := db.Open("sqlite://:memory:")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.MigrateUp(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	queries, err := db.LoadQueries(conn)
	if err != nil {
		t.Fatalf("load queries: %v", err)
	}

	return NewStore(queries), conn
}

func TestStore_SaveAndLatest(t *testing.T) {
	store, _ := newTestStore(t)
	doc := map[string]any{"id": "o1", "total": 10.5}

	saved, err := store.Save("orders/latest", document.FormatJSON, doc)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if saved.ID == "" {
		t.Error("Save returned empty ID")
	}
	if len(saved.Checksum) != 64 {
		t.Errorf("checksum length = %d, want 64 hex chars", len(saved.Checksum))
	}

	got, err := store.Latest("orders/latest")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if got.ID != saved.ID {
		t.Errorf("ID = %s, want %s", got.ID, saved.ID)
	}
	if got.Format != "json" {
		t.Errorf("Format = %s, want json", got.Format)
	}
	if !got.CreatedAt.Equal(saved.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, saved.CreatedAt)
	}

	back, err := document.Decode([]byte(got.Body), document.FormatJSON)
	if err != nil {
		t.Fatalf("stored body does not decode: %v", err)
	}
	if res := equiv.Compare(equiv.Default().MustBuild(), back, doc); !res.OK() {
		t.Errorf("round trip differs:\n%s", res)
	}
}

func TestStore_LatestPicksNewestVersion(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.Save("rates", document.FormatJSON, map[string]any{"eur": 1.0}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save("rates", document.FormatJSON, map[string]any{"eur": 1.1}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Latest("rates")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	back, err := document.Decode([]byte(got.Body), document.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	res := equiv.Compare(equiv.Default().MustBuild(), back, map[string]any{"eur": 1.1})
	if !res.OK() {
		t.Errorf("Latest returned an older version:\n%s", res)
	}

	n, err := store.Versions("rates")
	if err != nil {
		t.Fatalf("Versions failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Versions = %d, want 2", n)
	}
}

func TestStore_LatestMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Latest("never-saved")
	if !errors.Is(err, types.ErrSnapshotNotFound) {
		t.Errorf("Latest error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestStore_NameValidation(t *testing.T) {
	store, _ := newTestStore(t)
	doc := map[string]any{"k": 1}

	if _, err := store.Save("", document.FormatJSON, doc); !errors.Is(err, types.ErrSnapshotNameInvalid) {
		t.Errorf("Save(\"\") error = %v, want ErrSnapshotNameInvalid", err)
	}

	long := strings.Repeat("n", types.MaxSnapshotNameLength+1)
	if _, err := store.Save(long, document.FormatJSON, doc); !errors.Is(err, types.ErrSnapshotNameTooLong) {
		t.Errorf("Save(long) error = %v, want ErrSnapshotNameTooLong", err)
	}

	if _, err := store.Latest(" padded "); !errors.Is(err, types.ErrSnapshotNameInvalid) {
		t.Errorf("Latest(padded) error = %v, want ErrSnapshotNameInvalid", err)
	}
}

func TestStore_CorruptionDetected(t *testing.T) {
	store, conn := newTestStore(t)

	if _, err := store.Save("golden", document.FormatJSON, map[string]any{"ok": true}); err != nil {
		t.Fatal(err)
	}

	// Damage the stored body without touching its checksum.
	if _, err := conn.Exec("UPDATE snapshots SET body = ?", `{"tampered": true}`); err != nil {
		t.Fatalf("tamper update failed: %v", err)
	}

	_, err := store.Latest("golden")
	if !errors.Is(err, types.ErrSnapshotCorrupt) {
		t.Errorf("Latest error = %v, want ErrSnapshotCorrupt", err)
	}
}

func TestStore_List(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.Save("beta", document.FormatYAML, map[string]any{"v": 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save("alpha", document.FormatJSON, map[string]any{"v": 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Save("alpha", document.FormatJSON, map[string]any{"v": 2}); err != nil {
		t.Fatal(err)
	}

	entries, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List returned %d entries, want 2", len(entries))
	}
	if entries[0].Name != "alpha" || entries[0].Versions != 2 {
		t.Errorf("entries[0] = %+v, want alpha with 2 versions", entries[0])
	}
	if entries[1].Name != "beta" || entries[1].Versions != 1 {
		t.Errorf("entries[1] = %+v, want beta with 1 version", entries[1])
	}
	if entries[0].LatestAt.IsZero() {
		t.Error("entries[0].LatestAt is zero")
	}
}

func TestStore_Check(t *testing.T) {
	store, _ := newTestStore(t)
	plan := equiv.Default().MustBuild()

	stored := map[string]any{"id": "o1", "total": 10.5, "items": []any{"a", "b"}}
	if _, err := store.Save("orders/o1", document.FormatJSON, stored); err != nil {
		t.Fatal(err)
	}

	t.Run("matching subject", func(t *testing.T) {
		res, err := store.Check("orders/o1", stored, plan)
		if err != nil {
			t.Fatalf("Check failed: %v", err)
		}
		if !res.OK() {
			t.Errorf("Check differences:\n%s", res)
		}
	})

	t.Run("integer subject against stored float", func(t *testing.T) {
		if _, err := store.Save("counts", document.FormatJSON, map[string]any{"count": 3}); err != nil {
			t.Fatal(err)
		}
		// The stored body decodes count back as float64(3).
		res, err := store.Check("counts", map[string]any{"count": 3}, plan)
		if err != nil {
			t.Fatalf("Check failed: %v", err)
		}
		if !res.OK() {
			t.Errorf("Check differences:\n%s", res)
		}
	})

	t.Run("differing subject", func(t *testing.T) {
		res, err := store.Check("orders/o1", map[string]any{"id": "o1", "total": 99.9, "items": []any{"a", "b"}}, plan)
		if err != nil {
			t.Fatalf("Check failed: %v", err)
		}
		if res.OK() {
			t.Fatal("Check found no differences, want total mismatch")
		}
		if res.Failures[0].Path.String() != "[total]" {
			t.Errorf("failure path = %s, want [total]", res.Failures[0].Path)
		}
	})

	t.Run("missing snapshot", func(t *testing.T) {
		_, err := store.Check("orders/unknown", stored, plan)
		if !errors.Is(err, types.ErrSnapshotNotFound) {
			t.Errorf("Check error = %v, want ErrSnapshotNotFound", err)
		}
	})
}
