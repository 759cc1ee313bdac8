package save

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// ErrSlotNotFound is returned by Get and Delete for an unknown slot name.
var ErrSlotNotFound = errors.New("save slot not found")

// Slot describes one stored save without its blob.
type Slot struct {
	Name      string
	Facts     int
	UpdatedAt time.Time
}

// Slots stores named save blobs in a SQLite database.
type Slots struct {
	db *sql.DB
}

// OpenSlots opens or creates the slot database at path.
func OpenSlots(path string) (*Slots, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Slots{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

//go:embed migrations/*.sql
var migrations embed.FS

// migrate brings the slot schema up to date. Each call builds its own
// provider, so concurrent opens share no migration state.
func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("slot migrations: %w", err)
	}
	p, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrate slots: %w", err)
	}
	return nil
}

// Put stores blob under name, replacing any existing slot of that name.
// The blob must decode as save data.
func (s *Slots) Put(ctx context.Context, name string, blob []byte) error {
	if name == "" {
		return fmt.Errorf("empty slot name")
	}
	sd, err := Load(blob)
	if err != nil {
		return fmt.Errorf("slot %s: %w", name, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO slots (name, facts, blob, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET facts = excluded.facts, blob = excluded.blob, updated_at = excluded.updated_at`,
		name, len(sd.Facts), blob, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put slot %s: %w", name, err)
	}
	return nil
}

// Get returns the blob stored under name.
func (s *Slots) Get(ctx context.Context, name string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM slots WHERE name = ?`, name).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSlotNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get slot %s: %w", name, err)
	}
	return blob, nil
}

// List returns every slot, most recently updated first.
func (s *Slots) List(ctx context.Context) ([]Slot, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, facts, updated_at FROM slots ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var out []Slot
	for rows.Next() {
		var (
			sl Slot
			ms int64
		)
		if err := rows.Scan(&sl.Name, &sl.Facts, &ms); err != nil {
			return nil, fmt.Errorf("list slots: %w", err)
		}
		sl.UpdatedAt = time.UnixMilli(ms).UTC()
		out = append(out, sl)
	}
	return out, rows.Err()
}

// Delete removes the slot name.
func (s *Slots) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM slots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete slot %s: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete slot %s: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSlotNotFound, name)
	}
	return nil
}

// Close closes the database.
func (s *Slots) Close() error {
	return s.db.Close()
}
