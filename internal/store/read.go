package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

var (
	// ErrNotFound is returned when no revision matches.
	ErrNotFound = errors.New("revision not found")

	// ErrEmptyName is returned when saving a machine without a name.
	ErrEmptyName = errors.New("machine name must not be empty")
)

// Revision is one stored version of a machine document.
type Revision struct {
	Seq         int64           `json:"seq"`
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Kind        ir.Kind         `json:"kind"`
	ContentHash string          `json:"content_hash"`
	Body        json.RawMessage `json:"body"`
	CreatedAt   time.Time       `json:"created_at"`
}

const selectRevision = `
	SELECT seq, id, name, kind, content_hash, body, created_at
	FROM revisions`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRevision(row rowScanner) (Revision, error) {
	var (
		rev     Revision
		kind    string
		body    string
		created int64
	)
	if err := row.Scan(&rev.Seq, &rev.ID, &rev.Name, &kind, &rev.ContentHash, &body, &created); err != nil {
		return Revision{}, err
	}
	rev.Kind = ir.Kind(kind)
	rev.Body = json.RawMessage(body)
	rev.CreatedAt = time.Unix(created, 0).UTC()
	return rev, nil
}

func (s *Store) queryOne(ctx context.Context, op, subject, where string, args ...any) (Revision, error) {
	rev, err := scanRevision(s.db.QueryRowContext(ctx, selectRevision+where, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Revision{}, fmt.Errorf("%s %q: %w", op, subject, ErrNotFound)
	}
	if err != nil {
		return Revision{}, fmt.Errorf("%s %q: %w", op, subject, err)
	}
	return rev, nil
}

// Latest returns the newest revision of name.
func (s *Store) Latest(ctx context.Context, name string) (Revision, error) {
	return s.queryOne(ctx, "latest", name, `
		WHERE name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, name)
}

// Revision returns the revision with the given ID.
func (s *Store) Revision(ctx context.Context, id string) (Revision, error) {
	return s.queryOne(ctx, "revision", id, `
		WHERE id = ?
	`, id)
}

// History returns every revision of name, oldest first.
//
// Returns an empty slice (not nil) if the name was never saved.
func (s *Store) History(ctx context.Context, name string) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx, selectRevision+`
		WHERE name = ?
		ORDER BY seq ASC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	revs := []Revision{}
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revs = append(revs, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return revs, nil
}

// Names returns every stored machine name in ascending byte order.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT name
		FROM revisions
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate names: %w", err)
	}
	return names, nil
}

// LastSeq returns the highest seq used in the store, or 0 when empty.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM revisions`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq.Int64, nil
}
