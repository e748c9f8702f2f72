package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/arthurvalves/IC-Tomato/internal/ir"
)

// Save appends a revision of m under m.Name unless the latest revision of
// that name has the same content hash. The bool reports whether a revision
// was written; when it was not, the returned revision is the latest one.
//
// The document is serialized to canonical JSON per RFC 8785 so that
// formatting differences never produce a new revision.
func (s *Store) Save(ctx context.Context, m *ir.Machine) (Revision, bool, error) {
	if m == nil || strings.TrimSpace(m.Name) == "" {
		return Revision{}, false, fmt.Errorf("save: %w", ErrEmptyName)
	}
	body, hash, err := marshalMachine(m)
	if err != nil {
		return Revision{}, false, fmt.Errorf("save %q: %w", m.Name, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Revision{}, false, fmt.Errorf("save %q: begin: %w", m.Name, err)
	}
	defer tx.Rollback()

	latest, err := scanRevision(tx.QueryRowContext(ctx, selectRevision+`
		WHERE name = ?
		ORDER BY seq DESC
		LIMIT 1
	`, m.Name))
	switch {
	case err == nil && latest.ContentHash == hash:
		return latest, false, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return Revision{}, false, fmt.Errorf("save %q: %w", m.Name, err)
	}

	rev := Revision{
		ID:          s.ids.Generate(),
		Name:        m.Name,
		Kind:        m.Kind(),
		ContentHash: hash,
		Body:        []byte(body),
		CreatedAt:   s.clock.Now().UTC(),
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO revisions (id, name, kind, content_hash, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		rev.ID,
		rev.Name,
		string(rev.Kind),
		rev.ContentHash,
		body,
		rev.CreatedAt.Unix(),
	)
	if err != nil {
		return Revision{}, false, fmt.Errorf("save %q: insert: %w", m.Name, err)
	}
	if rev.Seq, err = res.LastInsertId(); err != nil {
		return Revision{}, false, fmt.Errorf("save %q: %w", m.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return Revision{}, false, fmt.Errorf("save %q: commit: %w", m.Name, err)
	}
	return rev, true, nil
}
