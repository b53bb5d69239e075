package state

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	logger "github.com/sirupsen/logrus"
)

// Load returns the last persisted cursor of identity,
// or def if nothing was saved yet.
func (st *StateDB) Load(ctx context.Context, identity string, def uint64) (uint64, error) {
	if identity == "" {
		return 0, ErrEmptyIdentity
	}

	stored, ok, err := st.getCursor(ctx, identity)
	if err != nil {
		return 0, err
	}
	if !ok {
		logger.WithFields(logger.Fields{
			"identity": identity,
			"default":  def,
		}).Info("no stored cursor, using default")
		return def, nil
	}

	return stored, nil
}

// Save persists cursor for identity in a single statement.
// A cursor never moves backwards.
func (st *StateDB) Save(ctx context.Context, identity string, cursor uint64) error {
	if identity == "" {
		return ErrEmptyIdentity
	}
	if cursor > math.MaxInt64 {
		return ErrCursorOutOfRange
	}

	query := `INSERT INTO monitor_state (identity, cursor, updatedAt) VALUES (?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET cursor = excluded.cursor, updatedAt = excluded.updatedAt
		WHERE excluded.cursor >= monitor_state.cursor`
	stmt, err := st.stmtCache.Prepare(ctx, query)
	if err != nil {
		return err
	}

	res, err := stmt.ExecContext(ctx, identity, int64(cursor), time.Now().Unix())
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		stored, _, err := st.getCursor(ctx, identity)
		if err != nil {
			return err
		}
		return ErrCursorRegression(identity, stored, cursor)
	}

	return nil
}

// Cursors returns every stored cursor keyed by identity.
func (st *StateDB) Cursors(ctx context.Context) (map[string]uint64, error) {
	query := `SELECT identity, cursor FROM monitor_state`
	stmt, err := st.stmtCache.Prepare(ctx, query)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cursors := make(map[string]uint64)
	for rows.Next() {
		var (
			identity string
			cursor   int64
		)
		if err := rows.Scan(&identity, &cursor); err != nil {
			return nil, err
		}
		cursors[identity] = uint64(cursor)
	}

	return cursors, rows.Err()
}

func (st *StateDB) getCursor(ctx context.Context, identity string) (uint64, bool, error) {
	query := `SELECT cursor FROM monitor_state WHERE identity = ?`
	stmt, err := st.stmtCache.Prepare(ctx, query)
	if err != nil {
		return 0, false, err
	}

	var cursor int64
	if err := stmt.QueryRowContext(ctx, identity).Scan(&cursor); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}

	return uint64(cursor), true, nil
}
