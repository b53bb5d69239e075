package state

import (
	"database/sql"

	"github.com/TEENet-io/ncg-bridge/database"
)

// StateDB is the durable store shared by both monitors and observers.
// It holds the monitor cursors and the settlement ledger.
type StateDB struct {
	db        *sql.DB
	stmtCache *database.StmtCache
}

func NewStateDB(db *sql.DB) (*StateDB, error) {
	// 1. Create the tables.
	if _, err := db.Exec(monitorStateTable + settlementTable); err != nil {
		return nil, err
	}

	// 2. A stmt cache + db.
	return &StateDB{
		db:        db,
		stmtCache: database.NewStmtCache(db),
	}, nil
}

// Open opens the sqlite file at path and prepares the tables.
func Open(path string) (*StateDB, error) {
	db, err := database.OpenSQLite(path)
	if err != nil {
		return nil, err
	}

	st, err := NewStateDB(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (st *StateDB) Close() error {
	st.stmtCache.Clear()
	return st.db.Close()
}
