package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/TEENet-io/ncg-bridge/database"
)

type SettlementKind string

const (
	SettlementRedeem  SettlementKind = "redeem"  // NCG released for burned wNCG
	SettlementMint    SettlementKind = "mint"    // wNCG minted for received NCG
	SettlementRefund  SettlementKind = "refund"  // NCG sent back for a malformed transfer
	SettlementSkipped SettlementKind = "skipped" // nothing could be sent
	SettlementPending SettlementKind = "pending" // issued or about to be, outcome not known yet
)

// Settlement is the record of an action issued on the opposite chain
// for one source occurrence.
type Settlement struct {
	SourceChain string
	SourceRef   string
	Kind        SettlementKind
	TargetTx    string // empty for skipped, may be empty for pending
	Recipient   string
	Amount      *big.Int
	Nonce       *int64 // nine chronicles tx nonce held by a pending settlement
	CreatedAt   time.Time
}

func (s *Settlement) validate() error {
	switch {
	case s.SourceChain == "" || s.SourceRef == "":
		return fmt.Errorf("%w: empty source", ErrSettlementInvalid)
	case s.Amount == nil || s.Amount.Sign() < 0:
		return fmt.Errorf("%w: bad amount", ErrSettlementInvalid)
	case s.Kind == SettlementPending:
		if s.Nonce == nil && s.TargetTx == "" {
			return fmt.Errorf("%w: pending without nonce or target tx", ErrSettlementInvalid)
		}
		return nil
	case s.Kind != SettlementSkipped && s.TargetTx == "":
		return fmt.Errorf("%w: missing target tx", ErrSettlementInvalid)
	}

	switch s.Kind {
	case SettlementRedeem, SettlementMint, SettlementRefund, SettlementSkipped:
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrSettlementInvalid, s.Kind)
	}
}

func (s *Settlement) columns() (targetTx sql.NullString, nonce sql.NullInt64, createdAt int64) {
	if s.TargetTx != "" {
		targetTx = sql.NullString{String: s.TargetTx, Valid: true}
	}
	if s.Nonce != nil {
		nonce = sql.NullInt64{Int64: *s.Nonce, Valid: true}
	}
	t := s.CreatedAt
	if t.IsZero() {
		t = time.Now()
	}
	return targetTx, nonce, t.Unix()
}

// InsertSettlement records s. Recording the same source twice
// returns ErrSettlementExists.
func (st *StateDB) InsertSettlement(ctx context.Context, s *Settlement) error {
	if err := s.validate(); err != nil {
		return err
	}
	targetTx, nonce, createdAt := s.columns()

	query := `INSERT INTO settlement (sourceChain, sourceRef, kind, targetTx, recipient, amount, nonce, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := st.stmtCache.Prepare(ctx, query)
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx,
		s.SourceChain,
		s.SourceRef,
		string(s.Kind),
		targetTx,
		s.Recipient,
		s.Amount.String(),
		nonce,
		createdAt,
	)
	if database.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s/%s", ErrSettlementExists, s.SourceChain, s.SourceRef)
	}
	return err
}

// CompleteSettlement turns the pending settlement of the same source into s.
// It returns ErrSettlementNotPending when there is nothing pending.
func (st *StateDB) CompleteSettlement(ctx context.Context, s *Settlement) error {
	if err := s.validate(); err != nil {
		return err
	}
	if s.Kind == SettlementPending {
		return fmt.Errorf("%w: cannot complete into pending", ErrSettlementInvalid)
	}
	targetTx, nonce, createdAt := s.columns()

	query := `UPDATE settlement SET kind = ?, targetTx = ?, recipient = ?, amount = ?, nonce = ?, createdAt = ?
		WHERE sourceChain = ? AND sourceRef = ? AND kind = 'pending'`
	stmt, err := st.stmtCache.Prepare(ctx, query)
	if err != nil {
		return err
	}

	res, err := stmt.ExecContext(ctx,
		string(s.Kind),
		targetTx,
		s.Recipient,
		s.Amount.String(),
		nonce,
		createdAt,
		s.SourceChain,
		s.SourceRef,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrSettlementNotPending, s.SourceChain, s.SourceRef)
	}
	return nil
}

// DeletePendingSettlement drops a pending settlement. Final ones are left alone.
func (st *StateDB) DeletePendingSettlement(ctx context.Context, sourceChain, sourceRef string) error {
	query := `DELETE FROM settlement WHERE sourceChain = ? AND sourceRef = ? AND kind = 'pending'`
	stmt, err := st.stmtCache.Prepare(ctx, query)
	if err != nil {
		return err
	}
	_, err = stmt.ExecContext(ctx, sourceChain, sourceRef)
	return err
}

// MaxPendingNonce returns the highest nonce held by a pending settlement.
func (st *StateDB) MaxPendingNonce(ctx context.Context) (int64, bool, error) {
	query := `SELECT MAX(nonce) FROM settlement WHERE kind = 'pending' AND nonce IS NOT NULL`
	stmt, err := st.stmtCache.Prepare(ctx, query)
	if err != nil {
		return 0, false, err
	}

	var nonce sql.NullInt64
	if err := stmt.QueryRowContext(ctx).Scan(&nonce); err != nil {
		return 0, false, err
	}
	return nonce.Int64, nonce.Valid, nil
}

// GetSettlement looks up the settlement of a source occurrence.
func (st *StateDB) GetSettlement(ctx context.Context, sourceChain, sourceRef string) (*Settlement, bool, error) {
	query := `SELECT kind, targetTx, recipient, amount, nonce, createdAt FROM settlement
		WHERE sourceChain = ? AND sourceRef = ?`
	stmt, err := st.stmtCache.Prepare(ctx, query)
	if err != nil {
		return nil, false, err
	}

	var (
		kind      string
		targetTx  sql.NullString
		recipient string
		amount    string
		nonce     sql.NullInt64
		createdAt int64
	)
	err = stmt.QueryRowContext(ctx, sourceChain, sourceRef).Scan(&kind, &targetTx, &recipient, &amount, &nonce, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	v, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, false, fmt.Errorf("%w: stored amount %q", ErrSettlementInvalid, amount)
	}

	s := &Settlement{
		SourceChain: sourceChain,
		SourceRef:   sourceRef,
		Kind:        SettlementKind(kind),
		TargetTx:    targetTx.String,
		Recipient:   recipient,
		Amount:      v,
		CreatedAt:   time.Unix(createdAt, 0),
	}
	if nonce.Valid {
		s.Nonce = &nonce.Int64
	}
	return s, true, nil
}
