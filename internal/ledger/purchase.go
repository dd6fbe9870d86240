package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PurchaseRepo runs the one true hard part: the atomic purchase. Every read
// and write happens inside a single transaction; either the order row, the
// balance update and the offering transition all commit, or none do.
type PurchaseRepo struct{ DB *pgxpool.Pool }

func (r *PurchaseRepo) Purchase(ctx context.Context, in PurchaseInput) (PurchaseResult, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return PurchaseResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// 1-3) lock the offering row, check status & expiry
	var o Offering
	err = tx.QueryRow(ctx, `
		SELECT id, caterer_id, store_id, item_name, discount_percent, expires_at, status
		FROM offerings WHERE id=$1 FOR UPDATE`, in.OfferingID).
		Scan(&o.ID, &o.CatererID, &o.StoreID, &o.ItemName, &o.DiscountPercent, &o.ExpiresAt, &o.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return PurchaseResult{}, ErrOfferingNotFound
	}
	if err != nil {
		return PurchaseResult{}, err
	}
	if o.Status != OfferingActive {
		return PurchaseResult{}, ErrOfferingUnavailable
	}
	now := time.Now().UTC()
	if !o.ExpiresAt.After(now) {
		return PurchaseResult{}, ErrOfferingExpired
	}

	// 4-5) lock the student row, check balance
	var balance int
	err = tx.QueryRow(ctx, `SELECT balance_cents FROM users WHERE id=$1 FOR UPDATE`, in.StudentID).
		Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return PurchaseResult{}, ErrUserNotFound
	}
	if err != nil {
		return PurchaseResult{}, err
	}
	if balance < in.AmountCents {
		return PurchaseResult{}, &InsufficientBalanceError{BalanceCents: balance, RequiredCents: in.AmountCents}
	}
	newBalance := balance - in.AmountCents

	// 7-8) order + debit + offering CAS, all in this tx
	orderID := uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, student_id, student_email, caterer_id, offering_id, store_id, item_name,
			total_cents, balance_before_cents, balance_after_cents, ordered_at, status, is_picked_up)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,'placed',false)
	`, orderID, in.StudentID, in.StudentEmail, o.CatererID, o.ID, o.StoreID, o.ItemName,
		in.AmountCents, balance, newBalance, now)
	if err != nil {
		return PurchaseResult{}, err
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET balance_cents=$2 WHERE id=$1`, in.StudentID, newBalance); err != nil {
		return PurchaseResult{}, err
	}

	// CAS on status, not just the row lock: a competing committed transaction
	// makes RowsAffected 0 here and we abort with a conflict.
	ct, err := tx.Exec(ctx, `
		UPDATE offerings SET status='sold', order_id=$2, purchased_by=$3, purchased_at=$4
		WHERE id=$1 AND status='active'`, o.ID, orderID, in.StudentID, now)
	if err != nil {
		return PurchaseResult{}, err
	}
	if ct.RowsAffected() != 1 {
		return PurchaseResult{}, ErrConflict
	}

	if err := tx.Commit(ctx); err != nil {
		return PurchaseResult{}, err
	}
	return PurchaseResult{
		OrderID:         orderID,
		NewBalanceCents: newBalance,
		CatererID:       o.CatererID,
		ItemName:        o.ItemName,
		StoreID:         o.StoreID,
	}, nil
}
