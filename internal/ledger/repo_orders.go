package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepo struct{ DB *pgxpool.Pool }

const orderColumns = `id, student_id, student_email, caterer_id, offering_id, store_id, item_name,
	total_cents, balance_before_cents, balance_after_cents, ordered_at, picked_up_at, status, is_picked_up`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.StudentID, &o.StudentEmail, &o.CatererID, &o.OfferingID, &o.StoreID,
		&o.ItemName, &o.TotalCents, &o.BalanceBeforeCents, &o.BalanceAfterCents,
		&o.OrderedAt, &o.PickedUpAt, &o.Status, &o.IsPickedUp)
	return o, err
}

func (r *OrderRepo) GetOrder(ctx context.Context, id string) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

// ListStudentOrders is the my-orders projection: active (not picked up) or
// past (picked up) orders for one student, newest first.
func (r *OrderRepo) ListStudentOrders(ctx context.Context, studentID string, pickedUp bool) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE student_id=$1 AND is_picked_up=$2
		ORDER BY COALESCE(picked_up_at, ordered_at) DESC`, studentID, pickedUp)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *OrderRepo) ListAllOrders(ctx context.Context) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY ordered_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows pgx.Rows) ([]Order, error) {
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// MarkPickedUp transitions placed -> picked_up exactly once. A second call
// fails with ErrAlreadyPickedUp and does not touch picked_up_at again; the
// conditional UPDATE is the guard, not a read-then-write.
func (r *OrderRepo) MarkPickedUp(ctx context.Context, orderID string) (Order, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status='picked_up', is_picked_up=true, picked_up_at=now()
		WHERE id=$1 AND status='placed'`, orderID)
	if err != nil {
		return Order{}, err
	}
	if ct.RowsAffected() == 1 {
		return r.GetOrder(ctx, orderID)
	}

	// No row moved: either absent or already picked up.
	o, err := r.GetOrder(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if o.IsPickedUp {
		return Order{}, ErrAlreadyPickedUp
	}
	return Order{}, ErrOrderNotFound
}
