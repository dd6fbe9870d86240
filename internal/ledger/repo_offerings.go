package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OfferingRepo struct{ DB *pgxpool.Pool }

// Create persists a new active offering. Discount and expiry are validated
// again here even though the queue already did; the store does not trust
// its caller blindly.
func (r *OfferingRepo) CreateOffering(ctx context.Context, in CreateOffering) (Offering, error) {
	if in.DiscountPercent < 1 || in.DiscountPercent > 100 {
		return Offering{}, &ValidationError{Field: "discount_percent", Reason: "must be 1-100"}
	}
	now := time.Now().UTC()
	if !in.ExpiresAt.After(now) {
		return Offering{}, &ValidationError{Field: "expires_at", Reason: "must be in the future"}
	}

	o := Offering{
		ID:              uuid.NewString(),
		CatererID:       in.CatererID,
		StoreID:         in.StoreID,
		ItemName:        in.ItemName,
		DiscountPercent: in.DiscountPercent,
		CreatedAt:       now,
		ExpiresAt:       in.ExpiresAt.UTC(),
		Status:          OfferingActive,
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO offerings(id, caterer_id, store_id, item_name, discount_percent, created_at, expires_at, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,'active')
	`, o.ID, o.CatererID, o.StoreID, o.ItemName, o.DiscountPercent, o.CreatedAt, o.ExpiresAt)
	if err != nil {
		return Offering{}, err
	}
	return o, nil
}

// ListActiveOfferings returns unexpired active offerings, soonest-expiring
// first. The ordering feeds the one-deal-per-store selection.
func (r *OfferingRepo) ListActiveOfferings(ctx context.Context) ([]Offering, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, caterer_id, store_id, item_name, discount_percent, created_at, expires_at, status
		FROM offerings
		WHERE status='active' AND expires_at > now()
		ORDER BY expires_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Offering
	for rows.Next() {
		var o Offering
		if err := rows.Scan(&o.ID, &o.CatererID, &o.StoreID, &o.ItemName, &o.DiscountPercent,
			&o.CreatedAt, &o.ExpiresAt, &o.Status); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListCatererOfferings returns everything the caterer ever created, sold or
// not, newest first.
func (r *OfferingRepo) ListCatererOfferings(ctx context.Context, catererID string) ([]Offering, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, caterer_id, store_id, item_name, discount_percent, created_at, expires_at,
		       status, COALESCE(order_id,''), COALESCE(purchased_by,''), purchased_at
		FROM offerings
		WHERE caterer_id=$1
		ORDER BY created_at DESC`, catererID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Offering
	for rows.Next() {
		var o Offering
		if err := rows.Scan(&o.ID, &o.CatererID, &o.StoreID, &o.ItemName, &o.DiscountPercent,
			&o.CreatedAt, &o.ExpiresAt, &o.Status, &o.OrderID, &o.PurchasedBy, &o.PurchasedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
