package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// OfferingStore is the slice of the durable store the queue needs when
// releasing drafts.
type OfferingStore interface {
	ListActiveOfferings(ctx context.Context) ([]Offering, error)
	CreateOffering(ctx context.Context, in CreateOffering) (Offering, error)
}

// Queue is one caterer session's staging area for draft offerings. It is
// process-local state, never persisted; drafts only become real offerings
// through ReleaseAll.
type Queue struct {
	CatererID string

	mu     sync.Mutex
	drafts []Draft
}

func NewQueue(catererID string) *Queue {
	return &Queue{CatererID: catererID}
}

// Enqueue stages a draft for a catalog item. The discount must be 1-100 and
// the duration non-zero; an item can only be queued once at a time.
func (q *Queue) Enqueue(itemID string, storeID, discountPercent, hours, minutes int) (Draft, error) {
	if discountPercent <= 0 || discountPercent > 100 {
		return Draft{}, &ValidationError{Field: "discount_percent", Reason: "enter a valid discount (1-100%)"}
	}
	if hours < 0 || minutes < 0 || (hours == 0 && minutes == 0) {
		return Draft{}, &ValidationError{Field: "duration", Reason: "enter a valid duration"}
	}
	item, ok := ItemByID(itemID)
	if !ok {
		return Draft{}, &ValidationError{Field: "item_id", Reason: fmt.Sprintf("unknown item %q", itemID)}
	}
	if item.StoreID != storeID {
		return Draft{}, &ValidationError{Field: "store_id", Reason: "item does not belong to this store"}
	}
	store, _ := StoreByID(storeID)

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, d := range q.drafts {
		if d.ItemID == itemID {
			return Draft{}, &DuplicateItemError{ItemID: itemID, ItemName: item.Name}
		}
	}

	now := time.Now().UTC()
	d := Draft{
		ItemID:          itemID,
		StoreID:         storeID,
		StoreName:       store.Name,
		ItemName:        item.Name,
		PriceCents:      item.PriceCents,
		DiscountPercent: discountPercent,
		DiscountedCents: DiscountedCents(item.PriceCents, discountPercent),
		DurationHours:   hours,
		DurationMinutes: minutes,
		ExpiresAt:       now.Add(time.Duration(hours*60+minutes) * time.Minute),
		QueuedAt:        now,
	}
	q.drafts = append(q.drafts, d)
	return d, nil
}

// Dequeue removes a staged draft; removing an absent item is a no-op.
func (q *Queue) Dequeue(itemID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, d := range q.drafts {
		if d.ItemID == itemID {
			q.drafts = append(q.drafts[:i], q.drafts[i+1:]...)
			return
		}
	}
}

// Drafts returns a snapshot copy in enqueue order.
func (q *Queue) Drafts() []Draft {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Draft, len(q.drafts))
	copy(out, q.drafts)
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.drafts)
}

type ReleaseResult struct {
	Released int      `json:"released"`
	Skipped  []string `json:"skipped,omitempty"` // item names already active or no longer valid
}

// ReleaseAll commits every staged draft to the store, skipping any draft
// whose (itemName, storeID) already has an active offering. The active set
// is re-read before each create rather than snapshotted once, to keep the
// check-then-create window small. Partial success is the normal outcome:
// a duplicate never fails the batch, and a draft the store rejects as
// invalid (its expiry passed while queued) is skipped, not retried. Only
// a store failure aborts: offerings already created stay committed while
// unprocessed drafts stay queued.
func (q *Queue) ReleaseAll(ctx context.Context, store OfferingStore) (ReleaseResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var res ReleaseResult
	remaining := make([]Draft, 0, len(q.drafts))

	for i, d := range q.drafts {
		active, err := store.ListActiveOfferings(ctx)
		if err != nil {
			q.drafts = append(remaining, q.drafts[i:]...)
			return res, fmt.Errorf("list active offerings: %w", err)
		}
		dup := false
		for _, o := range active {
			if o.ItemName == d.ItemName && o.StoreID == d.StoreID {
				dup = true
				break
			}
		}
		if dup {
			res.Skipped = append(res.Skipped, d.ItemName)
			continue
		}

		_, err = store.CreateOffering(ctx, CreateOffering{
			CatererID:       q.CatererID,
			StoreID:         d.StoreID,
			ItemName:        d.ItemName,
			DiscountPercent: d.DiscountPercent,
			ExpiresAt:       d.ExpiresAt,
		})
		if err != nil {
			var invalid *ValidationError
			if errors.As(err, &invalid) {
				res.Skipped = append(res.Skipped, d.ItemName)
				continue
			}
			q.drafts = append(remaining, q.drafts[i:]...)
			return res, fmt.Errorf("create offering %s: %w", d.ItemName, err)
		}
		res.Released++
	}

	q.drafts = remaining
	return res, nil
}
