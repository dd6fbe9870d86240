package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore is a mutex-guarded in-process implementation of the same store
// contracts the pgx repos provide. The suite exercises the purchase
// semantics against it, including the concurrent at-most-one-winner
// property; it also backs local development without a database.
type MemStore struct {
	mu        sync.Mutex
	offerings map[string]*Offering
	users     map[string]*User
	orders    map[string]*Order
}

func NewMemStore() *MemStore {
	return &MemStore{
		offerings: map[string]*Offering{},
		users:     map[string]*User{},
		orders:    map[string]*Order{},
	}
}

// SeedOffering and SeedUser bypass validation so tests can stage edge
// states (expired-but-active offerings, exact balances).
func (m *MemStore) SeedOffering(o Offering) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := o
	m.offerings[o.ID] = &cp
}

func (m *MemStore) SeedUser(u User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := u
	m.users[u.ID] = &cp
}

func (m *MemStore) CreateOffering(ctx context.Context, in CreateOffering) (Offering, error) {
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
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := o
	m.offerings[o.ID] = &cp
	return o, nil
}

func (m *MemStore) ListActiveOfferings(ctx context.Context) ([]Offering, error) {
	now := time.Now().UTC()
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Offering
	for _, o := range m.offerings {
		if o.Status == OfferingActive && o.ExpiresAt.After(now) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}

func (m *MemStore) ListCatererOfferings(ctx context.Context, catererID string) ([]Offering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Offering
	for _, o := range m.offerings {
		if o.CatererID == catererID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) CreateUser(ctx context.Context, id, email string, role Role) (User, error) {
	if role != RoleStudent && role != RoleCaterer {
		return User{}, &ValidationError{Field: "role", Reason: "must be student or caterer"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return *u, nil
	}
	u := User{ID: id, Email: strings.ToLower(email), Role: role, CreatedAt: time.Now().UTC()}
	if role == RoleStudent {
		u.BalanceCents = StartingBalanceCents
	}
	cp := u
	m.users[id] = &cp
	return u, nil
}

func (m *MemStore) GetUser(ctx context.Context, id string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return *u, nil
}

func (m *MemStore) GetOrder(ctx context.Context, id string) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	return *o, nil
}

func (m *MemStore) ListStudentOrders(ctx context.Context, studentID string, pickedUp bool) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Order
	for _, o := range m.orders {
		if o.StudentID == studentID && o.IsPickedUp == pickedUp {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return orderSortTime(out[i]).After(orderSortTime(out[j])) })
	return out, nil
}

func orderSortTime(o Order) time.Time {
	if o.PickedUpAt != nil {
		return *o.PickedUpAt
	}
	return o.OrderedAt
}

func (m *MemStore) ListAllOrders(ctx context.Context) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderedAt.After(out[j].OrderedAt) })
	return out, nil
}

func (m *MemStore) MarkPickedUp(ctx context.Context, orderID string) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	if o.IsPickedUp {
		return Order{}, ErrAlreadyPickedUp
	}
	now := time.Now().UTC()
	o.Status = OrderPickedUp
	o.IsPickedUp = true
	o.PickedUpAt = &now
	return *o, nil
}

// Purchase applies the same nine steps as the transactional coordinator;
// the single mutex is the atomic unit here, so at most one caller ever
// observes the offering as active.
func (m *MemStore) Purchase(ctx context.Context, in PurchaseInput) (PurchaseResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.offerings[in.OfferingID]
	if !ok {
		return PurchaseResult{}, ErrOfferingNotFound
	}
	if o.Status != OfferingActive {
		return PurchaseResult{}, ErrOfferingUnavailable
	}
	now := time.Now().UTC()
	if !o.ExpiresAt.After(now) {
		return PurchaseResult{}, ErrOfferingExpired
	}
	u, ok := m.users[in.StudentID]
	if !ok {
		return PurchaseResult{}, ErrUserNotFound
	}
	if u.BalanceCents < in.AmountCents {
		return PurchaseResult{}, &InsufficientBalanceError{BalanceCents: u.BalanceCents, RequiredCents: in.AmountCents}
	}
	newBalance := u.BalanceCents - in.AmountCents

	order := &Order{
		ID:                 uuid.NewString(),
		StudentID:          in.StudentID,
		StudentEmail:       in.StudentEmail,
		CatererID:          o.CatererID,
		OfferingID:         o.ID,
		StoreID:            o.StoreID,
		ItemName:           o.ItemName,
		TotalCents:         in.AmountCents,
		BalanceBeforeCents: u.BalanceCents,
		BalanceAfterCents:  newBalance,
		OrderedAt:          now,
		Status:             OrderPlaced,
	}
	m.orders[order.ID] = order
	u.BalanceCents = newBalance
	o.Status = OfferingSold
	o.OrderID = order.ID
	o.PurchasedBy = in.StudentID
	o.PurchasedAt = &now

	return PurchaseResult{
		OrderID:         order.ID,
		NewBalanceCents: newBalance,
		CatererID:       o.CatererID,
		ItemName:        o.ItemName,
		StoreID:         o.StoreID,
	}, nil
}
