package ledger

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleCaterer Role = "caterer"
)

// Starting balance for a freshly registered student, in cents.
const StartingBalanceCents = 25000

type User struct {
	ID           string
	Email        string
	Role         Role
	BalanceCents int // dining dollars; always 0 for caterers
	CreatedAt    time.Time
}

type Offering struct {
	ID              string
	CatererID       string
	StoreID         int
	ItemName        string
	DiscountPercent int
	CreatedAt       time.Time
	ExpiresAt       time.Time
	Status          OfferingStatus
	OrderID         string // set iff Status == OfferingSold
	PurchasedBy     string
	PurchasedAt     *time.Time
}

type Order struct {
	ID                 string
	StudentID          string
	StudentEmail       string
	CatererID          string
	OfferingID         string
	StoreID            int
	ItemName           string
	TotalCents         int
	BalanceBeforeCents int
	BalanceAfterCents  int
	OrderedAt          time.Time
	PickedUpAt         *time.Time
	Status             OrderStatus
	IsPickedUp         bool
}

// Draft is a caterer-local staged offering; it only exists inside a Queue
// until ReleaseAll turns it into a real Offering.
type Draft struct {
	ItemID          string
	StoreID         int
	StoreName       string
	ItemName        string
	PriceCents      int
	DiscountPercent int
	DiscountedCents int
	DurationHours   int
	DurationMinutes int
	ExpiresAt       time.Time
	QueuedAt        time.Time
}

// CreateOffering is the input to OfferingStore.CreateOffering.
type CreateOffering struct {
	CatererID       string
	StoreID         int
	ItemName        string
	DiscountPercent int
	ExpiresAt       time.Time
}

type PurchaseInput struct {
	OfferingID   string
	StudentID    string
	StudentEmail string
	// AmountCents is the price the client believes it is paying. The
	// coordinator debits exactly this amount and does not recompute it
	// from the catalog discount.
	AmountCents int
}

type PurchaseResult struct {
	OrderID         string
	NewBalanceCents int
	CatererID       string
	ItemName        string
	StoreID         int
}
