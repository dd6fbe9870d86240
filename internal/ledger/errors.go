package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrOfferingNotFound    = errors.New("offering not found")
	ErrOfferingUnavailable = errors.New("this item is no longer available")
	ErrOfferingExpired     = errors.New("this deal has expired")
	ErrUserNotFound        = errors.New("user not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrAlreadyPickedUp     = errors.New("order already picked up")

	// ErrConflict means the transaction lost a concurrency race. Callers
	// should treat it like ErrOfferingUnavailable on retry, not as fatal.
	ErrConflict = errors.New("purchase conflict, offering was taken")
)

// InsufficientBalanceError carries the numbers the UI needs to message
// precisely ("Insufficient Dining Dollars. Balance: $X").
type InsufficientBalanceError struct {
	BalanceCents  int
	RequiredCents int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient dining dollars: balance %d, required %d",
		e.BalanceCents, e.RequiredCents)
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DuplicateItemError rejects a second enqueue of the same item id.
type DuplicateItemError struct {
	ItemID   string
	ItemName string
}

func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("%s is already in the queue", e.ItemName)
}
