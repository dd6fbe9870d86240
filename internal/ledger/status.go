package ledger

type OfferingStatus string

const (
	OfferingActive OfferingStatus = "active"
	OfferingSold   OfferingStatus = "sold"
)

type OrderStatus string

const (
	OrderPlaced   OrderStatus = "placed"
	OrderPickedUp OrderStatus = "picked_up"
	// Reserved for a future cancellation flow; nothing transitions here yet.
	OrderCancelled OrderStatus = "cancelled"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPlaced:    {OrderPickedUp: true},
	OrderPickedUp:  {},
	OrderCancelled: {},
}

func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}
