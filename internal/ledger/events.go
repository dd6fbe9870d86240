package ledger

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced   = "OrderPlaced"
	EventOrderPickedUp = "OrderPickedUp"
	EventOrderStaged   = "OrderStaged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g., "grub-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- payload per event ----

type OrderPlacedPayload struct {
	OrderID         string `json:"order_id"`
	OfferingID      string `json:"offering_id"`
	StudentID       string `json:"student_id"`
	StudentEmail    string `json:"student_email"`
	CatererID       string `json:"caterer_id"`
	StoreID         int    `json:"store_id"`
	ItemName        string `json:"item_name"`
	TotalCents      int    `json:"total_cents"`
	NewBalanceCents int    `json:"new_balance_cents"`
}

type OrderPickedUpPayload struct {
	OrderID    string    `json:"order_id"`
	StoreID    int       `json:"store_id"`
	PickedUpAt time.Time `json:"picked_up_at"`
}

type OrderStagedPayload struct {
	OrderID string `json:"order_id"`
	StoreID int    `json:"store_id"`
}
