package redisx

import "time"

const (
	// Deals snapshot cache: deals:active -> JSON array (one per store)
	KeyDeals = "deals:active"

	// Balance cache after purchase: balance:{user_id} -> cents
	KeyBalance = "balance:%s"

	// Dedup event processing in fulfillment: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"

	// Pickup board per store: hash pickup:{store_id}, field order_id -> order JSON
	KeyPickupQueue = "pickup:%d"
)

var (
	// Deals churn fast (expiry countdown); keep the cache short.
	TTLDeals   = 10 * time.Second
	TTLBalance = 5 * time.Minute
	TTLDedup   = 48 * time.Hour
)
