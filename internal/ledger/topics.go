package ledger

const (
	TopicOrderPlaced   = "grub.order.placed"
	TopicOrderPickedUp = "grub.order.picked_up"
	TopicOrderStaged   = "grub.order.staged"
)

// Partition key = order_id, so every event for one order keeps its order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
