package orders

const (
	TopicOrderPlaced        = "order.placed"
	TopicOrderCancelled     = "order.cancelled"
	TopicOrderStatusChanged = "order.status_changed"
)

// Topics lists every topic order events are published to.
var Topics = []string{TopicOrderPlaced, TopicOrderCancelled, TopicOrderStatusChanged}

// Partition key = order id, so all events of one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
