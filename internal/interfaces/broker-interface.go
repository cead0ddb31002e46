package interfaces

// ProducerHandler publishes shipment lifecycle events to the message bus.
// Publishing is best-effort: callers never fail a mutation over it.
type ProducerHandler interface {
	PublishMessage(key, value []byte) error
}
