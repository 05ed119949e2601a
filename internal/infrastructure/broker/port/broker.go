package port

import "context"

// Event is a single message received from the broker.
type Event struct {
	Channel string
	Payload []byte
}

// Broker is the minimal publish/subscribe contract the notification layer
// needs: named channels, best-effort delivery to every current subscriber,
// no durability and no replay. Implementations must be concurrency-safe.
type Broker interface {
	// Publish broadcasts payload on channel. Publishing with zero current
	// subscribers is a successful no-op.
	Publish(ctx context.Context, channel string, payload []byte) error

	// Subscribe registers for all channels matching the given patterns
	// (glob syntax, e.g. "room:*"). It returns a receive channel that is
	// closed when the subscription ends, and a stop function that tears the
	// subscription down. Events arriving while the receiver is saturated
	// may be dropped.
	Subscribe(ctx context.Context, patterns ...string) (<-chan Event, func(), error)

	// Close releases the underlying connections.
	Close() error
}
