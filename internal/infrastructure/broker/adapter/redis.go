package adapter

import (
	"context"
	"fmt"
	"log"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/ashudev21/rabf-backend/internal/infrastructure/broker/port"
)

// RedisBroker implements port.Broker over Redis pub/sub. One client serves
// publishes; each Subscribe call opens its own dedicated subscriber
// connection, as required by the Redis protocol.
type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker connects to Redis at the given URL and verifies it with a ping.
func NewRedisBroker(url string) (*RedisBroker, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("broker: parse redis url: %w", err)
	}
	c := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("broker: ping: %w", err)
	}
	return &RedisBroker{client: c}, nil
}

var _ port.Broker = (*RedisBroker)(nil)

func (b *RedisBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	return b.client.Publish(ctx, channel, payload).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, patterns ...string) (<-chan port.Event, func(), error) {
	sub := b.client.PSubscribe(ctx, patterns...)
	// Force the SUBSCRIBE round-trip so a broken broker surfaces here
	// instead of as a silent dead receive channel.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("broker: subscribe %v: %w", patterns, err)
	}

	out := make(chan port.Event, 64)
	done := make(chan struct{})
	go func() {
		defer close(out)
		src := sub.Channel()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case msg, ok := <-src:
				if !ok {
					return
				}
				select {
				case out <- port.Event{Channel: msg.Channel, Payload: []byte(msg.Payload)}:
				default:
					// Saturated subscriber: drop, per the at-most-once contract.
					log.Printf("broker: dropping event on %s (subscriber saturated)", msg.Channel)
				}
			}
		}
	}()

	stop := func() {
		close(done)
		_ = sub.Close()
	}
	return out, stop, nil
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}
