package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ashudev21/rabf-backend/internal/infrastructure/broker/port"
	"github.com/ashudev21/rabf-backend/internal/infrastructure/realtime"
)

// Dispatcher is the per-process subscriber side of the bus. It consumes the
// notifications channel and the room:* namespace, and delivers each event to
// whatever live connections this process happens to own: socket sessions via
// the realtime router, notification streams via the stream registry. Events
// for users with no local connection are dropped; relevance is the
// subscriber's call, not the bus's.
type Dispatcher struct {
	broker  port.Broker
	router  *realtime.Router
	streams *StreamRegistry
}

func NewDispatcher(broker port.Broker, router *realtime.Router, streams *StreamRegistry) *Dispatcher {
	return &Dispatcher{broker: broker, router: router, streams: streams}
}

// Run subscribes once and dispatches until the context is canceled. It
// returns the subscription error, if any; a healthy run blocks.
func (d *Dispatcher) Run(ctx context.Context) error {
	events, stop, err := d.broker.Subscribe(ctx, Channel, RoomChannel("*"))
	if err != nil {
		return err
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			d.dispatch(ev)
		}
	}
}

func (d *Dispatcher) dispatch(ev port.Event) {
	if roomID, ok := RoomFromChannel(ev.Channel); ok {
		d.router.Broadcast(roomID, ev.Payload)
		return
	}

	if ev.Channel != Channel {
		return
	}
	var env Envelope
	if err := json.Unmarshal(ev.Payload, &env); err != nil {
		log.Printf("notification: malformed envelope: %v", err)
		return
	}
	if env.UserID == "" {
		return
	}

	data, err := json.Marshal(env.Payload)
	if err != nil {
		log.Printf("notification: encode payload: %v", err)
		return
	}
	d.router.NotifyUser(env.UserID, data)
	d.streams.Deliver(env.UserID, data)
}
