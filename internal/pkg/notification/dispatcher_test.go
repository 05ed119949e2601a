package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ashudev21/rabf-backend/internal/infrastructure/broker/port"
	"github.com/ashudev21/rabf-backend/internal/infrastructure/realtime"
)

type stubSocket struct {
	mu     sync.Mutex
	frames [][]byte
	wrote  chan struct{}
}

func newStubSocket() *stubSocket {
	return &stubSocket{wrote: make(chan struct{}, 16)}
}

func (s *stubSocket) SetWriteDeadline(t time.Time) error { return nil }

func (s *stubSocket) WriteMessage(messageType int, data []byte) error {
	s.mu.Lock()
	s.frames = append(s.frames, data)
	s.mu.Unlock()
	select {
	case s.wrote <- struct{}{}:
	default:
	}
	return nil
}

func (s *stubSocket) WriteControl(messageType int, data []byte, deadline time.Time) error {
	return nil
}

func (s *stubSocket) Close() error { return nil }

func (s *stubSocket) waitForFrame(t *testing.T) []byte {
	t.Helper()
	select {
	case <-s.wrote:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a frame")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames[len(s.frames)-1]
}

// fanoutBroker mimics Redis pub/sub across processes: every subscriber gets
// its own copy of each published event.
type fanoutBroker struct {
	mu   sync.Mutex
	subs []chan port.Event
}

func (b *fanoutBroker) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		ch <- port.Event{Channel: channel, Payload: payload}
	}
	return nil
}

func (b *fanoutBroker) Subscribe(ctx context.Context, patterns ...string) (<-chan port.Event, func(), error) {
	ch := make(chan port.Event, 16)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch, func() {}, nil
}

func (b *fanoutBroker) Close() error { return nil }

// waitForSubscribers blocks until n dispatchers have subscribed, so a test
// can publish without racing the dispatcher goroutines' Subscribe calls.
func (b *fanoutBroker) waitForSubscribers(t *testing.T, n int) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		b.mu.Lock()
		subscribed := len(b.subs)
		b.mu.Unlock()
		if subscribed >= n {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d subscribers, have %d", n, subscribed)
		case <-time.After(time.Millisecond):
		}
	}
}

func startDispatcher(t *testing.T, broker port.Broker, rtr *realtime.Router, streams *StreamRegistry) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewDispatcher(broker, rtr, streams).Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("dispatcher run: %v", err)
			}
		case <-time.After(time.Second):
			t.Error("dispatcher did not stop")
		}
	})
	return cancel
}

func TestDispatcherDeliversNotificationLocally(t *testing.T) {
	broker := newFakeBroker()
	rtr := realtime.NewRouter()
	defer rtr.Close()
	streams := NewStreamRegistry()

	ws := newStubSocket()
	conn := realtime.NewConnection("bob", ws)
	rtr.Attach(conn)
	defer rtr.Detach(conn)

	streamCh, remove := streams.Add("bob")
	defer remove()

	startDispatcher(t, broker, rtr, streams)

	env, err := json.Marshal(Envelope{UserID: "bob", Payload: Payload{Type: TypeNewMessage, ChatID: "conv-1"}})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	broker.events <- port.Event{Channel: Channel, Payload: env}

	var p Payload
	if err := json.Unmarshal(ws.waitForFrame(t), &p); err != nil {
		t.Fatalf("unmarshal socket frame: %v", err)
	}
	if p.Type != TypeNewMessage || p.ChatID != "conv-1" {
		t.Fatalf("unexpected payload %+v", p)
	}

	select {
	case frame := <-streamCh:
		if err := json.Unmarshal(frame, &p); err != nil {
			t.Fatalf("unmarshal stream frame: %v", err)
		}
		if p.Type != TypeNewMessage {
			t.Fatalf("unexpected stream payload %+v", p)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for stream delivery")
	}
}

func TestDispatcherRoutesRoomFrames(t *testing.T) {
	broker := newFakeBroker()
	rtr := realtime.NewRouter()
	defer rtr.Close()
	streams := NewStreamRegistry()

	ws := newStubSocket()
	conn := realtime.NewConnection("alice", ws)
	rtr.Attach(conn)
	defer rtr.Detach(conn)
	rtr.Join("conv-1", conn)

	startDispatcher(t, broker, rtr, streams)

	broker.events <- port.Event{Channel: RoomChannel("conv-1"), Payload: []byte(`{"type":"receive_message"}`)}

	if got := string(ws.waitForFrame(t)); got != `{"type":"receive_message"}` {
		t.Fatalf("unexpected room frame %q", got)
	}
}

func TestDispatcherDropsEventForAbsentUser(t *testing.T) {
	broker := newFakeBroker()
	rtr := realtime.NewRouter()
	defer rtr.Close()
	streams := NewStreamRegistry()

	startDispatcher(t, broker, rtr, streams)

	env, err := json.Marshal(Envelope{UserID: "nobody", Payload: Payload{Type: TypeNewMessage}})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	// Malformed payloads and events for absent users are both dropped
	// without stopping the loop.
	broker.events <- port.Event{Channel: Channel, Payload: []byte("not json")}
	broker.events <- port.Event{Channel: Channel, Payload: env}

	deadline := time.After(time.Second)
	for len(broker.events) > 0 {
		select {
		case <-deadline:
			t.Fatal("dispatcher stopped consuming events")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// Two dispatchers on one broker stand in for two API processes. A user with
// a live connection on each process must see the notification on both.
func TestNotificationReachesConnectionsOnEveryProcess(t *testing.T) {
	broker := &fanoutBroker{}

	type process struct {
		ws     *stubSocket
		stream <-chan []byte
	}
	var procs []process
	for i := 0; i < 2; i++ {
		rtr := realtime.NewRouter()
		defer rtr.Close()
		streams := NewStreamRegistry()

		ws := newStubSocket()
		conn := realtime.NewConnection("bob", ws)
		rtr.Attach(conn)
		defer rtr.Detach(conn)

		streamCh, remove := streams.Add("bob")
		defer remove()

		startDispatcher(t, broker, rtr, streams)
		procs = append(procs, process{ws: ws, stream: streamCh})
	}

	broker.waitForSubscribers(t, len(procs))

	NewBus(broker).Notify(context.Background(), "bob", Payload{Type: TypeNewMessage, ChatID: "conv-1"})

	for i, proc := range procs {
		var p Payload
		if err := json.Unmarshal(proc.ws.waitForFrame(t), &p); err != nil {
			t.Fatalf("process %d: unmarshal socket frame: %v", i, err)
		}
		if p.Type != TypeNewMessage || p.ChatID != "conv-1" {
			t.Fatalf("process %d: unexpected payload %+v", i, p)
		}
		select {
		case <-proc.stream:
		case <-time.After(time.Second):
			t.Fatalf("process %d: timed out waiting for stream delivery", i)
		}
	}
}

func TestDispatcherSurfacesSubscribeError(t *testing.T) {
	broker := newFakeBroker()
	broker.subErr = errors.New("redis unreachable")

	d := NewDispatcher(broker, realtime.NewRouter(), NewStreamRegistry())
	if err := d.Run(context.Background()); !errors.Is(err, broker.subErr) {
		t.Fatalf("expected subscribe error, got %v", err)
	}
}
