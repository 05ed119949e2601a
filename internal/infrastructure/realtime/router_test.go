package realtime

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSocket struct {
	mu     sync.Mutex
	frames [][]byte
	wrote  chan struct{}
	closed bool
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{wrote: make(chan struct{}, 16)}
}

func (f *fakeSocket) SetWriteDeadline(t time.Time) error { return nil }

func (f *fakeSocket) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	f.frames = append(f.frames, data)
	f.mu.Unlock()
	select {
	case f.wrote <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeSocket) WriteControl(messageType int, data []byte, deadline time.Time) error {
	return nil
}

func (f *fakeSocket) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeSocket) waitForFrame(t *testing.T) []byte {
	t.Helper()
	select {
	case <-f.wrote:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a frame")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames[len(f.frames)-1]
}

func TestAttachAutoJoinsUserRoom(t *testing.T) {
	r := NewRouter()
	defer r.Close()

	ws := newFakeSocket()
	conn := NewConnection("alice", ws)
	r.Attach(conn)

	if delivered := r.Broadcast(UserRoom("alice"), []byte("hello")); delivered != 1 {
		t.Fatalf("expected 1 delivery to the private room, got %d", delivered)
	}
	if got := string(ws.waitForFrame(t)); got != "hello" {
		t.Fatalf("expected frame %q, got %q", "hello", got)
	}
}

func TestMultipleSessionsPerUser(t *testing.T) {
	r := NewRouter()
	defer r.Close()

	tab1 := NewConnection("alice", newFakeSocket())
	tab2 := NewConnection("alice", newFakeSocket())
	r.Attach(tab1)
	r.Attach(tab2)

	if delivered := r.NotifyUser("alice", []byte("ping")); delivered != 2 {
		t.Fatalf("expected both tabs to receive, got %d", delivered)
	}

	r.Detach(tab1)
	if delivered := r.NotifyUser("alice", []byte("ping")); delivered != 1 {
		t.Fatalf("expected 1 delivery after detach, got %d", delivered)
	}
}

func TestJoinAndBroadcast(t *testing.T) {
	r := NewRouter()
	defer r.Close()

	alice := NewConnection("alice", newFakeSocket())
	bob := NewConnection("bob", newFakeSocket())
	carol := NewConnection("carol", newFakeSocket())
	for _, conn := range []*Connection{alice, bob, carol} {
		r.Attach(conn)
	}

	r.Join("conv-1", alice)
	r.Join("conv-1", bob)

	if delivered := r.Broadcast("conv-1", []byte("hi")); delivered != 2 {
		t.Fatalf("expected 2 room deliveries, got %d", delivered)
	}

	r.Leave("conv-1", bob)
	if delivered := r.Broadcast("conv-1", []byte("hi again")); delivered != 1 {
		t.Fatalf("expected 1 delivery after leave, got %d", delivered)
	}
}

func TestBroadcastEmptyRoom(t *testing.T) {
	r := NewRouter()
	defer r.Close()

	if delivered := r.Broadcast("nobody-home", []byte("hello?")); delivered != 0 {
		t.Fatalf("expected 0 deliveries, got %d", delivered)
	}
}

func TestDetachCleansUpRooms(t *testing.T) {
	r := NewRouter()
	defer r.Close()

	conn := NewConnection("alice", newFakeSocket())
	r.Attach(conn)
	r.Join("conv-1", conn)

	r.Detach(conn)

	if delivered := r.Broadcast("conv-1", []byte("gone")); delivered != 0 {
		t.Fatalf("expected no deliveries after detach, got %d", delivered)
	}
	if delivered := r.Broadcast(UserRoom("alice"), []byte("gone")); delivered != 0 {
		t.Fatalf("expected empty private room after detach, got %d", delivered)
	}

	// Joining after detach must not resurrect the session.
	r.Join("conv-2", conn)
	if delivered := r.Broadcast("conv-2", []byte("still gone")); delivered != 0 {
		t.Fatalf("expected detached session to stay out, got %d", delivered)
	}
}

func TestSendAfterClose(t *testing.T) {
	ws := newFakeSocket()
	conn := NewConnection("alice", ws)
	conn.Close(1000, "bye")

	if err := conn.Send([]byte("late")); !errors.Is(err, ErrConnectionClosed) {
		t.Fatalf("Send after Close returned %v, want ErrConnectionClosed", err)
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if !ws.closed {
		t.Fatal("expected underlying socket closed")
	}
}
