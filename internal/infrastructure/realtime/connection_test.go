package realtime

import (
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// Deliveries from the dispatcher goroutine can race the socket handler's
// deferred teardown; neither side may panic.
func TestSendRacingCloseDoesNotPanic(t *testing.T) {
	for i := 0; i < 200; i++ {
		conn := NewConnection("alice", newFakeSocket())
		conn.Start()

		var wg sync.WaitGroup
		for s := 0; s < 4; s++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 8; j++ {
					_ = conn.Send([]byte("payload"))
				}
			}()
		}
		conn.Close(websocket.CloseNormalClosure, "bye")
		wg.Wait()
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	ws := newFakeSocket()
	conn := NewConnection("alice", ws)
	conn.Start()

	conn.Close(websocket.CloseNormalClosure, "bye")
	conn.Close(websocket.CloseNormalClosure, "again")

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if !ws.closed {
		t.Fatal("underlying socket was not closed")
	}
}
