package notification

import "sync"

// streamBuffer bounds how many undelivered events a single stream may hold.
// A stream that falls further behind loses events, per the no-replay model.
const streamBuffer = 16

// StreamRegistry tracks the open notification streams (SSE connections)
// this process owns, keyed by user id. Multiple streams per user are
// allowed. Purely process-local; never persisted.
type StreamRegistry struct {
	mu      sync.RWMutex
	streams map[string]map[chan []byte]struct{}
}

func NewStreamRegistry() *StreamRegistry {
	return &StreamRegistry{streams: make(map[string]map[chan []byte]struct{})}
}

// Add registers a new stream for the user and returns its receive channel
// plus a remove function. Remove is idempotent and closes the channel.
func (r *StreamRegistry) Add(userID string) (<-chan []byte, func()) {
	ch := make(chan []byte, streamBuffer)

	r.mu.Lock()
	set := r.streams[userID]
	if set == nil {
		set = make(map[chan []byte]struct{})
		r.streams[userID] = set
	}
	set[ch] = struct{}{}
	r.mu.Unlock()

	var once sync.Once
	remove := func() {
		once.Do(func() {
			r.mu.Lock()
			if set := r.streams[userID]; set != nil {
				delete(set, ch)
				if len(set) == 0 {
					delete(r.streams, userID)
				}
			}
			r.mu.Unlock()
			close(ch)
		})
	}
	return ch, remove
}

// Deliver writes payload to every open stream of the user. Streams that
// cannot keep up are skipped; a user with no streams is a silent no-op.
// It reports how many streams accepted the event.
func (r *StreamRegistry) Deliver(userID string, payload []byte) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for ch := range r.streams[userID] {
		select {
		case ch <- payload:
			delivered++
		default:
		}
	}
	return delivered
}

// Count reports how many streams the user currently holds on this process.
func (r *StreamRegistry) Count(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.streams[userID])
}
