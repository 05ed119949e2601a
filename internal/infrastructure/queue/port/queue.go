package port

import (
	"context"
	"time"
)

// Task is a background job: a stable type identifier plus opaque payload
// bytes. Payload encoding is up to the callers; the queue never inspects it.
type Task struct {
	Type    string
	Payload []byte
}

// Handler processes a Task. Returning a non-nil error requests a retry per
// the adapter's policy, so handlers must be idempotent.
type Handler func(ctx context.Context, task Task) error

// EnqueueOption controls enqueue behavior. Zero values mean "unspecified";
// adapters map supported fields to the backend as best-effort.
type EnqueueOption struct {
	Queue     string        // logical queue name
	ProcessIn time.Duration // delay before processing
	MaxRetry  int           // max retries for the task
	UniqueTTL time.Duration // enforce uniqueness within the TTL window
}

// Client enqueues tasks for background processing.
type Client interface {
	Enqueue(ctx context.Context, t Task, opts ...EnqueueOption) (id string, err error)
	Close() error
}

// Server runs background workers. Run blocks until the context is canceled,
// then shuts down gracefully.
type Server interface {
	Register(taskType string, h Handler)
	Run(ctx context.Context) error
}
