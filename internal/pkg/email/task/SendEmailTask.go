package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mailport "github.com/ashudev21/rabf-backend/internal/infrastructure/mail/port"
	qport "github.com/ashudev21/rabf-backend/internal/infrastructure/queue/port"
)

// SendEmailTaskType is the queue task name for outbound email.
const SendEmailTaskType = "email:send"

// SendEmailTaskPayload is the JSON payload transported via the queue.
type SendEmailTaskPayload struct {
	Email    string            `json:"email"`
	Subject  string            `json:"subject"`
	Template string            `json:"template"`
	Data     map[string]string `json:"data,omitempty"`
}

// EnqueueSendEmail queues one outbound email on the email queue with a
// short delay and a bounded retry budget.
func EnqueueSendEmail(ctx context.Context, q qport.Client, p SendEmailTaskPayload) error {
	if p.Email == "" {
		return fmt.Errorf("email task: recipient address is required")
	}
	b, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("email task: encode payload: %w", err)
	}
	_, err = q.Enqueue(ctx, qport.Task{Type: SendEmailTaskType, Payload: b}, qport.EnqueueOption{
		Queue:     "email",
		ProcessIn: 3 * time.Second,
		MaxRetry:  3,
	})
	return err
}

// RegisterSendEmailTask binds the email handler to the worker server. The
// handler is idempotent from the queue's point of view: a retried task
// re-sends the same message.
func RegisterSendEmailTask(srv qport.Server, mailer mailport.Mailer) {
	srv.Register(SendEmailTaskType, func(ctx context.Context, t qport.Task) error {
		var p SendEmailTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// Malformed payloads never become deliverable; fail fast.
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		return mailer.Send(ctx, mailport.Email{
			To:       p.Email,
			Subject:  p.Subject,
			Template: p.Template,
			Data:     p.Data,
		})
	})
}
