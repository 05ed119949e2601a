package port

import "context"

// Email is one outbound message. Template names select the body layout;
// Data fills template placeholders.
type Email struct {
	To       string
	Subject  string
	Template string
	Data     map[string]string
}

// Mailer delivers outbound email. Implementations must be safe for
// concurrent use by queue workers.
type Mailer interface {
	Send(ctx context.Context, e Email) error
}
