package notification

import "time"

// Type tags the closed set of notification payload variants.
type Type string

const (
	TypeNewMessage     Type = "NEW_MESSAGE"
	TypeBookingUpdate  Type = "BOOKING_UPDATE"
	TypeBookingRequest Type = "BOOKING_REQUEST"
	TypeLimitReached   Type = "LIMIT_REACHED"
	// TypeConnected is the initial acknowledgement frame on the SSE stream.
	TypeConnected Type = "connected"
)

// Payload is one user-facing notification event. Only fields relevant to
// the variant are set; the JSON encoding omits the rest.
type Payload struct {
	Type    Type       `json:"type"`
	Message string     `json:"message,omitempty"`
	Link    string     `json:"link,omitempty"`
	ChatID  string     `json:"chatId,omitempty"`
	SentAt  *time.Time `json:"sentAt,omitempty"`
}

// Envelope is the wire format on the shared notifications channel: which
// user the event targets plus the payload itself. Whichever process holds
// that user's live connections delivers it locally.
type Envelope struct {
	UserID  string  `json:"userId"`
	Payload Payload `json:"payload"`
}
