package booking

import (
	"errors"
	"time"
)

// Status is the booking lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var (
	ErrInvalidStatus = errors.New("booking: invalid status update")
	ErrNotFound      = errors.New("booking: not found")
)

// Booking links a customer and a provider for a paid appointment. Only the
// status transitions and the resulting notifications live in this service;
// search, pricing and payment are handled elsewhere.
type Booking struct {
	ID              string
	CustomerID      string
	ProviderID      string
	StartTime       time.Time
	EndTime         time.Time
	MeetingLocation string
	TotalPrice      int64
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ValidStatusUpdate reports whether s is a status a caller may move an
// existing booking to. Pending is the creation state, never a target.
func ValidStatusUpdate(s Status) bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}
