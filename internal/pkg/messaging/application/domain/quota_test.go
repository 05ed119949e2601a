package messaging

import (
	"errors"
	"testing"
)

func TestAllowSendUnderAllowance(t *testing.T) {
	for sent := 0; sent < FreeMessageAllowance; sent++ {
		if err := AllowSend(false, sent); err != nil {
			t.Fatalf("expected send %d to be allowed, got %v", sent+1, err)
		}
	}
}

func TestAllowSendAtAllowance(t *testing.T) {
	err := AllowSend(false, FreeMessageAllowance)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestAllowSendBookingLiftsLimit(t *testing.T) {
	if err := AllowSend(true, FreeMessageAllowance); err != nil {
		t.Fatalf("expected accepted booking to lift the limit, got %v", err)
	}
	if err := AllowSend(true, FreeMessageAllowance*10); err != nil {
		t.Fatalf("expected accepted booking to lift the limit, got %v", err)
	}
}
