package messaging

import "errors"

// FreeMessageAllowance is how many messages a sender may post into a single
// conversation before an accepted booking with the other participant is
// required.
const FreeMessageAllowance = 5

// ErrQuotaExceeded is the Usage Gate denial, surfaced to clients as code
// LIMIT_REACHED. Not fatal: an accepted booking lifts it.
var ErrQuotaExceeded = errors.New("messaging: free message limit reached")

// AllowSend is the usage-gating policy. An accepted booking between the two
// parties (in either direction) allows unconditionally; otherwise the sender
// may post while under the free allowance for this conversation. Pure: the
// caller supplies the booking fact and the sender's current message count,
// both read fresh on every send attempt.
func AllowSend(hasAcceptedBooking bool, sentBySender int) error {
	if hasAcceptedBooking {
		return nil
	}
	if sentBySender >= FreeMessageAllowance {
		return ErrQuotaExceeded
	}
	return nil
}
