package session

import (
	"time"

	"github.com/botwire/go-wa-gateway/transport"
)

// Decision is the outcome of consulting the reconnect policy after a close:
// either retry after a fixed delay or give up and stay disconnected.
type Decision struct {
	Retry bool
	Delay time.Duration
}

// ReconnectPolicy decides whether a closed connection may be re-established.
// An explicit logout never retries; any other reason retries with a fixed
// delay while the pairing attempt ceiling has not been reached. Reconnects
// share the QR attempt ceiling so a profile cannot loop forever between
// transient drops.
type ReconnectPolicy struct {
	MaxQRAttempts int
	RetryDelay    time.Duration
}

func (p ReconnectPolicy) Decide(reason transport.CloseReason, qrAttempts int) Decision {
	if reason == transport.ReasonLoggedOut {
		return Decision{}
	}
	if qrAttempts >= p.MaxQRAttempts {
		return Decision{}
	}
	return Decision{Retry: true, Delay: p.RetryDelay}
}
