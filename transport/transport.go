// Package transport defines the contract between the session engine and the
// real-time messaging protocol client. The gateway never speaks the wire
// protocol itself; it dials a client, reacts to its lifecycle events and
// forwards outbound sends.
package transport

import (
	"context"

	"github.com/botwire/go-wa-gateway/credentials"
)

// CloseReason classifies why a connection closed. Only ReasonLoggedOut is
// terminal for the credential bundle; every other reason is a transient
// disconnect eligible for automatic retry.
type CloseReason int

const (
	ReasonUnknown CloseReason = iota
	ReasonConnectionLost
	ReasonServerRestart
	ReasonStreamError
	ReasonLoggedOut
)

func (r CloseReason) String() string {
	switch r {
	case ReasonConnectionLost:
		return "connection-lost"
	case ReasonServerRestart:
		return "server-restart"
	case ReasonStreamError:
		return "stream-error"
	case ReasonLoggedOut:
		return "logged-out"
	default:
		return "unknown"
	}
}

// Events carries the callbacks a dialled client fires as its connection
// progresses. Callbacks may be invoked from the client's own goroutines;
// the session serializes them internally.
type Events struct {
	// QRIssued fires when the transport needs a new device pairing scan.
	QRIssued func(code string)

	// Opened fires once the connection is authenticated and message-capable.
	Opened func()

	// Closed fires exactly once when the connection ends.
	Closed func(reason CloseReason)

	// CredentialsUpdated fires whenever the transport refreshes the
	// credential snapshot. Each bundle is a full snapshot, not a diff.
	CredentialsUpdated func(bundle credentials.Bundle)
}

// Client is one live protocol connection.
type Client interface {
	SendText(ctx context.Context, destination, text string) error
	Logout(ctx context.Context) error
	Close() error
}

// Dialer opens protocol connections. Dial returns quickly; the handshake
// (pairing code, open, close) is reported asynchronously through Events.
type Dialer interface {
	Dial(ctx context.Context, profileID string, creds credentials.Bundle, events Events) (Client, error)
}
