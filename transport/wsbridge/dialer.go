// Package wsbridge binds the transport contract to an external protocol
// bridge over a websocket. The bridge process owns the actual messaging
// wire protocol; this side exchanges JSON envelopes for pairing, lifecycle
// and outbound sends.
package wsbridge

import (
	"context"
	"net/url"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/botwire/go-wa-gateway/credentials"
	"github.com/botwire/go-wa-gateway/transport"
)

var _ transport.Dialer = (*Dialer)(nil)

type Dialer struct {
	baseURL string
	log     zerolog.Logger
}

// NewDialer creates a dialer against a bridge base URL
// (e.g. "ws://localhost:9090").
func NewDialer(baseURL string, logger zerolog.Logger) *Dialer {
	return &Dialer{baseURL: baseURL, log: logger}
}

func (d *Dialer) Dial(ctx context.Context, profileID string, creds credentials.Bundle, events transport.Events) (transport.Client, error) {
	endpoint, err := sessionURL(d.baseURL, profileID)
	if err != nil {
		return nil, errors.Wrap(err, "[Dialer Dial] build session URL")
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "[Dialer Dial] dial bridge %s", endpoint)
	}

	c := newClient(conn, events, d.log.With().Str("profile_id", profileID).Logger())

	// The bridge resumes from the last credential snapshot; an empty bundle
	// starts a fresh pairing and the bridge answers with a QR envelope.
	if err := c.writeEnvelope(envelope{Type: typeInit, Credentials: creds}); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "[Dialer Dial] send init envelope")
	}

	go c.readLoop()
	return c, nil
}

func sessionURL(baseURL, profileID string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	u.Path, err = url.JoinPath(u.Path, "session", profileID)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

const (
	typeInit   = "init"
	typeQR     = "qr"
	typeOpen   = "open"
	typeClose  = "close"
	typeCreds  = "creds"
	typeSend   = "send"
	typeLogout = "logout"
)

// envelope is the JSON frame exchanged with the bridge, in both directions.
type envelope struct {
	Type        string `json:"type"`
	Code        string `json:"code,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Credentials []byte `json:"credentials,omitempty"`
	Destination string `json:"destination,omitempty"`
	Text        string `json:"text,omitempty"`
}

func closeReason(reason string) transport.CloseReason {
	switch reason {
	case "logged-out":
		return transport.ReasonLoggedOut
	case "connection-lost":
		return transport.ReasonConnectionLost
	case "server-restart":
		return transport.ReasonServerRestart
	case "stream-error":
		return transport.ReasonStreamError
	default:
		return transport.ReasonUnknown
	}
}
