package wsbridge

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/botwire/go-wa-gateway/credentials"
	"github.com/botwire/go-wa-gateway/transport"
)

var _ transport.Client = (*client)(nil)

type client struct {
	conn   *websocket.Conn
	events transport.Events
	log    zerolog.Logger

	writeLock sync.Mutex

	closeLock sync.Mutex
	closed    bool
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, events transport.Events, logger zerolog.Logger) *client {
	return &client{conn: conn, events: events, log: logger}
}

// readLoop pumps bridge envelopes into the transport event callbacks until
// the connection ends. A read error on a connection we did not close locally
// is reported as a lost connection.
func (c *client) readLoop() {
	for {
		var env envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if !c.isClosed() {
				c.log.Warn().Err(err).Msg("Bridge connection read failed")
				c.emitClosed(transport.ReasonConnectionLost)
			}
			return
		}

		switch env.Type {
		case typeQR:
			if c.events.QRIssued != nil {
				c.events.QRIssued(env.Code)
			}
		case typeOpen:
			if c.events.Opened != nil {
				c.events.Opened()
			}
		case typeCreds:
			if c.events.CredentialsUpdated != nil {
				c.events.CredentialsUpdated(credentials.Bundle(env.Credentials))
			}
		case typeClose:
			c.emitClosed(closeReason(env.Reason))
			return
		default:
			c.log.Warn().Str("envelope_type", env.Type).Msg("Unknown bridge envelope")
		}
	}
}

func (c *client) SendText(_ context.Context, destination, text string) error {
	err := c.writeEnvelope(envelope{Type: typeSend, Destination: destination, Text: text})
	if err != nil {
		return errors.Wrap(err, "[client SendText] write send envelope")
	}
	return nil
}

func (c *client) Logout(_ context.Context) error {
	err := c.writeEnvelope(envelope{Type: typeLogout})
	if err != nil {
		return errors.Wrap(err, "[client Logout] write logout envelope")
	}
	return nil
}

func (c *client) Close() error {
	c.closeLock.Lock()
	c.closed = true
	c.closeLock.Unlock()
	return c.conn.Close()
}

func (c *client) writeEnvelope(env envelope) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	return c.conn.WriteJSON(env)
}

func (c *client) isClosed() bool {
	c.closeLock.Lock()
	defer c.closeLock.Unlock()
	return c.closed
}

func (c *client) emitClosed(reason transport.CloseReason) {
	c.closeOnce.Do(func() {
		if c.events.Closed != nil {
			c.events.Closed(reason)
		}
	})
}
