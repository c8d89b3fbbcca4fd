// Package transportfakes provides a scriptable in-memory transport used by
// session tests: tests dial through FakeDialer and fire lifecycle events on
// the resulting FakeClient by hand.
package transportfakes

import (
	"context"
	"errors"
	"sync"

	"github.com/botwire/go-wa-gateway/credentials"
	"github.com/botwire/go-wa-gateway/transport"
)

var _ transport.Dialer = (*FakeDialer)(nil)

type FakeDialer struct {
	lock    sync.Mutex
	clients []*FakeClient
	dialErr error
}

func NewFakeDialer() *FakeDialer {
	return &FakeDialer{}
}

func (d *FakeDialer) Dial(_ context.Context, profileID string, creds credentials.Bundle, events transport.Events) (transport.Client, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	client := &FakeClient{
		ProfileID: profileID,
		Creds:     creds,
		events:    events,
	}
	d.clients = append(d.clients, client)
	return client, nil
}

// FailDialsWith makes subsequent Dial calls return err.
func (d *FakeDialer) FailDialsWith(err error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.dialErr = err
}

func (d *FakeDialer) DialCount() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return len(d.clients)
}

func (d *FakeDialer) LastClient() *FakeClient {
	d.lock.Lock()
	defer d.lock.Unlock()
	if len(d.clients) == 0 {
		return nil
	}
	return d.clients[len(d.clients)-1]
}

// OpenClients returns the dialled clients that have not been closed.
func (d *FakeDialer) OpenClients() []*FakeClient {
	d.lock.Lock()
	defer d.lock.Unlock()
	var open []*FakeClient
	for _, c := range d.clients {
		if !c.Closed() {
			open = append(open, c)
		}
	}
	return open
}

var _ transport.Client = (*FakeClient)(nil)

type SentMessage struct {
	Destination string
	Text        string
}

type FakeClient struct {
	ProfileID string
	Creds     credentials.Bundle

	events transport.Events

	lock      sync.Mutex
	sent      []SentMessage
	sendErr   error
	closed    bool
	loggedOut bool
}

func (c *FakeClient) SendText(_ context.Context, destination, text string) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.closed {
		return errors.New("client closed")
	}
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, SentMessage{Destination: destination, Text: text})
	return nil
}

func (c *FakeClient) Logout(_ context.Context) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.loggedOut = true
	return nil
}

func (c *FakeClient) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.closed = true
	return nil
}

func (c *FakeClient) FailSendsWith(err error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.sendErr = err
}

func (c *FakeClient) Sent() []SentMessage {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]SentMessage(nil), c.sent...)
}

func (c *FakeClient) Closed() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.closed
}

func (c *FakeClient) LoggedOut() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.loggedOut
}

// EmitQR simulates the transport issuing a pairing code.
func (c *FakeClient) EmitQR(code string) {
	c.events.QRIssued(code)
}

// EmitOpened simulates the connection becoming message-capable.
func (c *FakeClient) EmitOpened() {
	c.events.Opened()
}

// EmitClosed simulates the connection closing for the given reason. The
// client is dead from that point on, as a real transport would be.
func (c *FakeClient) EmitClosed(reason transport.CloseReason) {
	c.lock.Lock()
	c.closed = true
	c.lock.Unlock()
	c.events.Closed(reason)
}

// EmitCredentials simulates a refreshed credential snapshot.
func (c *FakeClient) EmitCredentials(bundle credentials.Bundle) {
	c.events.CredentialsUpdated(bundle)
}
