package wsbridge_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/botwire/go-wa-gateway/credentials"
	"github.com/botwire/go-wa-gateway/transport"
	"github.com/botwire/go-wa-gateway/transport/wsbridge"
)

type bridgeFrame struct {
	Type        string `json:"type"`
	Code        string `json:"code,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Credentials []byte `json:"credentials,omitempty"`
	Destination string `json:"destination,omitempty"`
	Text        string `json:"text,omitempty"`
}

// fakeBridge is an in-process stand-in for the protocol bridge: it accepts
// one websocket session, records every frame the gateway writes and lets the
// test push frames back.
type fakeBridge struct {
	srv      *httptest.Server
	upgrader websocket.Upgrader

	connReady chan struct{}

	lock     sync.Mutex
	conn     *websocket.Conn
	path     string
	received []bridgeFrame
}

func newFakeBridge(t *testing.T) *fakeBridge {
	t.Helper()

	b := &fakeBridge{connReady: make(chan struct{})}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := b.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		b.lock.Lock()
		b.conn = conn
		b.path = r.URL.Path
		b.lock.Unlock()
		close(b.connReady)

		for {
			var frame bridgeFrame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			b.lock.Lock()
			b.received = append(b.received, frame)
			b.lock.Unlock()
		}
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBridge) url() string {
	return "ws" + strings.TrimPrefix(b.srv.URL, "http")
}

func (b *fakeBridge) push(t *testing.T, frame bridgeFrame) {
	t.Helper()
	select {
	case <-b.connReady:
	case <-time.After(time.Second):
		t.Fatal("bridge never received a connection")
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	require.NoError(t, b.conn.WriteJSON(frame))
}

// drop severs the bridge side of the websocket without a close handshake.
// httptest's CloseClientConnections cannot do this: the server stops
// tracking connections once they are hijacked for the websocket upgrade.
func (b *fakeBridge) drop(t *testing.T) {
	t.Helper()
	select {
	case <-b.connReady:
	case <-time.After(time.Second):
		t.Fatal("bridge never received a connection")
	}
	b.lock.Lock()
	defer b.lock.Unlock()
	require.NoError(t, b.conn.Close())
}

func (b *fakeBridge) frames() []bridgeFrame {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]bridgeFrame(nil), b.received...)
}

func (b *fakeBridge) sessionPath() string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.path
}

// recorder collects transport events behind a lock so tests can poll them.
type recorder struct {
	lock    sync.Mutex
	qrCodes []string
	opened  bool
	creds   credentials.Bundle
	closed  *transport.CloseReason
}

func (r *recorder) events() transport.Events {
	return transport.Events{
		QRIssued: func(code string) {
			r.lock.Lock()
			defer r.lock.Unlock()
			r.qrCodes = append(r.qrCodes, code)
		},
		Opened: func() {
			r.lock.Lock()
			defer r.lock.Unlock()
			r.opened = true
		},
		Closed: func(reason transport.CloseReason) {
			r.lock.Lock()
			defer r.lock.Unlock()
			r.closed = &reason
		},
		CredentialsUpdated: func(bundle credentials.Bundle) {
			r.lock.Lock()
			defer r.lock.Unlock()
			r.creds = bundle
		},
	}
}

func (r *recorder) snapshot() recorder {
	r.lock.Lock()
	defer r.lock.Unlock()
	return recorder{
		qrCodes: append([]string(nil), r.qrCodes...),
		opened:  r.opened,
		creds:   r.creds,
		closed:  r.closed,
	}
}

func TestDialSendsInitWithCredentials(t *testing.T) {
	bridge := newFakeBridge(t)
	dialer := wsbridge.NewDialer(bridge.url(), zerolog.Nop())

	rec := &recorder{}
	client, err := dialer.Dial(context.Background(), "p1", credentials.Bundle(`{"keys":"material"}`), rec.events())
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool {
		return len(bridge.frames()) == 1
	}, time.Second, 5*time.Millisecond)

	require.Equal(t, "/session/p1", bridge.sessionPath())
	init := bridge.frames()[0]
	require.Equal(t, "init", init.Type)
	require.Equal(t, []byte(`{"keys":"material"}`), init.Credentials)
}

func TestBridgeEventsReachCallbacks(t *testing.T) {
	bridge := newFakeBridge(t)
	dialer := wsbridge.NewDialer(bridge.url(), zerolog.Nop())

	rec := &recorder{}
	client, err := dialer.Dial(context.Background(), "p1", nil, rec.events())
	require.NoError(t, err)
	defer client.Close()

	bridge.push(t, bridgeFrame{Type: "qr", Code: "ABC"})
	bridge.push(t, bridgeFrame{Type: "open"})
	bridge.push(t, bridgeFrame{Type: "creds", Credentials: []byte(`{"v":1}`)})

	require.Eventually(t, func() bool {
		s := rec.snapshot()
		return len(s.qrCodes) == 1 && s.opened && !s.creds.Empty()
	}, time.Second, 5*time.Millisecond)

	s := rec.snapshot()
	require.Equal(t, []string{"ABC"}, s.qrCodes)
	require.Equal(t, credentials.Bundle(`{"v":1}`), s.creds)
	require.Nil(t, s.closed)
}

func TestCloseFrameMapsReason(t *testing.T) {
	bridge := newFakeBridge(t)
	dialer := wsbridge.NewDialer(bridge.url(), zerolog.Nop())

	rec := &recorder{}
	client, err := dialer.Dial(context.Background(), "p1", nil, rec.events())
	require.NoError(t, err)
	defer client.Close()

	bridge.push(t, bridgeFrame{Type: "close", Reason: "logged-out"})

	require.Eventually(t, func() bool {
		return rec.snapshot().closed != nil
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, transport.ReasonLoggedOut, *rec.snapshot().closed)
}

func TestDroppedConnectionReportsConnectionLost(t *testing.T) {
	bridge := newFakeBridge(t)
	dialer := wsbridge.NewDialer(bridge.url(), zerolog.Nop())

	rec := &recorder{}
	client, err := dialer.Dial(context.Background(), "p1", nil, rec.events())
	require.NoError(t, err)
	defer client.Close()

	bridge.push(t, bridgeFrame{Type: "open"})
	bridge.drop(t)

	require.Eventually(t, func() bool {
		return rec.snapshot().closed != nil
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, transport.ReasonConnectionLost, *rec.snapshot().closed)
}

func TestLocalCloseEmitsNoEvent(t *testing.T) {
	bridge := newFakeBridge(t)
	dialer := wsbridge.NewDialer(bridge.url(), zerolog.Nop())

	rec := &recorder{}
	client, err := dialer.Dial(context.Background(), "p1", nil, rec.events())
	require.NoError(t, err)

	require.NoError(t, client.Close())

	time.Sleep(50 * time.Millisecond)
	require.Nil(t, rec.snapshot().closed)
}

func TestSendAndLogoutWriteEnvelopes(t *testing.T) {
	bridge := newFakeBridge(t)
	dialer := wsbridge.NewDialer(bridge.url(), zerolog.Nop())

	rec := &recorder{}
	client, err := dialer.Dial(context.Background(), "p1", nil, rec.events())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.SendText(context.Background(), "123@s.whatsapp.net", "hi"))
	require.NoError(t, client.Logout(context.Background()))

	require.Eventually(t, func() bool {
		return len(bridge.frames()) == 3 // init, send, logout
	}, time.Second, 5*time.Millisecond)

	frames := bridge.frames()
	require.Equal(t, "send", frames[1].Type)
	require.Equal(t, "123@s.whatsapp.net", frames[1].Destination)
	require.Equal(t, "hi", frames[1].Text)
	require.Equal(t, "logout", frames[2].Type)
}

func TestDialFailsWhenBridgeDown(t *testing.T) {
	bridge := newFakeBridge(t)
	url := bridge.url()
	bridge.srv.Close()

	dialer := wsbridge.NewDialer(url, zerolog.Nop())
	_, err := dialer.Dial(context.Background(), "p1", nil, transport.Events{})
	require.Error(t, err)
}
