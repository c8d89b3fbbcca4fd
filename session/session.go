// Package session implements the lifecycle engine for one profile's
// messaging connection: an explicit state machine with a pairing-attempt
// ceiling, credential persistence and a bounded reconnect policy, plus the
// registry that guarantees one live session per profile.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/botwire/go-wa-gateway/credentials"
	apperrors "github.com/botwire/go-wa-gateway/internal/errors"
	"github.com/botwire/go-wa-gateway/transport"
)

// State names one position in the session lifecycle.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateAwaitingScan State = "awaiting-scan"
	StateConnected    State = "connected"
	StateLoggedOut    State = "logged-out"
)

// Status is a point-in-time snapshot of a session, safe to expose directly.
type Status struct {
	ProfileID   string    `json:"profile_id"`
	State       State     `json:"status"`
	QRAvailable bool      `json:"qrAvailable"`
	QRAttempts  int       `json:"qrGenerationAttempts"`
	Timestamp   time.Time `json:"timestamp"`
}

// StatusPublisher pushes connection/QR changes to the chatbot status store.
// Implementations must not block on failures; publishing is best-effort.
type StatusPublisher interface {
	PublishConnected(profileID string, connected bool)
	PublishQR(profileID string, qr string)
}

// Session owns one profile's transport handle, credential bundle and
// lifecycle state. All transitions are serialized behind a single mutex;
// transport events carry the epoch of the dial that produced them, and
// events from a superseded dial are dropped.
type Session struct {
	profileID string
	store     credentials.Store
	dialer    transport.Dialer
	publisher StatusPublisher
	policy    ReconnectPolicy
	log       zerolog.Logger
	nowTime   func() time.Time

	mu         sync.Mutex
	state      State
	currentQR  string
	qrAttempts int
	epoch      uint64
	client     transport.Client
	reconnect  *time.Timer
	resetDone  chan struct{}
}

// Option modifies a Session at construction time.
type Option func(*Session)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Session) {
		s.nowTime = nowFunc
	}
}

func New(profileID string, store credentials.Store, dialer transport.Dialer, publisher StatusPublisher, policy ReconnectPolicy, logger zerolog.Logger, options ...Option) *Session {
	s := &Session{
		profileID: profileID,
		store:     store,
		dialer:    dialer,
		publisher: publisher,
		policy:    policy,
		log:       logger.With().Str("profile_id", profileID).Logger(),
		nowTime:   time.Now,
		state:     StateDisconnected,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Status reports the current state. It never fails and has no side effects.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		ProfileID:   s.profileID,
		State:       s.state,
		QRAvailable: s.currentQR != "",
		QRAttempts:  s.qrAttempts,
		Timestamp:   s.nowTime(),
	}
}

// Connect moves a disconnected session into Connecting: it loads the stored
// credential bundle and dials the transport. The handshake itself completes
// asynchronously through transport events. Calling Connect on a session that
// is already connecting or connected is a no-op.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateConnecting, StateAwaitingScan, StateConnected:
		s.mu.Unlock()
		return nil
	}
	s.epoch++
	epoch := s.epoch
	s.state = StateConnecting
	s.currentQR = ""
	s.mu.Unlock()

	creds, err := s.store.Load(s.profileID)
	if err != nil {
		// A fresh pairing is still possible without the bundle.
		s.log.Err(err).Msg("Failed to load credential bundle, starting fresh pairing")
		creds = nil
	}

	client, err := s.dialer.Dial(ctx, s.profileID, creds, s.events(epoch))

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		// Superseded by a reset while dialing; discard the late connection.
		if client != nil {
			_ = client.Close()
		}
		return nil
	}
	if err != nil {
		s.state = StateDisconnected
		return errors.Wrap(err, "[Session Connect] transport dial")
	}
	s.client = client
	return nil
}

// CurrentQR returns the pairing code for the profile. When no code has been
// issued yet and attempts remain, it forces a reset once so the transport
// starts a fresh pairing; the code may still be empty until the transport
// issues it. Once the attempt ceiling is reached it fails closed with
// ErrQRUnavailable until a forced reset.
func (s *Session) CurrentQR(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.qrAttempts >= s.policy.MaxQRAttempts {
		s.mu.Unlock()
		return "", apperrors.ErrQRUnavailable
	}
	if s.state == StateAwaitingScan && s.currentQR != "" {
		qr := s.currentQR
		s.mu.Unlock()
		return qr, nil
	}
	if s.state == StateConnecting || s.state == StateConnected {
		// A handshake is in flight or the profile is already paired; forcing
		// a reset here would tear down a healthy transport on every poll.
		s.mu.Unlock()
		return "", nil
	}
	s.mu.Unlock()

	if err := s.ForceReset(ctx); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentQR, nil
}

// ForceReset tears down any live transport, deletes the credential bundle,
// clears the pairing counters and re-initiates the connection. Concurrent
// calls are idempotent: a second caller waits for the in-flight reset
// instead of racing a second teardown.
func (s *Session) ForceReset(ctx context.Context) error {
	s.mu.Lock()
	if s.resetDone != nil {
		done := s.resetDone
		s.mu.Unlock()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	done := make(chan struct{})
	s.resetDone = done

	// Bumping the epoch supersedes any in-flight dial and pending events;
	// the stopped timer can no longer race a second transport instance.
	s.epoch++
	if s.reconnect != nil {
		s.reconnect.Stop()
		s.reconnect = nil
	}
	old := s.client
	s.client = nil
	s.state = StateDisconnected
	s.currentQR = ""
	s.qrAttempts = 0
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.resetDone = nil
		s.mu.Unlock()
		close(done)
	}()

	// Teardown is best-effort: a transport that refuses to die cleanly must
	// not block the new connection.
	if old != nil {
		if err := old.Logout(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Logout of previous transport failed")
		}
		if err := old.Close(); err != nil {
			s.log.Warn().Err(err).Msg("Close of previous transport failed")
		}
	}
	if err := s.store.Delete(s.profileID); err != nil {
		s.log.Err(err).Msg("Failed to delete credential bundle")
	}

	s.log.Info().Msg("Session reset, re-initiating connection")
	return s.Connect(ctx)
}

// Send forwards a text message over the live transport. It fails with
// ErrNotConnected unless the session is Connected.
func (s *Session) Send(ctx context.Context, destination, text string) error {
	s.mu.Lock()
	client := s.client
	state := s.state
	s.mu.Unlock()

	if state != StateConnected || client == nil {
		return apperrors.ErrNotConnected
	}
	if err := client.SendText(ctx, destination, text); err != nil {
		return errors.Wrap(err, "[Session Send] transport send")
	}
	return nil
}

// Close tears the session down without touching the credential bundle.
// Used on profile removal and process shutdown.
func (s *Session) Close() {
	s.mu.Lock()
	s.epoch++
	if s.reconnect != nil {
		s.reconnect.Stop()
		s.reconnect = nil
	}
	client := s.client
	s.client = nil
	s.state = StateDisconnected
	s.currentQR = ""
	s.mu.Unlock()

	if client != nil {
		if err := client.Close(); err != nil {
			s.log.Warn().Err(err).Msg("Close of transport failed")
		}
	}
}

func (s *Session) events(epoch uint64) transport.Events {
	return transport.Events{
		QRIssued: func(code string) { s.handleQRIssued(epoch, code) },
		Opened:   func() { s.handleOpened(epoch) },
		Closed:   func(reason transport.CloseReason) { s.handleClosed(epoch, reason) },
		CredentialsUpdated: func(bundle credentials.Bundle) {
			s.handleCredentialsUpdated(epoch, bundle)
		},
	}
}

// handleQRIssued applies the Connecting -> AwaitingScan transition. The
// attempt counter increments exactly once per issued code; reads never
// touch it.
func (s *Session) handleQRIssued(epoch uint64, code string) {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	s.state = StateAwaitingScan
	s.currentQR = code
	s.qrAttempts++
	attempts := s.qrAttempts
	s.mu.Unlock()

	s.log.Info().Int("qr_attempts", attempts).Msg("Pairing code issued")
	s.publisher.PublishQR(s.profileID, code)
}

// handleOpened applies the transition into Connected: the pairing code is
// cleared and the attempt counter resets to zero.
func (s *Session) handleOpened(epoch uint64) {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	s.state = StateConnected
	s.currentQR = ""
	s.qrAttempts = 0
	s.mu.Unlock()

	s.log.Info().Msg("Connection established")
	s.publisher.PublishConnected(s.profileID, true)
}

// handleClosed reacts to the transport closing. An explicit logout is
// terminal for the credential bundle: the session parks in LoggedOut until
// an operator forces a reset. Any other reason consults the reconnect
// policy.
func (s *Session) handleClosed(epoch uint64, reason transport.CloseReason) {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	s.client = nil
	s.currentQR = ""

	if reason == transport.ReasonLoggedOut {
		s.state = StateLoggedOut
		s.mu.Unlock()
		s.log.Warn().Stringer("reason", reason).Msg("Logged out, automatic reconnect disabled")
		s.publisher.PublishConnected(s.profileID, false)
		return
	}

	decision := s.policy.Decide(reason, s.qrAttempts)
	s.state = StateDisconnected
	if decision.Retry {
		s.scheduleReconnectLocked(decision.Delay)
		s.mu.Unlock()
		s.log.Warn().Stringer("reason", reason).Dur("retry_in", decision.Delay).Msg("Connection closed, reconnect scheduled")
		return
	}
	s.mu.Unlock()

	s.log.Error().Stringer("reason", reason).Msg("Connection closed, giving up")
	s.publisher.PublishConnected(s.profileID, false)
}

// handleCredentialsUpdated persists the refreshed snapshot. Failures are
// logged: the session stays usable, it just cannot resume after a restart.
func (s *Session) handleCredentialsUpdated(epoch uint64, bundle credentials.Bundle) {
	s.mu.Lock()
	stale := epoch != s.epoch
	s.mu.Unlock()
	if stale {
		return
	}
	if err := s.store.Save(s.profileID, bundle); err != nil {
		s.log.Err(err).Msg("Failed to persist credential bundle")
	}
}

func (s *Session) scheduleReconnectLocked(delay time.Duration) {
	if s.reconnect != nil {
		s.reconnect.Stop()
	}
	epoch := s.epoch
	s.reconnect = time.AfterFunc(delay, func() {
		s.mu.Lock()
		stale := epoch != s.epoch
		s.mu.Unlock()
		if stale {
			return
		}
		if err := s.Connect(context.Background()); err != nil {
			s.log.Err(err).Msg("Scheduled reconnect failed")
		}
	})
}
