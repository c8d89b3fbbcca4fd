package session

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/botwire/go-wa-gateway/chatbots"
	"github.com/botwire/go-wa-gateway/credentials"
	"github.com/botwire/go-wa-gateway/flows"
	"github.com/botwire/go-wa-gateway/internal/config"
	apperrors "github.com/botwire/go-wa-gateway/internal/errors"
	"github.com/botwire/go-wa-gateway/profiles"
	"github.com/botwire/go-wa-gateway/transport"
)

// Repos holds the repository dependencies for the Manager
type Repos struct {
	Profiles profiles.Repo
	Flows    flows.Repo
	Chatbots chatbots.Repo
}

// Manager is the process-wide registry mapping profile ids to sessions.
// It is the only place sessions are created, which is what structurally
// guarantees at most one live session (and transport) per profile.
type Manager struct {
	repos     Repos
	store     credentials.Store
	dialer    transport.Dialer
	publisher StatusPublisher
	policy    ReconnectPolicy
	maxFlows  int
	log       zerolog.Logger

	lock     sync.RWMutex
	sessions map[string]*Session
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithStatusPublisher overrides the publisher built from the chatbots repo.
func WithStatusPublisher(publisher StatusPublisher) ManagerOption {
	return func(m *Manager) {
		m.publisher = publisher
	}
}

func NewManager(
	repos Repos,
	store credentials.Store,
	dialer transport.Dialer,
	cfg config.SessionConfig,
	logger zerolog.Logger,
	options ...ManagerOption,
) (*Manager, error) {
	if repos.Profiles == nil {
		return nil, errors.New("[NewManager] Profiles repo is required")
	}
	if repos.Flows == nil {
		return nil, errors.New("[NewManager] Flows repo is required")
	}
	if repos.Chatbots == nil {
		return nil, errors.New("[NewManager] Chatbots repo is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] credential store is required")
	}
	if dialer == nil {
		return nil, errors.New("[NewManager] transport dialer is required")
	}

	m := &Manager{
		repos:     repos,
		store:     store,
		dialer:    dialer,
		publisher: chatbots.NewPublisher(repos.Chatbots, logger),
		policy: ReconnectPolicy{
			MaxQRAttempts: cfg.GetMaxQRAttempts(),
			RetryDelay:    cfg.GetReconnectDelay(),
		},
		maxFlows: cfg.GetMaxFlows(),
		log:      logger,
		sessions: make(map[string]*Session),
	}
	for _, option := range options {
		option(m)
	}
	return m, nil
}

// Session returns the session for a profile, constructing and registering
// one on first access. Construction is atomic with respect to concurrent
// callers: two first-time calls for the same profile yield the same
// instance. Unknown profiles are rejected before the registry is touched.
func (m *Manager) Session(profileID string) (*Session, error) {
	if _, err := m.repos.Profiles.Get(profileID); err != nil {
		return nil, apperrors.ErrProfileNotFound
	}

	m.lock.RLock()
	sess, ok := m.sessions[profileID]
	m.lock.RUnlock()
	if ok {
		return sess, nil
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	if sess, ok := m.sessions[profileID]; ok {
		return sess, nil
	}
	if _, err := m.repos.Chatbots.EnsureForProfile(profileID); err != nil {
		return nil, errors.Wrap(err, "[Manager Session] ensure chatbot record")
	}
	sess = New(profileID, m.store, m.dialer, m.publisher, m.policy, m.log)
	m.sessions[profileID] = sess
	return sess, nil
}

// Remove tears down and discards a profile's session along with its stored
// credentials. Used on profile deletion.
func (m *Manager) Remove(profileID string) {
	m.lock.Lock()
	sess := m.sessions[profileID]
	delete(m.sessions, profileID)
	m.lock.Unlock()

	if sess != nil {
		sess.Close()
	}
	if err := m.store.Delete(profileID); err != nil {
		m.log.Err(err).Str("profile_id", profileID).Msg("Failed to delete credential bundle")
	}
}

// Shutdown closes every registered session. Credential bundles are kept so
// sessions resume after the next start.
func (m *Manager) Shutdown() {
	m.lock.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.sessions = make(map[string]*Session)
	m.lock.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
}

// AssignFlow attaches a flow to the profile's chatbot, bounded by the
// configured flow limit.
func (m *Manager) AssignFlow(profileID, flowID string) error {
	if _, err := m.repos.Profiles.Get(profileID); err != nil {
		return apperrors.ErrProfileNotFound
	}
	if _, err := m.repos.Flows.Get(flowID); err != nil {
		return apperrors.ErrFlowNotFound
	}
	bot, err := m.repos.Chatbots.EnsureForProfile(profileID)
	if err != nil {
		return errors.Wrap(err, "[Manager AssignFlow] ensure chatbot record")
	}
	if len(bot.FlowIDs) >= m.maxFlows {
		return apperrors.ErrCapacityExceeded
	}
	if err := m.repos.Chatbots.AssignFlow(profileID, flowID); err != nil {
		return errors.Wrap(err, "[Manager AssignFlow] assign flow")
	}
	return nil
}
