package chatbots

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/botwire/go-wa-gateway/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo
// interface, keyed by profile id.
type InMemoryRepo struct {
	mu       sync.RWMutex
	chatbots map[string]*Chatbot
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		chatbots: make(map[string]*Chatbot),
	}
}

func (r *InMemoryRepo) EnsureForProfile(profileID string) (*Chatbot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bot, ok := r.chatbots[profileID]
	if !ok {
		bot = &Chatbot{ID: uuid.New().String(), ProfileID: profileID}
		r.chatbots[profileID] = bot
	}
	return copyChatbot(bot), nil
}

func (r *InMemoryRepo) GetByProfile(profileID string) (*Chatbot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bot, ok := r.chatbots[profileID]
	if !ok {
		return nil, apperrors.ErrChatbotNotFound
	}
	return copyChatbot(bot), nil
}

func (r *InMemoryRepo) SetConnected(profileID string, connected bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bot, ok := r.chatbots[profileID]
	if !ok {
		return apperrors.ErrChatbotNotFound
	}
	bot.Connected = connected
	return nil
}

func (r *InMemoryRepo) SetLastQR(profileID string, qr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bot, ok := r.chatbots[profileID]
	if !ok {
		return apperrors.ErrChatbotNotFound
	}
	bot.QRCode = qr
	return nil
}

func (r *InMemoryRepo) AssignFlow(profileID, flowID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bot, ok := r.chatbots[profileID]
	if !ok {
		return apperrors.ErrChatbotNotFound
	}
	if slices.Contains(bot.FlowIDs, flowID) {
		return nil
	}
	bot.FlowIDs = append(bot.FlowIDs, flowID)
	return nil
}

func copyChatbot(bot *Chatbot) *Chatbot {
	copied := *bot
	copied.FlowIDs = slices.Clone(bot.FlowIDs)
	return &copied
}
