package flows

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/botwire/go-wa-gateway/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu    sync.RWMutex
	flows map[string]*Flow
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		flows: make(map[string]*Flow),
	}
}

func (r *InMemoryRepo) Upsert(flow *Flow) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if flow.ID == "" {
		flow.ID = uuid.New().String()
	}
	copied := *flow
	r.flows[flow.ID] = &copied
	return nil
}

func (r *InMemoryRepo) Delete(flowID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flows, flowID)
	return nil
}

func (r *InMemoryRepo) Get(flowID string) (*Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	flow, ok := r.flows[flowID]
	if !ok || !flow.Available {
		return nil, apperrors.ErrFlowNotFound
	}
	copied := *flow
	return &copied, nil
}

func (r *InMemoryRepo) List(offset, limit int) ([]*Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Flow, 0, len(r.flows))
	for _, flow := range r.flows {
		if !flow.Available {
			continue
		}
		copied := *flow
		list = append(list, &copied)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	})

	if offset >= len(list) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(list) {
		end = len(list)
	}
	return list[offset:end], nil
}
