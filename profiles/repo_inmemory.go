package profiles

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/botwire/go-wa-gateway/internal/errors"
)

var _ Repo = (*InMemoryRepo)(nil)

// InMemoryRepo is a thread-safe in-memory implementation of the Repo interface
type InMemoryRepo struct {
	mu       sync.RWMutex
	profiles map[string]*Profile
}

func NewInMemoryRepo() *InMemoryRepo {
	return &InMemoryRepo{
		profiles: make(map[string]*Profile),
	}
}

func (r *InMemoryRepo) Upsert(profile *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	copied := *profile
	r.profiles[profile.ID] = &copied
	return nil
}

func (r *InMemoryRepo) Delete(profileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, profileID)
	return nil
}

func (r *InMemoryRepo) Get(profileID string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[profileID]
	if !ok || !profile.Available {
		return nil, apperrors.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *InMemoryRepo) GetByEmail(email string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, profile := range r.profiles {
		if profile.Email == email && profile.Available {
			copied := *profile
			return &copied, nil
		}
	}
	return nil, apperrors.ErrProfileNotFound
}

func (r *InMemoryRepo) List(offset, limit int) ([]*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Profile, 0, len(r.profiles))
	for _, profile := range r.profiles {
		if !profile.Available {
			continue
		}
		copied := *profile
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
