package memory

import (
	"context"
	"sort"
	"sync"

	"animal-registry/internal/domain/owners"
)

type ownerRepo struct {
	mu         sync.RWMutex
	byUsername map[string]owners.Owner
}

// NewOwnerRepo arranca con un seed opcional (ver ReadOwnerSeed).
// Un seed con usernames repetidos se queda con el último.
func NewOwnerRepo(seed ...owners.Owner) owners.Repository {
	r := &ownerRepo{
		byUsername: make(map[string]owners.Owner, len(seed)),
	}
	for _, o := range seed {
		o.Username = owners.NormalizeUsername(o.Username)
		if o.Username == "" {
			continue
		}
		r.byUsername[o.Username] = o
	}
	return r
}

func (r *ownerRepo) Create(ctx context.Context, o owners.Owner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := owners.NormalizeUsername(o.Username)
	if key == "" {
		return owners.ErrInvalidInput
	}
	if _, exists := r.byUsername[key]; exists {
		return owners.ErrAlreadyExists
	}
	o.Username = key
	r.byUsername[key] = o
	return nil
}

func (r *ownerRepo) GetByUsername(ctx context.Context, username string) (owners.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byUsername[owners.NormalizeUsername(username)]
	if !ok {
		return owners.Owner{}, owners.ErrNotFound
	}
	return o, nil
}

func (r *ownerRepo) List(ctx context.Context) ([]owners.Owner, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]owners.Owner, 0, len(r.byUsername))
	for _, o := range r.byUsername {
		out = append(out, o)
	}

	// Orden estable por username (el map no tiene orden)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Username < out[j].Username
	})
	return out, nil
}
