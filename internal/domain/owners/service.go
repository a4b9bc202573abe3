package owners

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"animal-registry/internal/domain/animals"

	"github.com/google/uuid"
)

// ErrInvalidInput y ErrNotFound envuelven los de animals para que el alta de
// dueños en un animal los clasifique igual (400 / 404) y no como falla remota.
var (
	ErrInvalidInput  = fmt.Errorf("owner: %w", animals.ErrInvalidInput)
	ErrNotFound      = fmt.Errorf("owner %w", animals.ErrNotFound)
	ErrAlreadyExists = errors.New("owner already exists")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) Register(ctx context.Context, username, name string) (Owner, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return Owner{}, ErrInvalidInput
	}

	o := Owner{
		ID:        uuid.New(),
		Username:  username,
		Name:      strings.TrimSpace(name),
		CreatedAt: s.now(),
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return Owner{}, err
	}
	return o, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (Owner, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return Owner{}, ErrInvalidInput
	}
	return s.repo.GetByUsername(ctx, username)
}

// OwnerIDByUsername implementa animals.OwnerResolver.
func (s *Service) OwnerIDByUsername(ctx context.Context, username string) (uuid.UUID, error) {
	o, err := s.GetByUsername(ctx, username)
	if err != nil {
		return uuid.Nil, err
	}
	return o.ID, nil
}

func (s *Service) List(ctx context.Context) ([]Owner, error) {
	return s.repo.List(ctx)
}

// NormalizeUsername: trim + lower. Repos guardan siempre la forma normalizada.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
