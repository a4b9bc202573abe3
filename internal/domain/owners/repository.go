package owners

import "context"

type Repository interface {
	Create(ctx context.Context, o Owner) error
	GetByUsername(ctx context.Context, username string) (Owner, error)
	List(ctx context.Context) ([]Owner, error)
}
