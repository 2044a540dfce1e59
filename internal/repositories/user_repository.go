package repositories

import (
	"context"

	"github.com/ctfground/ctf-service/internal/models"
)

// UserFilters bounds list queries.
type UserFilters struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filters UserFilters) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error

	ExistsByName(ctx context.Context, name string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Rank returns users ordered by the summed current score of their
	// solved problems, highest first. A non-positive limit returns the
	// whole ranking.
	Rank(ctx context.Context, skip, limit int) ([]*models.RankEntry, error)
}
