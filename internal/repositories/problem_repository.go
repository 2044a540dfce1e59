package repositories

import (
	"context"

	"github.com/ctfground/ctf-service/internal/models"
)

// ProblemFilters bounds list queries.
type ProblemFilters struct {
	Limit  int
	Offset int
}

type ProblemRepository interface {
	Create(ctx context.Context, problem *models.Problem) error
	GetByID(ctx context.Context, id uint) (*models.Problem, error)
	// GetByIDForUpdate loads the row under a row lock, bypassing the
	// cache. Only valid inside WithTransaction.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Problem, error)
	GetByName(ctx context.Context, name string) (*models.Problem, error)
	List(ctx context.Context, filters ProblemFilters) ([]*models.Problem, error)
	Update(ctx context.Context, problem *models.Problem) error
	Delete(ctx context.Context, id uint) error

	ExistsByName(ctx context.Context, name string) (bool, error)

	// Solve link operations. CreateSolve must fail with a duplicate-key
	// error when the (user, problem) row already exists so concurrent
	// first-solves cannot double-decay the score.
	HasSolve(ctx context.Context, userID, problemID uint) (bool, error)
	CreateSolve(ctx context.Context, userID, problemID uint) error
}
