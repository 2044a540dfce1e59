package repositories

import (
	"context"
	"time"

	"github.com/ctfground/ctf-service/internal/models"
)

type ConfirmationRepository interface {
	// Upsert inserts or replaces the row keyed by (email, option),
	// resetting its timestamp (last write wins).
	Upsert(ctx context.Context, confirmation *models.Confirmation) error

	// GetValid returns the row only while it is inside the validity
	// window; expired rows are skipped, not deleted.
	GetValid(ctx context.Context, email string, option models.ConfirmationPurpose, window time.Duration) (*models.Confirmation, error)

	Delete(ctx context.Context, email string, option models.ConfirmationPurpose) error
}
