package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ctfground/ctf-service/internal/models"
	"github.com/ctfground/ctf-service/internal/repositories"
)

type ConfirmationPostgreSQL struct {
	db *gorm.DB
}

func NewConfirmationPostgreSQL(db *gorm.DB) repositories.ConfirmationRepository {
	return &ConfirmationPostgreSQL{db: db}
}

// Upsert replaces any existing row for (email, option) and resets its
// timestamp; last write wins.
func (c *ConfirmationPostgreSQL) Upsert(ctx context.Context, confirmation *models.Confirmation) error {
	if confirmation.CreateTime.IsZero() {
		confirmation.CreateTime = time.Now()
	}
	return c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}, {Name: "option"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "create_time"}),
	}).Create(confirmation).Error
}

func (c *ConfirmationPostgreSQL) GetValid(ctx context.Context, email string, option models.ConfirmationPurpose, window time.Duration) (*models.Confirmation, error) {
	cutoff := time.Now().Add(-window)
	var confirmation models.Confirmation
	err := c.db.WithContext(ctx).
		Where("email = ? AND option = ? AND create_time > ?", email, option, cutoff).
		First(&confirmation).Error
	if err != nil {
		return nil, err
	}
	return &confirmation, nil
}

func (c *ConfirmationPostgreSQL) Delete(ctx context.Context, email string, option models.ConfirmationPurpose) error {
	return c.db.WithContext(ctx).
		Where("email = ? AND option = ?", email, option).
		Delete(&models.Confirmation{}).Error
}
