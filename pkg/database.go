package pkg

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ctfground/ctf-service/internal/config"
	"github.com/ctfground/ctf-service/internal/models"
)

// InitDatabase opens the postgres pool and migrates the schema.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogLevel := logger.Warn
	if cfg.Environment == "development" {
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.SetupJoinTable(&models.User{}, "Problems", &models.UserProblemLink{}); err != nil {
		return nil, fmt.Errorf("failed to set up solve link table: %w", err)
	}
	if err := db.SetupJoinTable(&models.Problem{}, "Solvers", &models.UserProblemLink{}); err != nil {
		return nil, fmt.Errorf("failed to set up solve link table: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Problem{},
		&models.UserProblemLink{},
		&models.Confirmation{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}
