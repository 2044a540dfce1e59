package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ctfground/ctf-service/internal/email"
	"github.com/ctfground/ctf-service/internal/events"
	"github.com/ctfground/ctf-service/internal/models"
	"github.com/ctfground/ctf-service/internal/repositories"
)

type confirmationService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	window    time.Duration

	now func() time.Time
}

func NewConfirmationService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, window time.Duration) ConfirmationService {
	return &confirmationService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		window:    window,
		now:       time.Now,
	}
}

func (s *confirmationService) Issue(ctx context.Context, address string, purpose models.ConfirmationPurpose) error {
	if !purpose.Valid() {
		return fmt.Errorf("%w: unknown confirmation purpose %q", ErrValidationFailed, purpose)
	}

	existing, err := s.repo.Confirmation().GetValid(ctx, address, purpose, s.window)
	if err != nil && !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to check pending confirmation: %w", err)
	}
	if existing != nil {
		return ErrConfirmationPending
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate confirmation code: %w", err)
	}

	confirmation := &models.Confirmation{
		Email:      address,
		Option:     purpose,
		Token:      code,
		CreateTime: s.now(),
	}
	if err := s.repo.Confirmation().Upsert(ctx, confirmation); err != nil {
		return fmt.Errorf("failed to store confirmation: %w", err)
	}

	subject, body, err := email.ComposeConfirmation(purpose, code)
	if err != nil {
		return err
	}
	if err := s.publisher.PublishEmailRequested(ctx, events.EmailRequested{
		Email:   address,
		Subject: subject,
		Body:    body,
	}); err != nil {
		// Drop the fresh code so the client can ask again instead of
		// being stuck behind a row whose email never went out.
		if delErr := s.repo.Confirmation().Delete(ctx, address, purpose); delErr != nil {
			s.logger.Error("failed to roll back unsent confirmation", "email", address, "purpose", purpose, "error", delErr)
		}
		return fmt.Errorf("failed to publish confirmation email: %w", err)
	}

	s.logger.Info("confirmation issued", "email", address, "purpose", purpose)
	return nil
}

func (s *confirmationService) Verify(ctx context.Context, address string, purpose models.ConfirmationPurpose, code string) error {
	confirmation, err := s.repo.Confirmation().GetValid(ctx, address, purpose, s.window)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrBadEmailToken
		}
		return fmt.Errorf("failed to load confirmation: %w", err)
	}
	if confirmation == nil || confirmation.Token != code {
		return ErrBadEmailToken
	}
	return nil
}

func (s *confirmationService) Invalidate(ctx context.Context, address string, purpose models.ConfirmationPurpose) error {
	err := s.repo.Confirmation().Delete(ctx, address, purpose)
	if err != nil && !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to invalidate confirmation: %w", err)
	}
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
