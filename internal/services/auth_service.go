package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ctfground/ctf-service/internal/models"
	"github.com/ctfground/ctf-service/internal/repositories"
	"github.com/ctfground/ctf-service/internal/security"
	"github.com/ctfground/ctf-service/internal/validator"
)

type authService struct {
	repo          repositories.Repository
	tokens        *security.TokenService
	confirmations ConfirmationService
	logger        *slog.Logger
}

func NewAuthService(repo repositories.Repository, tokens *security.TokenService, confirmations ConfirmationService, logger *slog.Logger) AuthService {
	return &authService{
		repo:          repo,
		tokens:        tokens,
		confirmations: confirmations,
		logger:        logger,
	}
}

func (s *authService) Authenticate(ctx context.Context, account, password string) (*models.User, error) {
	byEmail := strings.Contains(account, "@")

	var (
		user *models.User
		err  error
	)
	if byEmail {
		user, err = s.repo.User().GetByEmail(ctx, account)
	} else {
		user, err = s.repo.User().GetByName(ctx, account)
	}
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	// An email login with a 6-digit password may be a confirmation code
	// instead of the real password. Codes are single use.
	if byEmail && validator.IsEmailCode(password) {
		if err := s.confirmations.Verify(ctx, account, models.PurposeLogin, password); err == nil {
			if err := s.confirmations.Invalidate(ctx, account, models.PurposeLogin); err != nil {
				return nil, err
			}
			s.logger.Info("login via confirmation code", "user_id", user.ID)
			return user, nil
		}
	}

	if !security.CheckPasswordHash(password, user.Password) {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func (s *authService) IssueToken(user *models.User) (*TokenResponse, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

func (s *authService) ResolveUser(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.User().GetByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, security.ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	return user, nil
}
