package services

import (
	"context"

	"github.com/ctfground/ctf-service/internal/models"
	"github.com/ctfground/ctf-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateUserRequest = validator.UserCreateRequest
type UpdateUserRequest = validator.UserUpdateRequest
type CreateProblemRequest = validator.ProblemCreateRequest
type UpdateProblemRequest = validator.ProblemUpdateRequest
type SubmitAnswerRequest = validator.SubmitAnswerRequest
type SendEmailRequest = validator.SendEmailRequest

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type SubmitAnswerResponse struct {
	Status models.SubmissionStatus `json:"status"`
}

// ConfirmationCodes carries the confirmation codes a client attached to
// a sensitive update. Primary comes from the "email-token" header,
// Secondary from "email-token1" (only the old-email-to-new-email change
// needs both).
type ConfirmationCodes struct {
	Primary   *string
	Secondary *string
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	// Authenticate resolves account (username or email) and checks the
	// password. When account is an email and password looks like a
	// 6-digit code, a live LOGIN confirmation code is accepted and
	// consumed before falling back to the stored password.
	Authenticate(ctx context.Context, account, password string) (*models.User, error)
	IssueToken(user *models.User) (*TokenResponse, error)
	// ResolveUser maps a bearer token back to its user row.
	ResolveUser(ctx context.Context, token string) (*models.User, error)
}

type UserService interface {
	Create(ctx context.Context, actor *models.User, req *CreateUserRequest) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	List(ctx context.Context, skip, limit int) ([]*models.User, error)
	Update(ctx context.Context, actor *models.User, id uint, req *UpdateUserRequest, codes ConfirmationCodes) (*models.User, error)
	Delete(ctx context.Context, actor *models.User, id uint) error

	Rank(ctx context.Context, skip, limit int) ([]*models.RankEntry, error)
	// ExportRank renders the full ranking as an xlsx workbook.
	ExportRank(ctx context.Context) ([]byte, error)
}

type ProblemService interface {
	Create(ctx context.Context, actor *models.User, req *CreateProblemRequest) (*models.Problem, error)
	GetByID(ctx context.Context, actor *models.User, id uint) (*models.Problem, error)
	List(ctx context.Context, actor *models.User, skip, limit int) ([]*models.Problem, error)
	Update(ctx context.Context, actor *models.User, id uint, req *UpdateProblemRequest) (*models.Problem, error)
	Delete(ctx context.Context, actor *models.User, id uint) error

	// SubmitAnswer scores an answer for (userID, problemID). userID must
	// match the actor.
	SubmitAnswer(ctx context.Context, actor *models.User, userID, problemID uint, req *SubmitAnswerRequest) (models.SubmissionStatus, error)
}

type ConfirmationService interface {
	// Issue creates a fresh code for (email, purpose) and publishes the
	// delivery event. Fails with ErrConfirmationPending while a live
	// code exists.
	Issue(ctx context.Context, email string, purpose models.ConfirmationPurpose) error
	// Verify checks a code without consuming it.
	Verify(ctx context.Context, email string, purpose models.ConfirmationPurpose, code string) error
	// Invalidate removes the code for (email, purpose) if present.
	Invalidate(ctx context.Context, email string, purpose models.ConfirmationPurpose) error
}
