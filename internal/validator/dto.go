package validator

import (
	"github.com/ctfground/ctf-service/internal/models"
)

// UserCreateRequest registers a new account. Email is bound later through
// the confirmation flow, never at registration.
type UserCreateRequest struct {
	Name       string            `json:"name" validate:"required,username"`
	Password   string            `json:"password" validate:"required,userpassword"`
	Permission models.Permission `json:"permission" validate:"min=0,max=2"`
}

// UserUpdateRequest carries a partial user update; nil means unchanged.
type UserUpdateRequest struct {
	Name       *string            `json:"name" validate:"omitempty,username"`
	Email      *string            `json:"email" validate:"omitempty,email"`
	Password   *string            `json:"password" validate:"omitempty,userpassword"`
	Permission *models.Permission `json:"permission" validate:"omitempty,min=0,max=2"`
}

type ProblemCreateRequest struct {
	Name         string  `json:"name" validate:"required,max=64"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	Answer       *string `json:"answer" validate:"omitempty,max=255"`
	ScoreInitial int     `json:"score_initial" validate:"required,min=10,max=10000,score_step"`
}

type ProblemUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=64"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	Answer       *string `json:"answer" validate:"omitempty,max=255"`
	ScoreInitial *int    `json:"score_initial" validate:"omitempty,min=10,max=10000,score_step"`
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" validate:"required"`
}

type SendEmailRequest struct {
	Option models.ConfirmationPurpose `json:"option" validate:"required,oneof=LOGIN BIND MODIFY"`
	Email  string                     `json:"email" validate:"required,email"`
}
