package services

import (
	"log/slog"
	"time"

	"github.com/ctfground/ctf-service/internal/events"
	"github.com/ctfground/ctf-service/internal/repositories"
	"github.com/ctfground/ctf-service/internal/security"
	"github.com/ctfground/ctf-service/internal/validator"
)

// ServiceManager bundles the service instances behind one constructor so
// main wires dependencies exactly once.
type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Problem() ProblemService
	Confirmation() ConfirmationService
}

type Dependencies struct {
	Repo               repositories.Repository
	Tokens             *security.TokenService
	Publisher          events.EventPublisher
	Validator          *validator.Validator
	Logger             *slog.Logger
	ConfirmationWindow time.Duration
}

type serviceManager struct {
	auth          AuthService
	user          UserService
	problem       ProblemService
	confirmations ConfirmationService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	confirmations := NewConfirmationService(deps.Repo, deps.Publisher, deps.Logger, deps.ConfirmationWindow)
	return &serviceManager{
		auth:          NewAuthService(deps.Repo, deps.Tokens, confirmations, deps.Logger),
		user:          NewUserService(deps.Repo, confirmations, deps.Validator, deps.Logger),
		problem:       NewProblemService(deps.Repo, deps.Validator, deps.Logger),
		confirmations: confirmations,
	}
}

func (m *serviceManager) Auth() AuthService                 { return m.auth }
func (m *serviceManager) User() UserService                 { return m.user }
func (m *serviceManager) Problem() ProblemService           { return m.problem }
func (m *serviceManager) Confirmation() ConfirmationService { return m.confirmations }
