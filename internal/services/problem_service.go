package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ctfground/ctf-service/internal/models"
	"github.com/ctfground/ctf-service/internal/repositories"
	"github.com/ctfground/ctf-service/internal/validator"
)

type problemService struct {
	repo      repositories.Repository
	validator *validator.Validator
	logger    *slog.Logger
}

func NewProblemService(repo repositories.Repository, v *validator.Validator, logger *slog.Logger) ProblemService {
	return &problemService{
		repo:      repo,
		validator: v,
		logger:    logger,
	}
}

func (s *problemService) Create(ctx context.Context, actor *models.User, req *CreateProblemRequest) (*models.Problem, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := CanCreateProblem(actor); err != nil {
		return nil, err
	}

	taken, err := s.repo.Problem().ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check problem name: %w", err)
	}
	if taken {
		return nil, ErrProblemNameTaken
	}

	problem := &models.Problem{
		OwnerID:      actor.ID,
		Name:         req.Name,
		Description:  req.Description,
		Answer:       req.Answer,
		ScoreInitial: req.ScoreInitial,
		ScoreNow:     req.ScoreInitial,
	}
	if err := s.repo.Problem().Create(ctx, problem); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrProblemNameTaken
		}
		return nil, fmt.Errorf("failed to create problem: %w", err)
	}

	s.logger.Info("problem created", "problem_id", problem.ID, "owner_id", actor.ID, "score", problem.ScoreInitial)
	return problem, nil
}

func (s *problemService) GetByID(ctx context.Context, actor *models.User, id uint) (*models.Problem, error) {
	problem, err := s.getProblem(ctx, id)
	if err != nil {
		return nil, err
	}
	if ShouldRedactAnswer(actor) {
		problem.Redact()
	}
	return problem, nil
}

func (s *problemService) List(ctx context.Context, actor *models.User, skip, limit int) ([]*models.Problem, error) {
	problems, err := s.repo.Problem().List(ctx, repositories.ProblemFilters{Offset: skip, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list problems: %w", err)
	}
	if ShouldRedactAnswer(actor) {
		for _, p := range problems {
			p.Redact()
		}
	}
	return problems, nil
}

func (s *problemService) Update(ctx context.Context, actor *models.User, id uint, req *UpdateProblemRequest) (*models.Problem, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	problem, err := s.getProblem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CanModifyProblem(actor, problem, "update"); err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != problem.Name {
		taken, err := s.repo.Problem().ExistsByName(ctx, *req.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check problem name: %w", err)
		}
		if taken {
			return nil, ErrProblemNameTaken
		}
		problem.Name = *req.Name
	}
	if req.Description != nil {
		problem.Description = req.Description
	}
	if req.Answer != nil {
		problem.Answer = req.Answer
	}
	if req.ScoreInitial != nil && *req.ScoreInitial != problem.ScoreInitial {
		// Keep the decay progress: the current score scales in proportion
		// to the new initial score.
		problem.ScoreNow = problem.ScoreNow * *req.ScoreInitial / problem.ScoreInitial
		problem.ScoreInitial = *req.ScoreInitial
	}

	if err := s.repo.Problem().Update(ctx, problem); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrProblemNameTaken
		}
		return nil, fmt.Errorf("failed to update problem: %w", err)
	}

	s.logger.Info("problem updated", "problem_id", problem.ID, "actor_id", actor.ID)
	return problem, nil
}

func (s *problemService) Delete(ctx context.Context, actor *models.User, id uint) error {
	problem, err := s.getProblem(ctx, id)
	if err != nil {
		return err
	}
	if err := CanModifyProblem(actor, problem, "delete"); err != nil {
		return err
	}
	if err := s.repo.Problem().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete problem: %w", err)
	}
	s.logger.Info("problem deleted", "problem_id", id, "actor_id", actor.ID)
	return nil
}

var errAlreadySolved = errors.New("already solved")

func (s *problemService) SubmitAnswer(ctx context.Context, actor *models.User, userID, problemID uint, req *SubmitAnswerRequest) (models.SubmissionStatus, error) {
	if err := s.validator.Validate(req); err != nil {
		return "", err
	}
	if actor.ID != userID {
		return "", NewPermissionError(actor.ID, problemID, "problem", "submit_answer", "cannot answer for another user")
	}

	problem, err := s.getProblem(ctx, problemID)
	if err != nil {
		return "", err
	}

	if problem.Answer == nil || *problem.Answer != req.Answer {
		return models.SubmissionWrong, nil
	}

	solved, err := s.repo.Problem().HasSolve(ctx, userID, problemID)
	if err != nil {
		return "", fmt.Errorf("failed to check solve: %w", err)
	}
	if solved {
		return models.SubmissionAccepted, nil
	}

	err = s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		// The solve link is the arbiter: its composite key makes the
		// second insert of a concurrent pair fail, so only one request
		// applies the decay.
		if err := tx.Problem().CreateSolve(ctx, userID, problemID); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return errAlreadySolved
			}
			return fmt.Errorf("failed to record solve: %w", err)
		}

		locked, err := tx.Problem().GetByIDForUpdate(ctx, problemID)
		if err != nil {
			return fmt.Errorf("failed to lock problem: %w", err)
		}
		if locked.ScoreNow != locked.DecayStep() {
			locked.ScoreNow -= locked.DecayStep()
			if err := tx.Problem().Update(ctx, locked); err != nil {
				return fmt.Errorf("failed to apply decay: %w", err)
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errAlreadySolved) {
		return "", err
	}

	s.logger.Info("answer accepted", "user_id", userID, "problem_id", problemID)
	return models.SubmissionAccepted, nil
}

func (s *problemService) getProblem(ctx context.Context, id uint) (*models.Problem, error) {
	problem, err := s.repo.Problem().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProblemNotFound
		}
		return nil, fmt.Errorf("failed to get problem: %w", err)
	}
	return problem, nil
}
