package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/ctfground/ctf-service/internal/models"
	"github.com/ctfground/ctf-service/internal/repositories"
	"github.com/ctfground/ctf-service/internal/security"
	"github.com/ctfground/ctf-service/internal/validator"
)

type userService struct {
	repo          repositories.Repository
	confirmations ConfirmationService
	validator     *validator.Validator
	logger        *slog.Logger
}

func NewUserService(repo repositories.Repository, confirmations ConfirmationService, v *validator.Validator, logger *slog.Logger) UserService {
	return &userService{
		repo:          repo,
		confirmations: confirmations,
		validator:     v,
		logger:        logger,
	}
}

func (s *userService) Create(ctx context.Context, actor *models.User, req *CreateUserRequest) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if err := CanCreateUser(actor, req.Permission); err != nil {
		return nil, err
	}

	taken, err := s.repo.User().ExistsByName(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrNameTaken
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:       req.Name,
		Password:   hash,
		Permission: req.Permission,
	}
	if err := s.repo.User().Create(ctx, user); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", "user_id", user.ID, "permission", user.Permission)
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.User().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, skip, limit int) ([]*models.User, error) {
	users, err := s.repo.User().List(ctx, repositories.UserFilters{Offset: skip, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) Update(ctx context.Context, actor *models.User, id uint, req *UpdateUserRequest, codes ConfirmationCodes) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	target, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := CanUpdateUser(actor, target, req.Permission); err != nil {
		return nil, err
	}
	if actor.ID != target.ID && (req.Email != nil || req.Password != nil) {
		return nil, NewPermissionError(actor.ID, target.ID, "user", "update", "email and password can only be changed by the account owner")
	}

	consume, err := s.verifySensitiveChanges(ctx, target, req, codes)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != target.Name {
		taken, err := s.repo.User().ExistsByName(ctx, *req.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return nil, ErrNameTaken
		}
		target.Name = *req.Name
	}
	if req.Email != nil && (target.Email == nil || *target.Email != *req.Email) {
		taken, err := s.repo.User().ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
		address := *req.Email
		target.Email = &address
	}
	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		target.Password = hash
	}
	if req.Permission != nil {
		target.Permission = *req.Permission
	}

	if err := s.repo.User().Update(ctx, target); err != nil {
		if repositories.IsDuplicateKeyError(err) {
			if req.Email != nil {
				return nil, ErrEmailTaken
			}
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	for _, c := range consume {
		if err := s.confirmations.Invalidate(ctx, c.email, c.purpose); err != nil {
			s.logger.Error("failed to consume confirmation", "email", c.email, "purpose", c.purpose, "error", err)
		}
	}

	s.logger.Info("user updated", "user_id", target.ID, "actor_id", actor.ID)
	return target, nil
}

type consumedCode struct {
	email   string
	purpose models.ConfirmationPurpose
}

// verifySensitiveChanges checks the confirmation codes an email or
// password change requires. Nothing is consumed here; a change that
// needs two codes must not eat the first when the second is bad. The
// returned list is consumed after the update is persisted.
func (s *userService) verifySensitiveChanges(ctx context.Context, target *models.User, req *UpdateUserRequest, codes ConfirmationCodes) ([]consumedCode, error) {
	var consume []consumedCode

	emailChanged := req.Email != nil && (target.Email == nil || *target.Email != *req.Email)
	if emailChanged {
		if target.HasEmail() {
			// Rebinding needs proof of both mailboxes: MODIFY on the old
			// address and BIND on the new one.
			if codes.Primary == nil || codes.Secondary == nil {
				return nil, ErrBadEmailToken
			}
			if err := s.confirmations.Verify(ctx, *target.Email, models.PurposeModify, *codes.Primary); err != nil {
				return nil, err
			}
			if err := s.confirmations.Verify(ctx, *req.Email, models.PurposeBind, *codes.Secondary); err != nil {
				return nil, err
			}
			consume = append(consume,
				consumedCode{*target.Email, models.PurposeModify},
				consumedCode{*req.Email, models.PurposeBind})
		} else {
			if codes.Primary == nil {
				return nil, ErrBadEmailToken
			}
			if err := s.confirmations.Verify(ctx, *req.Email, models.PurposeBind, *codes.Primary); err != nil {
				return nil, err
			}
			consume = append(consume, consumedCode{*req.Email, models.PurposeBind})
		}
	}

	if req.Password != nil {
		if !target.HasEmail() {
			return nil, ErrEmailUnbound
		}
		// A rebinding in the same request already proved MODIFY on the
		// current address, so only check it once.
		if !emailChanged {
			if codes.Primary == nil {
				return nil, ErrBadEmailToken
			}
			if err := s.confirmations.Verify(ctx, *target.Email, models.PurposeModify, *codes.Primary); err != nil {
				return nil, err
			}
			consume = append(consume, consumedCode{*target.Email, models.PurposeModify})
		}
	}

	return consume, nil
}

func (s *userService) Delete(ctx context.Context, actor *models.User, id uint) error {
	target, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := CanDeleteUser(actor, target); err != nil {
		return err
	}
	if err := s.repo.User().Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.logger.Info("user deleted", "user_id", id, "actor_id", actor.ID)
	return nil
}

func (s *userService) Rank(ctx context.Context, skip, limit int) ([]*models.RankEntry, error) {
	entries, err := s.repo.User().Rank(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build rank: %w", err)
	}
	return entries, nil
}

// ExportRank writes the full ranking into an xlsx workbook.
func (s *userService) ExportRank(ctx context.Context) ([]byte, error) {
	entries, err := s.repo.User().Rank(ctx, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to build rank: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Rank"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headers := []interface{}{"Rank", "ID", "Name", "Total Score"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, entry := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{i + 1, entry.ID, entry.Name, entry.TotalScore}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
