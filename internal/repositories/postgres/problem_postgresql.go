package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ctfground/ctf-service/internal/cache"
	"github.com/ctfground/ctf-service/internal/models"
	"github.com/ctfground/ctf-service/internal/repositories"
)

type ProblemPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewProblemPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ProblemRepository {
	return &ProblemPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (p *ProblemPostgreSQL) Create(ctx context.Context, problem *models.Problem) error {
	return p.db.WithContext(ctx).Create(problem).Error
}

func (p *ProblemPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Problem, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var problem models.Problem

	err := p.cacheManager.Problem.CacheOrExecute(ctx, cacheKey, &problem, cache.ProblemCacheConfig.TTL, func() (interface{}, error) {
		var row models.Problem
		if err := p.db.WithContext(ctx).First(&row, id).Error; err != nil {
			return nil, err
		}
		return &row, nil
	})
	if err != nil {
		return nil, err
	}
	return &problem, nil
}

func (p *ProblemPostgreSQL) GetByIDForUpdate(ctx context.Context, id uint) (*models.Problem, error) {
	var problem models.Problem
	err := p.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&problem, id).Error
	if err != nil {
		return nil, err
	}
	return &problem, nil
}

func (p *ProblemPostgreSQL) GetByName(ctx context.Context, name string) (*models.Problem, error) {
	var problem models.Problem
	if err := p.db.WithContext(ctx).Where("name = ?", name).First(&problem).Error; err != nil {
		return nil, err
	}
	return &problem, nil
}

func (p *ProblemPostgreSQL) List(ctx context.Context, filters repositories.ProblemFilters) ([]*models.Problem, error) {
	var problems []*models.Problem
	query := p.db.WithContext(ctx).Model(&models.Problem{}).Order("id")
	query = applyPagination(query, filters.Offset, filters.Limit)
	if err := query.Find(&problems).Error; err != nil {
		return nil, err
	}
	return problems, nil
}

func (p *ProblemPostgreSQL) Update(ctx context.Context, problem *models.Problem) error {
	if err := p.db.WithContext(ctx).Save(problem).Error; err != nil {
		return err
	}
	cache.InvalidateProblemCache(ctx, p.cacheManager, problem.ID)
	return nil
}

func (p *ProblemPostgreSQL) Delete(ctx context.Context, id uint) error {
	err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("problem_id = ?", id).Delete(&models.UserProblemLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Problem{}, id).Error
	})
	if err != nil {
		return err
	}
	cache.InvalidateProblemCache(ctx, p.cacheManager, id)
	return nil
}

func (p *ProblemPostgreSQL) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&models.Problem{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (p *ProblemPostgreSQL) HasSolve(ctx context.Context, userID, problemID uint) (bool, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&models.UserProblemLink{}).
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		Count(&count).Error
	return count > 0, err
}

func (p *ProblemPostgreSQL) CreateSolve(ctx context.Context, userID, problemID uint) error {
	link := &models.UserProblemLink{UserID: userID, ProblemID: problemID}
	if err := p.db.WithContext(ctx).Create(link).Error; err != nil {
		return err
	}
	cache.InvalidateRankCache(ctx, p.cacheManager)
	return nil
}
