package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ctfground/ctf-service/internal/cache"
	"github.com/ctfground/ctf-service/internal/models"
	"github.com/ctfground/ctf-service/internal/repositories"
)

type UserPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.UserRepository {
	return &UserPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (u *UserPostgreSQL) Create(ctx context.Context, user *models.User) error {
	return u.db.WithContext(ctx).Create(user).Error
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("name = ?", name).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := u.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, error) {
	var users []*models.User
	query := u.db.WithContext(ctx).Model(&models.User{}).Order("id")
	query = applyPagination(query, filters.Offset, filters.Limit)
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (u *UserPostgreSQL) Update(ctx context.Context, user *models.User) error {
	return u.db.WithContext(ctx).Save(user).Error
}

func (u *UserPostgreSQL) Delete(ctx context.Context, id uint) error {
	// The solve links go with the user; their problems keep the decayed
	// scores the user contributed to.
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserProblemLink{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.User{}, id).Error; err != nil {
			return err
		}
		cache.InvalidateRankCache(ctx, u.cacheManager)
		return nil
	})
}

func (u *UserPostgreSQL) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).Model(&models.User{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (u *UserPostgreSQL) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := u.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (u *UserPostgreSQL) Rank(ctx context.Context, skip, limit int) ([]*models.RankEntry, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = -1
	}
	cacheKey := fmt.Sprintf("page:%d:%d", skip, limit)
	var entries []*models.RankEntry

	err := u.cacheManager.Rank.CacheOrExecute(ctx, cacheKey, &entries, cache.RankCacheConfig.TTL, func() (interface{}, error) {
		var rows []*models.RankEntry
		err := u.db.WithContext(ctx).
			Table("userproblemlink").
			Select("users.id AS id, users.name AS name, COALESCE(SUM(problems.score_now), 0) AS total_score").
			Joins("JOIN users ON users.id = userproblemlink.user_id").
			Joins("JOIN problems ON problems.id = userproblemlink.problem_id").
			Group("users.id, users.name").
			Order("total_score DESC").
			Offset(skip).
			Limit(limit).
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to query rank: %w", err)
		}
		return rows, nil
	})
	return entries, err
}
