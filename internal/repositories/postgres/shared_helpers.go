package postgres

import (
	"gorm.io/gorm"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

func applyPagination(query *gorm.DB, offset, limit int) *gorm.DB {
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return query.Limit(limit)
}
