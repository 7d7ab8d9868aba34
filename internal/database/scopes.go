package database

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/growmap/internal/utils"
)

// Paginate limits a query to one page.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// NewestFirst orders by each column descending, e.g. NewestFirst("created_at", "id").
func NewestFirst(columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(columns) == 0 {
			return db
		}
		return db.Order(strings.Join(columns, " DESC, ") + " DESC")
	}
}
