package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/growmap/internal/models"
	"github.com/yukikurage/growmap/internal/utils"
	"gorm.io/gorm"
)

func TestScopes(t *testing.T) {
	db := openTestDB(t).Session(&gorm.Session{DryRun: true})

	var entries []models.LogEntry
	stmt := db.Scopes(
		NewestFirst("created_at", "id"),
		Paginate(utils.PaginationParams{Page: 3, Limit: 10, Offset: 20}),
	).Find(&entries).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, "ORDER BY created_at DESC, id DESC")
	assert.Contains(t, sql, "LIMIT 10")
	assert.Contains(t, sql, "OFFSET 20")
}
