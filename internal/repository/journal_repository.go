package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/growmap/internal/database"
	"github.com/yukikurage/growmap/internal/models"
	"github.com/yukikurage/growmap/internal/utils"
	"gorm.io/gorm"
)

var (
	// ErrCreateHarvest is returned when inserting the harvest row fails.
	ErrCreateHarvest = errors.New("journal repository: create harvest failed")
	// ErrCreateHarvestLog is returned when inserting the paired log entry fails.
	ErrCreateHarvestLog = errors.New("journal repository: create harvest log failed")
)

const harvestRowColumns = `harvests.*,
	map_objects.name AS object_name,
	plant_catalog.name AS plant_name,
	plant_catalog.avg_yield AS avg_yield,
	plant_catalog.yield_unit AS yield_unit`

// GormJournalRepository is a GORM implementation of JournalRepository
type GormJournalRepository struct {
	db *gorm.DB
}

func NewJournalRepository(db *gorm.DB) JournalRepository {
	return &GormJournalRepository{db: db}
}

func (r *GormJournalRepository) CreateLog(entry *models.LogEntry) error {
	return r.db.Create(entry).Error
}

func applyFilter(query *gorm.DB, table string, filter JournalFilter) *gorm.DB {
	query = query.Where(table+".user_id = ?", filter.UserID)
	if filter.MapID != nil {
		query = query.Where(table+".map_id = ?", *filter.MapID)
	}
	return query
}

func (r *GormJournalRepository) ListLogs(filter JournalFilter, params utils.PaginationParams) ([]models.LogEntry, int64, error) {
	query := applyFilter(r.db.Model(&models.LogEntry{}), "logs", filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.LogEntry
	err := query.
		Scopes(database.NewestFirst("created_at", "id"), database.Paginate(params)).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *GormJournalRepository) CreateHarvestWithLog(harvest *models.HarvestRecord, entry *models.LogEntry) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(harvest).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateHarvest, err)
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateHarvestLog, err)
		}
		return nil
	})
}

func (r *GormJournalRepository) harvestRows() *gorm.DB {
	return r.db.Table("harvests").
		Select(harvestRowColumns).
		Joins("LEFT JOIN map_objects ON map_objects.id = harvests.plant_object_id").
		Joins("LEFT JOIN plant_catalog ON plant_catalog.id = map_objects.plant_id")
}

func (r *GormJournalRepository) ListHarvests(filter JournalFilter) ([]HarvestRow, error) {
	var rows []HarvestRow
	err := applyFilter(r.harvestRows(), "harvests", filter).
		Scopes(database.NewestFirst("harvests.harvested_at", "harvests.id")).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormJournalRepository) FindHarvestOwned(id, userID uint64) (*models.HarvestRecord, error) {
	var harvest models.HarvestRecord
	err := r.db.
		Joins("JOIN maps ON maps.id = harvests.map_id").
		Where("harvests.id = ? AND maps.user_id = ?", id, userID).
		First(&harvest).Error
	if err != nil {
		return nil, err
	}
	return &harvest, nil
}

func (r *GormJournalRepository) DeleteHarvest(id uint64) error {
	return r.db.Delete(&models.HarvestRecord{}, id).Error
}

func (r *GormJournalRepository) WateringTimes(filter JournalFilter, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := applyFilter(r.db.Model(&models.LogEntry{}), "logs", filter).
		Where("logs.action_type = ? AND logs.created_at >= ?", models.ActionWatering, since).
		Pluck("logs.created_at", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (r *GormJournalRepository) HarvestsSince(filter JournalFilter, sinceDate string) ([]HarvestRow, error) {
	var rows []HarvestRow
	err := applyFilter(r.harvestRows(), "harvests", filter).
		Where("harvests.harvested_at >= ?", sinceDate).
		Order("harvests.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
