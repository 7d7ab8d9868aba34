package repository

import (
	"errors"
	"fmt"

	"github.com/yukikurage/growmap/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrDeleteObjects is returned when removing map objects fails inside the cascade.
	ErrDeleteObjects = errors.New("map repository: delete objects failed")
	// ErrDeleteJournal is returned when removing logs or harvests fails inside the cascade.
	ErrDeleteJournal = errors.New("map repository: delete journal failed")
)

// GormMapRepository is a GORM implementation of MapRepository
type GormMapRepository struct {
	db *gorm.DB
}

func NewMapRepository(db *gorm.DB) MapRepository {
	return &GormMapRepository{db: db}
}

func (r *GormMapRepository) Create(m *models.GardenMap) error {
	return r.db.Create(m).Error
}

func (r *GormMapRepository) ListByUser(userID uint64) ([]models.GardenMap, error) {
	var maps []models.GardenMap
	if err := r.db.Where("user_id = ?", userID).Order("id").Find(&maps).Error; err != nil {
		return nil, err
	}
	return maps, nil
}

func (r *GormMapRepository) FindOwned(id, userID uint64) (*models.GardenMap, error) {
	var m models.GardenMap
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GormMapRepository) DeleteCascade(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("map_id = ?", id).Delete(&models.MapObject{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDeleteObjects, err)
		}
		if err := tx.Where("map_id = ?", id).Delete(&models.LogEntry{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDeleteJournal, err)
		}
		if err := tx.Where("map_id = ?", id).Delete(&models.HarvestRecord{}).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrDeleteJournal, err)
		}
		return tx.Delete(&models.GardenMap{}, id).Error
	})
}
