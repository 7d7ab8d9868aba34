package repository

import (
	"github.com/yukikurage/growmap/internal/models"
	"gorm.io/gorm"
)

// objectWithPlantColumns selects a map object plus its catalog fields.
// Catalog columns are NULL when plant_id is unset.
const objectWithPlantColumns = `map_objects.*,
	plant_catalog.name AS plant_name,
	plant_catalog.water_need AS water_need,
	plant_catalog.sun_need AS sun_need,
	plant_catalog.frost_sensitive AS frost_sensitive,
	plant_catalog.heat_sensitive AS heat_sensitive,
	plant_catalog.avg_yield AS avg_yield,
	plant_catalog.yield_unit AS yield_unit`

// GormObjectRepository is a GORM implementation of ObjectRepository
type GormObjectRepository struct {
	db *gorm.DB
}

func NewObjectRepository(db *gorm.DB) ObjectRepository {
	return &GormObjectRepository{db: db}
}

func (r *GormObjectRepository) Create(obj *models.MapObject) error {
	return r.db.Create(obj).Error
}

func (r *GormObjectRepository) withPlant() *gorm.DB {
	return r.db.Table("map_objects").
		Select(objectWithPlantColumns).
		Joins("LEFT JOIN plant_catalog ON plant_catalog.id = map_objects.plant_id")
}

func (r *GormObjectRepository) FindByID(id uint64) (*models.MapObjectWithPlant, error) {
	var rows []models.MapObjectWithPlant
	if err := r.withPlant().Where("map_objects.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *GormObjectRepository) FindOwned(id, userID uint64) (*models.MapObject, error) {
	var obj models.MapObject
	err := r.db.
		Joins("JOIN maps ON maps.id = map_objects.map_id").
		Where("map_objects.id = ? AND maps.user_id = ?", id, userID).
		First(&obj).Error
	if err != nil {
		return nil, err
	}
	return &obj, nil
}

func (r *GormObjectRepository) ListByMap(mapID uint64) ([]models.MapObjectWithPlant, error) {
	var rows []models.MapObjectWithPlant
	if err := r.withPlant().Where("map_objects.map_id = ?", mapID).Order("map_objects.id").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormObjectRepository) ListPlantsByUser(userID uint64) ([]models.MapObjectWithPlant, error) {
	var rows []models.MapObjectWithPlant
	err := r.withPlant().
		Joins("JOIN maps ON maps.id = map_objects.map_id").
		Where("maps.user_id = ? AND map_objects.plant_id IS NOT NULL", userID).
		Order("map_objects.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormObjectRepository) Delete(id uint64) error {
	return r.db.Delete(&models.MapObject{}, id).Error
}
