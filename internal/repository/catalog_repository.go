package repository

import (
	"github.com/yukikurage/growmap/internal/models"
	"gorm.io/gorm"
)

// GormCatalogRepository is a GORM implementation of CatalogRepository
type GormCatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &GormCatalogRepository{db: db}
}

func (r *GormCatalogRepository) ListPlants() ([]models.PlantCatalogEntry, error) {
	var plants []models.PlantCatalogEntry
	if err := r.db.Order("name").Find(&plants).Error; err != nil {
		return nil, err
	}
	return plants, nil
}

func (r *GormCatalogRepository) FindPlant(id uint64) (*models.PlantCatalogEntry, error) {
	var plant models.PlantCatalogEntry
	if err := r.db.First(&plant, id).Error; err != nil {
		return nil, err
	}
	return &plant, nil
}

func (r *GormCatalogRepository) ListCompat() ([]models.PlantCompatPair, error) {
	var pairs []models.PlantCompatPair
	if err := r.db.Order("plant_a, plant_b").Find(&pairs).Error; err != nil {
		return nil, err
	}
	return pairs, nil
}

func (r *GormCatalogRepository) FindCompat(plantA, plantB string) (*models.PlantCompatPair, error) {
	var pair models.PlantCompatPair
	err := r.db.
		Where("(plant_a = ? AND plant_b = ?) OR (plant_a = ? AND plant_b = ?)", plantA, plantB, plantB, plantA).
		Order("id").
		First(&pair).Error
	if err != nil {
		return nil, err
	}
	return &pair, nil
}
