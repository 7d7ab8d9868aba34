package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/growmap/internal/models"
	"github.com/yukikurage/growmap/internal/repository"
	"gorm.io/gorm"
)

var ErrCompatNotFound = errors.New("no compatibility data for this pair")

// CatalogService serves the seeded plant catalog and compatibility pairs.
type CatalogService struct {
	catalog repository.CatalogRepository
}

func NewCatalogService(catalog repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalog: catalog}
}

func (s *CatalogService) ListPlants() ([]models.PlantCatalogEntry, error) {
	plants, err := s.catalog.ListPlants()
	if err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", err)
	}
	return plants, nil
}

func (s *CatalogService) ListCompat() ([]models.PlantCompatPair, error) {
	pairs, err := s.catalog.ListCompat()
	if err != nil {
		return nil, fmt.Errorf("failed to list compatibility: %w", err)
	}
	return pairs, nil
}

// Compat looks up a pair regardless of the order it was stored in.
func (s *CatalogService) Compat(plantA, plantB string) (*models.PlantCompatPair, error) {
	plantA, plantB = strings.TrimSpace(plantA), strings.TrimSpace(plantB)
	if plantA == "" || plantB == "" {
		return nil, invalidInput("both plant names are required")
	}

	pair, err := s.catalog.FindCompat(plantA, plantB)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCompatNotFound
		}
		return nil, fmt.Errorf("failed to find compatibility: %w", err)
	}
	return pair, nil
}
