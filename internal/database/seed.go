package database

import (
	"fmt"

	"github.com/yukikurage/growmap/internal/models"
	"gorm.io/gorm"
)

// PlantCatalogSeed is the reference catalog inserted into an empty plant_catalog.
var PlantCatalogSeed = []models.PlantCatalogEntry{
	{Name: "Tomato", BedType: models.BedTypeBed, WaterNeed: "medium", SunNeed: "high", FrostSensitive: true, HeatSensitive: true, AvgYield: 3.5, YieldUnit: "kg"},
	{Name: "Potato", BedType: models.BedTypeBed, WaterNeed: "medium", SunNeed: "high", FrostSensitive: true, HeatSensitive: false, AvgYield: 4.0, YieldUnit: "kg"},
	{Name: "Cucumber", BedType: models.BedTypeBed, WaterNeed: "high", SunNeed: "medium", FrostSensitive: true, HeatSensitive: true, AvgYield: 2.8, YieldUnit: "kg"},
	{Name: "Pepper", BedType: models.BedTypeBed, WaterNeed: "medium", SunNeed: "high", FrostSensitive: true, HeatSensitive: true, AvgYield: 1.6, YieldUnit: "kg"},
	{Name: "Strawberry", BedType: models.BedTypeBed, WaterNeed: "medium", SunNeed: "high", FrostSensitive: true, HeatSensitive: true, AvgYield: 1.2, YieldUnit: "kg"},
	{Name: "Basil", BedType: models.BedTypePot, WaterNeed: "medium", SunNeed: "high", FrostSensitive: false, HeatSensitive: true, AvgYield: 0.3, YieldUnit: "kg"},
	{Name: "Rosemary", BedType: models.BedTypePot, WaterNeed: "low", SunNeed: "high", FrostSensitive: false, HeatSensitive: true, AvgYield: 0.2, YieldUnit: "kg"},
}

// PlantCompatSeed is stored directionally; lookups check both orderings.
var PlantCompatSeed = []models.PlantCompatPair{
	{PlantA: "Tomato", PlantB: "Potato", Level: models.CompatBad, Note: "Tomato and potato are prone to shared diseases."},
	{PlantA: "Cucumber", PlantB: "Tomato", Level: models.CompatWarn, Note: "Cucumber prefers more moisture than tomato."},
	{PlantA: "Pepper", PlantB: "Tomato", Level: models.CompatGood, Note: "Pepper and tomato have similar care needs."},
	{PlantA: "Strawberry", PlantB: "Rosemary", Level: models.CompatGood, Note: "Rosemary helps deter pests near strawberry."},
}

func seedPlantCatalog(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&models.PlantCatalogEntry{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count plant catalog: %w", err)
	}
	if count > 0 {
		return nil
	}

	rows := make([]models.PlantCatalogEntry, len(PlantCatalogSeed))
	copy(rows, PlantCatalogSeed)
	return tx.Create(&rows).Error
}

func seedPlantCompat(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&models.PlantCompatPair{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count plant compat: %w", err)
	}
	if count > 0 {
		return nil
	}

	rows := make([]models.PlantCompatPair, len(PlantCompatSeed))
	copy(rows, PlantCompatSeed)
	return tx.Create(&rows).Error
}
