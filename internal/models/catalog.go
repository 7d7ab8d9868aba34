package models

type CompatLevel string

const (
	CompatGood CompatLevel = "good"
	CompatWarn CompatLevel = "warn"
	CompatBad  CompatLevel = "bad"
)

// PlantCatalogEntry is static reference data seeded by a migration.
type PlantCatalogEntry struct {
	ID             uint64  `gorm:"primarykey" json:"id"`
	Name           string  `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	BedType        BedType `gorm:"type:varchar(10);not null" json:"bed_type"`
	WaterNeed      string  `gorm:"type:varchar(10);not null" json:"water_need"`
	SunNeed        string  `gorm:"type:varchar(10);not null" json:"sun_need"`
	FrostSensitive bool    `gorm:"not null" json:"frost_sensitive"`
	HeatSensitive  bool    `gorm:"not null" json:"heat_sensitive"`
	AvgYield       float64 `gorm:"not null" json:"avg_yield"`
	YieldUnit      string  `gorm:"type:varchar(10);not null" json:"yield_unit"`
}

func (PlantCatalogEntry) TableName() string {
	return "plant_catalog"
}

// PlantCompatPair is stored directionally as (PlantA, PlantB).
type PlantCompatPair struct {
	ID     uint64      `gorm:"primarykey" json:"id"`
	PlantA string      `gorm:"type:varchar(100);not null;index" json:"plant_a"`
	PlantB string      `gorm:"type:varchar(100);not null;index" json:"plant_b"`
	Level  CompatLevel `gorm:"type:varchar(10);not null" json:"level"`
	Note   string      `gorm:"type:text;not null" json:"note"`
}

func (PlantCompatPair) TableName() string {
	return "plant_compat"
}
