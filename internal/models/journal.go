package models

import "time"

type ActionType string

const (
	ActionWatering    ActionType = "watering"
	ActionFertilizing ActionType = "fertilizing"
	ActionPlanting    ActionType = "planting"
	ActionPruning     ActionType = "pruning"
	ActionHarvest     ActionType = "harvest"
	ActionNote        ActionType = "note"
)

// ValidActionTypes lists every accepted action_type.
var ValidActionTypes = []ActionType{
	ActionWatering,
	ActionFertilizing,
	ActionPlanting,
	ActionPruning,
	ActionHarvest,
	ActionNote,
}

// LogEntry is append-only.
type LogEntry struct {
	ID            uint64     `gorm:"primarykey" json:"id"`
	UserID        uint64     `gorm:"not null;index" json:"user_id"`
	MapID         uint64     `gorm:"not null;index" json:"map_id"`
	ActionType    ActionType `gorm:"type:varchar(20);not null" json:"action_type"`
	PlantObjectID *uint64    `json:"plant_object_id"`
	Amount        *float64   `json:"amount"`
	Note          *string    `gorm:"type:text" json:"note"`
	CreatedAt     time.Time  `gorm:"not null;index" json:"created_at"`
}

func (LogEntry) TableName() string {
	return "logs"
}

type HarvestRecord struct {
	ID            uint64  `gorm:"primarykey" json:"id"`
	UserID        uint64  `gorm:"not null;index" json:"user_id"`
	MapID         uint64  `gorm:"not null;index" json:"map_id"`
	PlantObjectID uint64  `gorm:"not null;index" json:"plant_object_id"`
	Amount        float64 `gorm:"not null" json:"amount"`
	Unit          string  `gorm:"type:varchar(10);not null" json:"unit"`
	HarvestedAt   string  `gorm:"type:varchar(10);not null;index" json:"harvested_at"`
}

func (HarvestRecord) TableName() string {
	return "harvests"
}
