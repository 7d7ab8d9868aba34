package models

import "time"

// GardenMap is a user-owned garden or balcony layout measured in meters.
type GardenMap struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"not null;index" json:"user_id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	WidthM    float64   `gorm:"column:width_m;not null" json:"width_m"`
	HeightM   float64   `gorm:"column:height_m;not null" json:"height_m"`
	CreatedAt time.Time `json:"created_at"`
}

func (GardenMap) TableName() string {
	return "maps"
}
