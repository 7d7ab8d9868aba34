package dto

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/yukikurage/growmap/internal/models"
)

type MapDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	WidthM    float64   `json:"width_m"`
	HeightM   float64   `json:"height_m"`
	CreatedAt time.Time `json:"created_at"`
}

func ToMapDTO(m models.GardenMap) MapDTO {
	return MapDTO{
		ID:        m.ID,
		Name:      m.Name,
		WidthM:    m.WidthM,
		HeightM:   m.HeightM,
		CreatedAt: m.CreatedAt,
	}
}

func ToMapDTOs(maps []models.GardenMap) []MapDTO {
	out := make([]MapDTO, len(maps))
	for i, m := range maps {
		out[i] = ToMapDTO(m)
	}
	return out
}

// MapObjectDTO carries the object geometry and, for catalog-linked plants,
// the joined catalog fields.
type MapObjectDTO struct {
	ID        uint64             `json:"id"`
	MapID     uint64             `json:"map_id"`
	Type      models.ObjectType  `json:"type"`
	Shape     models.ObjectShape `json:"shape"`
	Name      *string            `json:"name"`
	PlantID   *uint64            `json:"plant_id"`
	PlantedAt *string            `json:"planted_at"`
	BedType   *models.BedType    `json:"bed_type"`
	X         *float64           `json:"x"`
	Y         *float64           `json:"y"`
	Size      *float64           `json:"size"`
	Width     *float64           `json:"width"`
	Height    *float64           `json:"height"`
	Points    [][]float64        `json:"points"`
	Color     string             `json:"color"`

	PlantName      *string  `json:"plant_name,omitempty"`
	WaterNeed      *string  `json:"water_need,omitempty"`
	SunNeed        *string  `json:"sun_need,omitempty"`
	FrostSensitive *bool    `json:"frost_sensitive,omitempty"`
	HeatSensitive  *bool    `json:"heat_sensitive,omitempty"`
	AvgYield       *float64 `json:"avg_yield,omitempty"`
	YieldUnit      *string  `json:"yield_unit,omitempty"`
}

// DecodePoints parses the stored polygon point list. Empty or malformed
// text yields nil.
func DecodePoints(raw *string) [][]float64 {
	if raw == nil || *raw == "" {
		return nil
	}
	var points [][]float64
	if err := json.Unmarshal([]byte(*raw), &points); err != nil {
		return nil
	}
	return points
}

func ToMapObjectDTO(obj models.MapObjectWithPlant) MapObjectDTO {
	return MapObjectDTO{
		ID:             obj.ID,
		MapID:          obj.MapID,
		Type:           obj.Type,
		Shape:          obj.Shape,
		Name:           obj.Name,
		PlantID:        obj.PlantID,
		PlantedAt:      obj.PlantedAt,
		BedType:        obj.BedType,
		X:              obj.X,
		Y:              obj.Y,
		Size:           obj.Size,
		Width:          obj.Width,
		Height:         obj.Height,
		Points:         DecodePoints(obj.Points),
		Color:          obj.Color,
		PlantName:      obj.PlantName,
		WaterNeed:      obj.WaterNeed,
		SunNeed:        obj.SunNeed,
		FrostSensitive: obj.FrostSensitive,
		HeatSensitive:  obj.HeatSensitive,
		AvgYield:       obj.AvgYield,
		YieldUnit:      obj.YieldUnit,
	}
}

func ToMapObjectDTOs(objects []models.MapObjectWithPlant) []MapObjectDTO {
	out := make([]MapObjectDTO, len(objects))
	for i, obj := range objects {
		out[i] = ToMapObjectDTO(obj)
	}
	return out
}
