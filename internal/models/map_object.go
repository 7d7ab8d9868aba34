package models

type ObjectType string

const (
	ObjectTypePlant    ObjectType = "plant"
	ObjectTypeBuilding ObjectType = "building"
	ObjectTypeZone     ObjectType = "zone"
)

type ObjectShape string

const (
	ShapeCircle  ObjectShape = "circle"
	ShapeRect    ObjectShape = "rect"
	ShapePolygon ObjectShape = "polygon"
)

type BedType string

const (
	BedTypeBed BedType = "bed"
	BedTypePot BedType = "pot"
)

// MapObject is an item placed on a GardenMap. Which geometry columns are set
// depends on Shape: circle uses X/Y/Size, rect uses X/Y/Width/Height and
// polygon stores a JSON point list in Points.
type MapObject struct {
	ID        uint64      `gorm:"primarykey" json:"id"`
	MapID     uint64      `gorm:"not null;index" json:"map_id"`
	Type      ObjectType  `gorm:"type:varchar(20);not null" json:"type"`
	Shape     ObjectShape `gorm:"type:varchar(20);not null" json:"shape"`
	Name      *string     `gorm:"type:varchar(100)" json:"name"`
	PlantID   *uint64     `json:"plant_id"`
	PlantedAt *string     `gorm:"type:varchar(10)" json:"planted_at"`
	BedType   *BedType    `gorm:"type:varchar(10)" json:"bed_type"`
	X         *float64    `json:"x"`
	Y         *float64    `json:"y"`
	Size      *float64    `json:"size"`
	Width     *float64    `json:"width"`
	Height    *float64    `json:"height"`
	Points    *string     `gorm:"type:text" json:"-"`
	Color     string      `gorm:"type:varchar(20)" json:"color"`
}

// MapObjectWithPlant is a MapObject left-joined with its catalog entry.
type MapObjectWithPlant struct {
	MapObject
	PlantName      *string  `json:"plant_name"`
	WaterNeed      *string  `json:"water_need"`
	SunNeed        *string  `json:"sun_need"`
	FrostSensitive *bool    `json:"frost_sensitive"`
	HeatSensitive  *bool    `json:"heat_sensitive"`
	AvgYield       *float64 `json:"avg_yield"`
	YieldUnit      *string  `json:"yield_unit"`
}
