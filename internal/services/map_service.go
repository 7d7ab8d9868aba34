package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/yukikurage/growmap/internal/constants"
	"github.com/yukikurage/growmap/internal/models"
	"github.com/yukikurage/growmap/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrMapNotFound    = errors.New("map not found")
	ErrObjectNotFound = errors.New("object not found")
	ErrPlantNotFound  = errors.New("plant not found in catalog")
)

// Default fill colors per shape.
var defaultColors = map[models.ObjectShape]string{
	models.ShapeCircle:  "#4caf50",
	models.ShapeRect:    "#9e9e9e",
	models.ShapePolygon: "#ffcc00",
}

// MapService manages garden maps and the objects placed on them.
type MapService struct {
	maps    repository.MapRepository
	objects repository.ObjectRepository
	catalog repository.CatalogRepository
}

func NewMapService(maps repository.MapRepository, objects repository.ObjectRepository, catalog repository.CatalogRepository) *MapService {
	return &MapService{
		maps:    maps,
		objects: objects,
		catalog: catalog,
	}
}

type CreateMapInput struct {
	Name    string
	WidthM  float64
	HeightM float64
}

func (s *MapService) CreateMap(userID uint64, input CreateMapInput) (*models.GardenMap, error) {
	name := strings.TrimSpace(input.Name)
	if n := utf8.RuneCountInString(name); n == 0 || n > constants.MaxMapNameLength {
		return nil, invalidInput("name must be between 1 and %d characters", constants.MaxMapNameLength)
	}
	if !validDimension(input.WidthM) || !validDimension(input.HeightM) {
		return nil, invalidInput("width and height must be greater than 0 and at most %g meters", constants.MaxMapDimension)
	}

	m := &models.GardenMap{
		UserID:  userID,
		Name:    name,
		WidthM:  input.WidthM,
		HeightM: input.HeightM,
	}
	if err := s.maps.Create(m); err != nil {
		return nil, fmt.Errorf("failed to create map: %w", err)
	}
	return m, nil
}

func validDimension(v float64) bool {
	return !math.IsNaN(v) && v > 0 && v <= constants.MaxMapDimension
}

func (s *MapService) ListMaps(userID uint64) ([]models.GardenMap, error) {
	maps, err := s.maps.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}
	return maps, nil
}

// GetOwnedMap returns ErrMapNotFound both for missing maps and maps owned
// by someone else.
func (s *MapService) GetOwnedMap(userID, mapID uint64) (*models.GardenMap, error) {
	m, err := s.maps.FindOwned(mapID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMapNotFound
		}
		return nil, fmt.Errorf("failed to find map: %w", err)
	}
	return m, nil
}

// The *On methods below take a map already returned by GetOwnedMap, such as
// the one RequireOwned stores in the request context. The id-based methods
// check ownership first and delegate to them.

// DeleteMap removes the map with its objects, logs and harvests.
func (s *MapService) DeleteMap(userID, mapID uint64) error {
	m, err := s.GetOwnedMap(userID, mapID)
	if err != nil {
		return err
	}
	return s.DeleteMapOn(m)
}

func (s *MapService) DeleteMapOn(m *models.GardenMap) error {
	if err := s.maps.DeleteCascade(m.ID); err != nil {
		return fmt.Errorf("failed to delete map: %w", err)
	}
	return nil
}

func (s *MapService) ListObjects(userID, mapID uint64) ([]models.MapObjectWithPlant, error) {
	m, err := s.GetOwnedMap(userID, mapID)
	if err != nil {
		return nil, err
	}
	return s.ListObjectsOn(m)
}

func (s *MapService) ListObjectsOn(m *models.GardenMap) ([]models.MapObjectWithPlant, error) {
	objects, err := s.objects.ListByMap(m.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects: %w", err)
	}
	return objects, nil
}

// CreateObjectInput mirrors the editor payload. Which geometry fields are
// required depends on Shape.
type CreateObjectInput struct {
	Type      string
	Shape     string
	Name      *string
	PlantID   *uint64
	PlantedAt *string
	BedType   *string
	X         *float64
	Y         *float64
	Size      *float64
	Width     *float64
	Height    *float64
	Points    [][]float64
	Color     *string
}

func (s *MapService) CreateObject(userID, mapID uint64, input CreateObjectInput) (*models.MapObjectWithPlant, error) {
	m, err := s.GetOwnedMap(userID, mapID)
	if err != nil {
		return nil, err
	}
	return s.CreateObjectOn(m, input)
}

func (s *MapService) CreateObjectOn(m *models.GardenMap, input CreateObjectInput) (*models.MapObjectWithPlant, error) {
	obj := &models.MapObject{MapID: m.ID}
	if err := applyKind(obj, input); err != nil {
		return nil, err
	}
	if err := applyGeometry(obj, input); err != nil {
		return nil, err
	}
	if err := s.applyPlant(obj, input); err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if utf8.RuneCountInString(name) > constants.MaxMapNameLength {
			return nil, invalidInput("name must be at most %d characters", constants.MaxMapNameLength)
		}
		if name != "" {
			obj.Name = &name
		}
	}

	obj.Color = defaultColors[obj.Shape]
	if input.Color != nil && strings.TrimSpace(*input.Color) != "" {
		color := strings.TrimSpace(*input.Color)
		if len(color) > 20 {
			return nil, invalidInput("color must be at most 20 characters")
		}
		obj.Color = color
	}

	if err := s.objects.Create(obj); err != nil {
		return nil, fmt.Errorf("failed to create object: %w", err)
	}

	created, err := s.objects.FindByID(obj.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load object: %w", err)
	}
	return created, nil
}

func applyKind(obj *models.MapObject, input CreateObjectInput) error {
	switch t := models.ObjectType(input.Type); t {
	case models.ObjectTypePlant, models.ObjectTypeBuilding, models.ObjectTypeZone:
		obj.Type = t
	default:
		return invalidInput("type must be one of: plant, building, zone")
	}

	switch sh := models.ObjectShape(input.Shape); sh {
	case models.ShapeCircle, models.ShapeRect, models.ShapePolygon:
		obj.Shape = sh
	default:
		return invalidInput("shape must be one of: circle, rect, polygon")
	}
	return nil
}

// applyGeometry copies only the fields the shape uses.
func applyGeometry(obj *models.MapObject, input CreateObjectInput) error {
	switch obj.Shape {
	case models.ShapeCircle:
		if !allFinite(input.X, input.Y, input.Size) {
			return invalidInput("circle requires x, y and size")
		}
		if *input.Size <= 0 {
			return invalidInput("size must be greater than 0")
		}
		obj.X, obj.Y, obj.Size = input.X, input.Y, input.Size

	case models.ShapeRect:
		if !allFinite(input.X, input.Y, input.Width, input.Height) {
			return invalidInput("rect requires x, y, width and height")
		}
		if *input.Width <= 0 || *input.Height <= 0 {
			return invalidInput("width and height must be greater than 0")
		}
		obj.X, obj.Y, obj.Width, obj.Height = input.X, input.Y, input.Width, input.Height

	case models.ShapePolygon:
		if len(input.Points) < constants.MinPolygonPoints {
			return invalidInput("polygon requires at least %d points", constants.MinPolygonPoints)
		}
		for _, p := range input.Points {
			if len(p) != 2 || !finite(p[0]) || !finite(p[1]) {
				return invalidInput("polygon points must be [x, y] pairs")
			}
		}
		raw, err := json.Marshal(input.Points)
		if err != nil {
			return invalidInput("polygon points must be [x, y] pairs")
		}
		points := string(raw)
		obj.Points = &points
	}
	return nil
}

func (s *MapService) applyPlant(obj *models.MapObject, input CreateObjectInput) error {
	if input.PlantedAt != nil && *input.PlantedAt != "" {
		if _, err := time.Parse(constants.DateLayout, *input.PlantedAt); err != nil {
			return invalidInput("planted_at must be a date in YYYY-MM-DD format")
		}
		obj.PlantedAt = input.PlantedAt
	}

	if input.BedType != nil && *input.BedType != "" {
		switch bt := models.BedType(*input.BedType); bt {
		case models.BedTypeBed, models.BedTypePot:
			obj.BedType = &bt
		default:
			return invalidInput("bed_type must be one of: bed, pot")
		}
	}

	if input.PlantID == nil {
		return nil
	}
	if obj.Type != models.ObjectTypePlant {
		return invalidInput("plant_id is only allowed on plant objects")
	}

	plant, err := s.catalog.FindPlant(*input.PlantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ValidationError{Kind: ErrPlantNotFound, Reasons: []string{ErrPlantNotFound.Error()}}
		}
		return fmt.Errorf("failed to find plant: %w", err)
	}

	obj.PlantID = &plant.ID
	if obj.BedType == nil {
		bt := plant.BedType
		obj.BedType = &bt
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func allFinite(values ...*float64) bool {
	for _, v := range values {
		if v == nil || !finite(*v) {
			return false
		}
	}
	return true
}

// DeleteObject removes an object whose map belongs to the user.
func (s *MapService) DeleteObject(userID, objectID uint64) error {
	if _, err := s.objects.FindOwned(objectID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to find object: %w", err)
	}
	if err := s.objects.Delete(objectID); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// Conflict is a pair of nearby plants whose compatibility is not good.
type Conflict struct {
	ObjectA  uint64             `json:"object_a"`
	ObjectB  uint64             `json:"object_b"`
	PlantA   string             `json:"plant_a"`
	PlantB   string             `json:"plant_b"`
	Distance float64            `json:"distance"`
	Level    models.CompatLevel `json:"level"`
	Note     string             `json:"note"`
}

func (s *MapService) MapConflicts(userID, mapID uint64) ([]Conflict, error) {
	m, err := s.GetOwnedMap(userID, mapID)
	if err != nil {
		return nil, err
	}
	return s.ConflictsOn(m)
}

// ConflictsOn reports catalog-linked plant objects whose centers are within
// constants.ConflictDistance of each other and whose pair is rated warn or
// bad. Polygons have no center and are skipped.
func (s *MapService) ConflictsOn(m *models.GardenMap) ([]Conflict, error) {
	objects, err := s.ListObjectsOn(m)
	if err != nil {
		return nil, err
	}

	pairs, err := s.catalog.ListCompat()
	if err != nil {
		return nil, fmt.Errorf("failed to list compatibility: %w", err)
	}

	plants := make([]models.MapObjectWithPlant, 0, len(objects))
	for _, obj := range objects {
		if obj.Type == models.ObjectTypePlant && obj.PlantName != nil {
			plants = append(plants, obj)
		}
	}

	conflicts := []Conflict{}
	for i := 0; i < len(plants); i++ {
		for j := i + 1; j < len(plants); j++ {
			a, b := plants[i], plants[j]
			ax, ay, okA := center(a.MapObject)
			bx, by, okB := center(b.MapObject)
			if !okA || !okB {
				continue
			}

			dist := math.Hypot(ax-bx, ay-by)
			if dist > constants.ConflictDistance {
				continue
			}

			pair := findPair(pairs, *a.PlantName, *b.PlantName)
			if pair == nil || pair.Level == models.CompatGood {
				continue
			}

			conflicts = append(conflicts, Conflict{
				ObjectA:  a.ID,
				ObjectB:  b.ID,
				PlantA:   *a.PlantName,
				PlantB:   *b.PlantName,
				Distance: math.Round(dist*100) / 100,
				Level:    pair.Level,
				Note:     pair.Note,
			})
		}
	}
	return conflicts, nil
}

func center(obj models.MapObject) (float64, float64, bool) {
	switch obj.Shape {
	case models.ShapeCircle:
		if obj.X == nil || obj.Y == nil {
			return 0, 0, false
		}
		return *obj.X, *obj.Y, true
	case models.ShapeRect:
		if obj.X == nil || obj.Y == nil || obj.Width == nil || obj.Height == nil {
			return 0, 0, false
		}
		return *obj.X + *obj.Width/2, *obj.Y + *obj.Height/2, true
	default:
		return 0, 0, false
	}
}

func findPair(pairs []models.PlantCompatPair, a, b string) *models.PlantCompatPair {
	for i := range pairs {
		p := &pairs[i]
		if (p.PlantA == a && p.PlantB == b) || (p.PlantA == b && p.PlantB == a) {
			return p
		}
	}
	return nil
}
