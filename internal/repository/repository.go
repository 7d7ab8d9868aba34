package repository

import (
	"time"

	"github.com/yukikurage/growmap/internal/models"
	"github.com/yukikurage/growmap/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// UsernameExists reports whether the username is already registered
	UsernameExists(username string) (bool, error)
}

// MapRepository defines the interface for garden map data access
type MapRepository interface {
	Create(m *models.GardenMap) error

	// ListByUser returns the user's maps ordered by id
	ListByUser(userID uint64) ([]models.GardenMap, error)

	// FindOwned returns the map only if it belongs to userID,
	// otherwise gorm.ErrRecordNotFound
	FindOwned(id, userID uint64) (*models.GardenMap, error)

	// DeleteCascade removes the map with its objects, logs and harvests
	// in one transaction
	DeleteCascade(id uint64) error
}

// ObjectRepository defines the interface for placed map objects
type ObjectRepository interface {
	Create(obj *models.MapObject) error

	// FindByID returns the object joined with its catalog entry
	FindByID(id uint64) (*models.MapObjectWithPlant, error)

	// FindOwned returns the object only if its map belongs to userID
	FindOwned(id, userID uint64) (*models.MapObject, error)

	// ListByMap returns the map's objects left-joined with the catalog
	ListByMap(mapID uint64) ([]models.MapObjectWithPlant, error)

	// ListPlantsByUser returns every catalog-linked plant across the user's maps
	ListPlantsByUser(userID uint64) ([]models.MapObjectWithPlant, error)

	Delete(id uint64) error
}

// CatalogRepository defines read access to the seeded reference tables
type CatalogRepository interface {
	ListPlants() ([]models.PlantCatalogEntry, error)
	FindPlant(id uint64) (*models.PlantCatalogEntry, error)
	ListCompat() ([]models.PlantCompatPair, error)

	// FindCompat looks the pair up in both orderings
	FindCompat(plantA, plantB string) (*models.PlantCompatPair, error)
}

// JournalFilter narrows log and harvest queries
type JournalFilter struct {
	UserID uint64
	MapID  *uint64
}

// HarvestRow is a harvest joined with its object and catalog entry
type HarvestRow struct {
	models.HarvestRecord
	ObjectName *string
	PlantName  *string
	AvgYield   *float64
	YieldUnit  *string
}

// JournalRepository defines the interface for the action log and harvest ledger
type JournalRepository interface {
	CreateLog(entry *models.LogEntry) error

	// ListLogs returns entries newest first with the total count
	ListLogs(filter JournalFilter, params utils.PaginationParams) ([]models.LogEntry, int64, error)

	// CreateHarvestWithLog inserts the harvest and its paired log entry atomically
	CreateHarvestWithLog(harvest *models.HarvestRecord, entry *models.LogEntry) error

	// ListHarvests returns harvests newest first
	ListHarvests(filter JournalFilter) ([]HarvestRow, error)

	// FindHarvestOwned returns the harvest only if its map belongs to userID
	FindHarvestOwned(id, userID uint64) (*models.HarvestRecord, error)

	DeleteHarvest(id uint64) error

	// WateringTimes returns created_at of watering entries at or after since
	WateringTimes(filter JournalFilter, since time.Time) ([]time.Time, error)

	// HarvestsSince returns harvests with harvested_at >= sinceDate (YYYY-MM-DD)
	HarvestsSince(filter JournalFilter, sinceDate string) ([]HarvestRow, error)
}
