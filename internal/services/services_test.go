package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/growmap/internal/credentials"
	"github.com/yukikurage/growmap/internal/database"
	"github.com/yukikurage/growmap/internal/models"
	"github.com/yukikurage/growmap/internal/repository"
	"github.com/yukikurage/growmap/internal/weather"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "Sunflower#2024"

type serviceTestEnv struct {
	db        *gorm.DB
	auth      *AuthService
	maps      *MapService
	catalog   *CatalogService
	journal   *JournalService
	analytics *AnalyticsService
	objects   repository.ObjectRepository
}

func setupServiceEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig("disabled"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.MigrateDatabase(db))

	mapRepo := repository.NewMapRepository(db)
	objectRepo := repository.NewObjectRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	journalRepo := repository.NewJournalRepository(db)

	mapService := NewMapService(mapRepo, objectRepo, catalogRepo)
	return serviceTestEnv{
		db:        db,
		auth:      NewAuthService(repository.NewUserRepository(db), credentials.NewBcryptHasher(bcrypt.MinCost), credentials.DefaultPasswordPolicy()),
		maps:      mapService,
		catalog:   NewCatalogService(catalogRepo),
		journal:   NewJournalService(mapService, objectRepo, journalRepo),
		analytics: NewAnalyticsService(mapService, journalRepo),
		objects:   objectRepo,
	}
}

func (env serviceTestEnv) signup(t *testing.T, username string) *models.User {
	t.Helper()

	user, err := env.auth.Signup(SignupInput{Username: username, Password: testPassword})
	require.NoError(t, err)
	return user
}

func (env serviceTestEnv) createMap(t *testing.T, userID uint64) *models.GardenMap {
	t.Helper()

	m, err := env.maps.CreateMap(userID, CreateMapInput{Name: "Backyard", WidthM: 10, HeightM: 8})
	require.NoError(t, err)
	return m
}

func (env serviceTestEnv) plantCircle(t *testing.T, userID, mapID uint64, plant string, x, y float64) *models.MapObjectWithPlant {
	t.Helper()

	var entry models.PlantCatalogEntry
	require.NoError(t, env.db.Where("name = ?", plant).First(&entry).Error)

	obj, err := env.maps.CreateObject(userID, mapID, CreateObjectInput{
		Type:    string(models.ObjectTypePlant),
		Shape:   string(models.ShapeCircle),
		PlantID: &entry.ID,
		X:       ptr(x),
		Y:       ptr(y),
		Size:    ptr(0.3),
	})
	require.NoError(t, err)
	return obj
}

func ptr[T any](v T) *T {
	return &v
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type fakeForecast struct {
	forecast *weather.Forecast
	err      error
	calls    int
}

func (f *fakeForecast) Forecast(_ context.Context, _, _ float64) (*weather.Forecast, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.forecast, nil
}

type fakeGeo struct {
	loc   *weather.Location
	err   error
	calls int
}

func (f *fakeGeo) Lookup(_ context.Context, _ string) (*weather.Location, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.loc, nil
}

func (f *fakeGeo) Name() string {
	return "fake"
}

var errUpstream = errors.New("upstream down")
