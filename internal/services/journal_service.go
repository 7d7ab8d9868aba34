package services

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/growmap/internal/constants"
	"github.com/yukikurage/growmap/internal/models"
	"github.com/yukikurage/growmap/internal/repository"
	"github.com/yukikurage/growmap/internal/utils"
	"gorm.io/gorm"
)

var ErrHarvestNotFound = errors.New("harvest not found")

const (
	maxNoteLength = 1000
	maxUnitLength = 10
	defaultUnit   = "kg"
	maxExportRows = 10000
)

// JournalService appends care actions and records harvests.
type JournalService struct {
	maps    *MapService
	objects repository.ObjectRepository
	journal repository.JournalRepository
	now     func() time.Time
}

func NewJournalService(maps *MapService, objects repository.ObjectRepository, journal repository.JournalRepository) *JournalService {
	return &JournalService{
		maps:    maps,
		objects: objects,
		journal: journal,
		now:     time.Now,
	}
}

type LogActionInput struct {
	MapID         uint64
	ActionType    string
	PlantObjectID *uint64
	Amount        *float64
	Note          *string
}

// LogAction appends one entry stamped with the current UTC time.
func (s *JournalService) LogAction(userID uint64, input LogActionInput) (*models.LogEntry, error) {
	action := models.ActionType(input.ActionType)
	if !slices.Contains(models.ValidActionTypes, action) {
		return nil, invalidInput("action_type must be one of: watering, fertilizing, planting, pruning, harvest, note")
	}

	if _, err := s.maps.GetOwnedMap(userID, input.MapID); err != nil {
		return nil, err
	}

	if input.PlantObjectID != nil {
		obj, err := s.targetObject(input.MapID, *input.PlantObjectID)
		if err != nil {
			return nil, err
		}
		if obj.Type == models.ObjectTypeBuilding && (action == models.ActionWatering || action == models.ActionHarvest) {
			return nil, invalidInput("buildings cannot be watered or harvested")
		}
	}

	if input.Amount != nil && (!finite(*input.Amount) || *input.Amount < 0) {
		return nil, invalidInput("amount must be a non-negative number")
	}

	note, err := normalizeNote(input.Note)
	if err != nil {
		return nil, err
	}

	entry := &models.LogEntry{
		UserID:        userID,
		MapID:         input.MapID,
		ActionType:    action,
		PlantObjectID: input.PlantObjectID,
		Amount:        input.Amount,
		Note:          note,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.journal.CreateLog(entry); err != nil {
		return nil, fmt.Errorf("failed to create log entry: %w", err)
	}
	return entry, nil
}

// targetObject loads an object and checks it is placed on mapID.
func (s *JournalService) targetObject(mapID, objectID uint64) (*models.MapObjectWithPlant, error) {
	obj, err := s.objects.FindByID(objectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to find object: %w", err)
	}
	if obj.MapID != mapID {
		return nil, ErrObjectNotFound
	}
	return obj, nil
}

func normalizeNote(note *string) (*string, error) {
	if note == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*note)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > maxNoteLength {
		return nil, invalidInput("note must be at most %d characters", maxNoteLength)
	}
	return &trimmed, nil
}

// ListLogs returns the user's entries newest first, optionally for one map.
func (s *JournalService) ListLogs(userID uint64, mapID *uint64, params utils.PaginationParams) ([]models.LogEntry, int64, error) {
	filter, err := s.filter(userID, mapID)
	if err != nil {
		return nil, 0, err
	}

	entries, total, err := s.journal.ListLogs(filter, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list logs: %w", err)
	}
	return entries, total, nil
}

func (s *JournalService) filter(userID uint64, mapID *uint64) (repository.JournalFilter, error) {
	if mapID != nil {
		if _, err := s.maps.GetOwnedMap(userID, *mapID); err != nil {
			return repository.JournalFilter{}, err
		}
	}
	return repository.JournalFilter{UserID: userID, MapID: mapID}, nil
}

type AddHarvestInput struct {
	MapID         uint64
	PlantObjectID uint64
	Amount        float64
	Unit          *string
	HarvestedAt   *string
}

// HarvestResult is the stored harvest plus its comparison with the catalog.
// Efficiency is nil when the plant has no known average yield.
type HarvestResult struct {
	Harvest    models.HarvestRecord
	Efficiency *float64
	AvgYield   *float64
	YieldUnit  *string
}

// AddHarvest records a harvest and its paired log entry in one transaction.
func (s *JournalService) AddHarvest(userID uint64, input AddHarvestInput) (*HarvestResult, error) {
	if !finite(input.Amount) || input.Amount <= 0 {
		return nil, invalidInput("amount must be greater than 0")
	}

	if _, err := s.maps.GetOwnedMap(userID, input.MapID); err != nil {
		return nil, err
	}

	obj, err := s.targetObject(input.MapID, input.PlantObjectID)
	if err != nil {
		return nil, err
	}
	if obj.Type == models.ObjectTypeBuilding {
		return nil, invalidInput("buildings cannot be watered or harvested")
	}

	now := s.now().UTC()
	harvestedAt := now.Format(constants.DateLayout)
	if input.HarvestedAt != nil && *input.HarvestedAt != "" {
		if _, err := time.Parse(constants.DateLayout, *input.HarvestedAt); err != nil {
			return nil, invalidInput("harvested_at must be a date in YYYY-MM-DD format")
		}
		harvestedAt = *input.HarvestedAt
	}

	unit := defaultUnit
	if obj.YieldUnit != nil && *obj.YieldUnit != "" {
		unit = *obj.YieldUnit
	}
	if input.Unit != nil && strings.TrimSpace(*input.Unit) != "" {
		unit = strings.TrimSpace(*input.Unit)
		if utf8.RuneCountInString(unit) > maxUnitLength {
			return nil, invalidInput("unit must be at most %d characters", maxUnitLength)
		}
	}

	harvest := &models.HarvestRecord{
		UserID:        userID,
		MapID:         input.MapID,
		PlantObjectID: input.PlantObjectID,
		Amount:        input.Amount,
		Unit:          unit,
		HarvestedAt:   harvestedAt,
	}
	objectID := input.PlantObjectID
	amount := input.Amount
	entry := &models.LogEntry{
		UserID:        userID,
		MapID:         input.MapID,
		ActionType:    models.ActionHarvest,
		PlantObjectID: &objectID,
		Amount:        &amount,
		CreatedAt:     now,
	}

	if err := s.journal.CreateHarvestWithLog(harvest, entry); err != nil {
		return nil, fmt.Errorf("failed to record harvest: %w", err)
	}

	return &HarvestResult{
		Harvest:    *harvest,
		Efficiency: Efficiency(input.Amount, obj.AvgYield),
		AvgYield:   obj.AvgYield,
		YieldUnit:  obj.YieldUnit,
	}, nil
}

// Efficiency returns amount as a percentage of avgYield rounded to one
// decimal, or nil when avgYield is unknown or not positive.
func Efficiency(amount float64, avgYield *float64) *float64 {
	if avgYield == nil || *avgYield <= 0 {
		return nil
	}
	e := math.Round(amount/(*avgYield)*100*10) / 10
	return &e
}

func (s *JournalService) ListHarvests(userID uint64, mapID *uint64) ([]repository.HarvestRow, error) {
	filter, err := s.filter(userID, mapID)
	if err != nil {
		return nil, err
	}

	rows, err := s.journal.ListHarvests(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list harvests: %w", err)
	}
	return rows, nil
}

// DeleteHarvest hard-deletes a harvest. The paired log entry is kept.
func (s *JournalService) DeleteHarvest(userID, harvestID uint64) error {
	if _, err := s.journal.FindHarvestOwned(harvestID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHarvestNotFound
		}
		return fmt.Errorf("failed to find harvest: %w", err)
	}
	if err := s.journal.DeleteHarvest(harvestID); err != nil {
		return fmt.Errorf("failed to delete harvest: %w", err)
	}
	return nil
}

// JournalExport is everything written to the spreadsheet export.
type JournalExport struct {
	Logs     []models.LogEntry
	Harvests []repository.HarvestRow
}

// Export collects logs (newest first, capped) and harvests for export.
func (s *JournalService) Export(userID uint64, mapID *uint64) (*JournalExport, error) {
	filter, err := s.filter(userID, mapID)
	if err != nil {
		return nil, err
	}

	logs, _, err := s.journal.ListLogs(filter, utils.PaginationParams{Page: 1, Limit: maxExportRows})
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	harvests, err := s.journal.ListHarvests(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list harvests: %w", err)
	}
	return &JournalExport{Logs: logs, Harvests: harvests}, nil
}
