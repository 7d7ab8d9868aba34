package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/growmap/internal/models"
	"github.com/yukikurage/growmap/internal/utils"
)

func TestEfficiency(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		avgYield *float64
		want     *float64
	}{
		{"exact average", 3.5, ptr(3.5), ptr(100.0)},
		{"rounded to one decimal", 1, ptr(3.0), ptr(33.3)},
		{"above average", 5.6, ptr(2.8), ptr(200.0)},
		{"unknown average", 1, nil, nil},
		{"zero average", 1, ptr(0.0), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Efficiency(tt.amount, tt.avgYield))
		})
	}
}

func TestJournalService_LogActionRejectsBuildings(t *testing.T) {
	env := setupServiceEnv(t)
	user := env.signup(t, "gardener")
	m := env.createMap(t, user.ID)

	shed, err := env.maps.CreateObject(user.ID, m.ID, CreateObjectInput{
		Type:   string(models.ObjectTypeBuilding),
		Shape:  string(models.ShapeRect),
		X:      ptr(0.0),
		Y:      ptr(0.0),
		Width:  ptr(2.0),
		Height: ptr(3.0),
	})
	require.NoError(t, err)

	_, err = env.journal.LogAction(user.ID, LogActionInput{MapID: m.ID, ActionType: "watering", PlantObjectID: &shed.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.journal.AddHarvest(user.ID, AddHarvestInput{MapID: m.ID, PlantObjectID: shed.ID, Amount: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.journal.LogAction(user.ID, LogActionInput{MapID: m.ID, ActionType: "note", PlantObjectID: &shed.ID, Note: ptr("Painted the roof")})
	assert.NoError(t, err)
}

func TestJournalService_LogActionValidation(t *testing.T) {
	env := setupServiceEnv(t)
	owner := env.signup(t, "owner")
	other := env.signup(t, "other")
	m := env.createMap(t, owner.ID)
	otherMap := env.createMap(t, other.ID)
	foreign := env.plantCircle(t, other.ID, otherMap.ID, "Tomato", 1, 1)

	_, err := env.journal.LogAction(owner.ID, LogActionInput{MapID: m.ID, ActionType: "dancing"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.journal.LogAction(other.ID, LogActionInput{MapID: m.ID, ActionType: "watering"})
	assert.ErrorIs(t, err, ErrMapNotFound)

	_, err = env.journal.LogAction(owner.ID, LogActionInput{MapID: m.ID, ActionType: "watering", PlantObjectID: &foreign.ID})
	assert.ErrorIs(t, err, ErrObjectNotFound)

	_, err = env.journal.LogAction(owner.ID, LogActionInput{MapID: m.ID, ActionType: "watering", Amount: ptr(-1.0)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestJournalService_ListLogsNewestFirst(t *testing.T) {
	env := setupServiceEnv(t)
	user := env.signup(t, "gardener")
	m := env.createMap(t, user.ID)
	tomato := env.plantCircle(t, user.ID, m.ID, "Tomato", 1, 1)

	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	for i, action := range []string{"planting", "watering", "fertilizing"} {
		env.journal.now = fixedClock(base.Add(time.Duration(i) * time.Hour))
		_, err := env.journal.LogAction(user.ID, LogActionInput{MapID: m.ID, ActionType: action, PlantObjectID: &tomato.ID, Note: ptr("  ")})
		require.NoError(t, err)
	}

	entries, total, err := env.journal.ListLogs(user.ID, &m.ID, utils.PaginationParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionFertilizing, entries[0].ActionType)
	assert.Equal(t, models.ActionWatering, entries[1].ActionType)
	assert.Nil(t, entries[0].Note)

	entries, _, err = env.journal.ListLogs(user.ID, nil, utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionPlanting, entries[0].ActionType)
}

func TestJournalService_AddHarvest(t *testing.T) {
	env := setupServiceEnv(t)
	user := env.signup(t, "gardener")
	m := env.createMap(t, user.ID)
	tomato := env.plantCircle(t, user.ID, m.ID, "Tomato", 1, 1)
	env.journal.now = fixedClock(time.Date(2024, 7, 14, 18, 30, 0, 0, time.UTC))

	result, err := env.journal.AddHarvest(user.ID, AddHarvestInput{MapID: m.ID, PlantObjectID: tomato.ID, Amount: 3.5})
	require.NoError(t, err)
	assert.Equal(t, "2024-07-14", result.Harvest.HarvestedAt)
	assert.Equal(t, "kg", result.Harvest.Unit)
	require.NotNil(t, result.Efficiency)
	assert.Equal(t, 100.0, *result.Efficiency)

	entries, _, err := env.journal.ListLogs(user.ID, &m.ID, utils.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionHarvest, entries[0].ActionType)
	require.NotNil(t, entries[0].Amount)
	assert.Equal(t, 3.5, *entries[0].Amount)

	_, err = env.journal.AddHarvest(user.ID, AddHarvestInput{MapID: m.ID, PlantObjectID: tomato.ID, Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.journal.AddHarvest(user.ID, AddHarvestInput{MapID: m.ID, PlantObjectID: tomato.ID, Amount: 1, HarvestedAt: ptr("14.07.2024")})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestJournalService_DeleteHarvestKeepsLog(t *testing.T) {
	env := setupServiceEnv(t)
	owner := env.signup(t, "owner")
	other := env.signup(t, "other")
	m := env.createMap(t, owner.ID)
	tomato := env.plantCircle(t, owner.ID, m.ID, "Tomato", 1, 1)

	result, err := env.journal.AddHarvest(owner.ID, AddHarvestInput{MapID: m.ID, PlantObjectID: tomato.ID, Amount: 2, Unit: ptr("pcs")})
	require.NoError(t, err)

	assert.ErrorIs(t, env.journal.DeleteHarvest(other.ID, result.Harvest.ID), ErrHarvestNotFound)
	require.NoError(t, env.journal.DeleteHarvest(owner.ID, result.Harvest.ID))

	harvests, err := env.journal.ListHarvests(owner.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, harvests)

	_, total, err := env.journal.ListLogs(owner.ID, nil, utils.PaginationParams{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestJournalService_Export(t *testing.T) {
	env := setupServiceEnv(t)
	user := env.signup(t, "gardener")
	m := env.createMap(t, user.ID)
	basil := env.plantCircle(t, user.ID, m.ID, "Basil", 1, 1)

	_, err := env.journal.LogAction(user.ID, LogActionInput{MapID: m.ID, ActionType: "pruning", PlantObjectID: &basil.ID})
	require.NoError(t, err)
	_, err = env.journal.AddHarvest(user.ID, AddHarvestInput{MapID: m.ID, PlantObjectID: basil.ID, Amount: 0.15})
	require.NoError(t, err)

	export, err := env.journal.Export(user.ID, &m.ID)
	require.NoError(t, err)
	assert.Len(t, export.Logs, 2)
	require.Len(t, export.Harvests, 1)
	require.NotNil(t, export.Harvests[0].PlantName)
	assert.Equal(t, "Basil", *export.Harvests[0].PlantName)
}
