package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsService_NoWatering(t *testing.T) {
	env := setupServiceEnv(t)
	user := env.signup(t, "gardener")
	env.analytics.now = fixedClock(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))

	result, err := env.analytics.Weekly(user.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"2024-05-04", "2024-05-05", "2024-05-06", "2024-05-07",
		"2024-05-08", "2024-05-09", "2024-05-10",
	}, result.Days)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 0}, result.WateringCounts)
	assert.Zero(t, result.TotalWatering)
	assert.Equal(t, SummaryNoWatering, result.Summary)
	assert.Empty(t, result.Harvests)
}

func TestAnalyticsService_WeeklyCounts(t *testing.T) {
	env := setupServiceEnv(t)
	user := env.signup(t, "gardener")
	m := env.createMap(t, user.ID)
	tomato := env.plantCircle(t, user.ID, m.ID, "Tomato", 1, 1)
	today := time.Date(2024, 5, 10, 15, 0, 0, 0, time.UTC)
	env.analytics.now = fixedClock(today)

	for _, at := range []time.Time{
		today.Add(-time.Hour),
		today.Add(-2 * time.Hour),
		today.AddDate(0, 0, -3),
		today.AddDate(0, 0, -8),
	} {
		env.journal.now = fixedClock(at)
		_, err := env.journal.LogAction(user.ID, LogActionInput{MapID: m.ID, ActionType: "watering", PlantObjectID: &tomato.ID})
		require.NoError(t, err)
	}

	for _, h := range []AddHarvestInput{
		{MapID: m.ID, PlantObjectID: tomato.ID, Amount: 2, HarvestedAt: ptr("2024-05-08")},
		{MapID: m.ID, PlantObjectID: tomato.ID, Amount: 1.5, HarvestedAt: ptr("2024-05-09")},
		{MapID: m.ID, PlantObjectID: tomato.ID, Amount: 9, HarvestedAt: ptr("2024-04-01")},
	} {
		_, err := env.journal.AddHarvest(user.ID, h)
		require.NoError(t, err)
	}

	result, err := env.analytics.Weekly(user.ID, &m.ID)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 0, 0, 1, 0, 0, 2}, result.WateringCounts)
	assert.Equal(t, 3, result.TotalWatering)
	assert.Equal(t, SummaryBalanced, result.Summary)

	require.Len(t, result.Harvests, 1)
	stat := result.Harvests[0]
	assert.Equal(t, "Tomato", stat.Plant)
	assert.Equal(t, "kg", stat.Unit)
	assert.Equal(t, 3.5, stat.Total)
	assert.Equal(t, 1, stat.Objects)
	require.NotNil(t, stat.Efficiency)
	assert.Equal(t, 100.0, *stat.Efficiency)
}

func TestAnalyticsService_HarvestPerObject(t *testing.T) {
	env := setupServiceEnv(t)
	user := env.signup(t, "gardener")
	m := env.createMap(t, user.ID)
	tomatoA := env.plantCircle(t, user.ID, m.ID, "Tomato", 1, 1)
	tomatoB := env.plantCircle(t, user.ID, m.ID, "Tomato", 5, 5)
	basil := env.plantCircle(t, user.ID, m.ID, "Basil", 8, 2)
	env.analytics.now = fixedClock(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))

	for _, h := range []AddHarvestInput{
		{MapID: m.ID, PlantObjectID: tomatoA.ID, Amount: 2, HarvestedAt: ptr("2024-05-06")},
		{MapID: m.ID, PlantObjectID: tomatoA.ID, Amount: 2, HarvestedAt: ptr("2024-05-09")},
		{MapID: m.ID, PlantObjectID: tomatoB.ID, Amount: 3, HarvestedAt: ptr("2024-05-10")},
		{MapID: m.ID, PlantObjectID: basil.ID, Amount: 0.15, HarvestedAt: ptr("2024-05-07")},
	} {
		_, err := env.journal.AddHarvest(user.ID, h)
		require.NoError(t, err)
	}

	result, err := env.analytics.Weekly(user.ID, &m.ID)
	require.NoError(t, err)
	require.Len(t, result.Harvests, 2)

	basilStat := result.Harvests[0]
	assert.Equal(t, "Basil", basilStat.Plant)
	assert.Equal(t, 1, basilStat.Objects)
	require.NotNil(t, basilStat.Efficiency)
	assert.Equal(t, 50.0, *basilStat.Efficiency)

	tomatoStat := result.Harvests[1]
	assert.Equal(t, "Tomato", tomatoStat.Plant)
	assert.Equal(t, 7.0, tomatoStat.Total)
	assert.Equal(t, 2, tomatoStat.Objects)
	assert.Equal(t, 3.5, tomatoStat.PerObject)
	require.NotNil(t, tomatoStat.AvgYield)
	assert.Equal(t, 3.5, *tomatoStat.AvgYield)
	require.NotNil(t, tomatoStat.Efficiency)
	assert.Equal(t, 100.0, *tomatoStat.Efficiency)
}

func TestAnalyticsService_ForeignMap(t *testing.T) {
	env := setupServiceEnv(t)
	owner := env.signup(t, "owner")
	other := env.signup(t, "other")
	m := env.createMap(t, owner.ID)

	_, err := env.analytics.Weekly(other.ID, &m.ID)
	assert.ErrorIs(t, err, ErrMapNotFound)
}

func TestWateringSummary(t *testing.T) {
	assert.Equal(t, SummaryNoWatering, WateringSummary(0))
	assert.Equal(t, SummaryBalanced, WateringSummary(1))
	assert.Equal(t, SummaryBalanced, WateringSummary(5))
	assert.Equal(t, SummaryHighWatering, WateringSummary(6))
	assert.Equal(t, SummaryHighWatering, WateringSummary(20))
}
