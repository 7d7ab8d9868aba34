package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/yukikurage/growmap/internal/constants"
	"github.com/yukikurage/growmap/internal/repository"
)

// Weekly watering summaries
const (
	SummaryNoWatering   = "No watering events recorded this week"
	SummaryHighWatering = "High watering frequency"
	SummaryBalanced     = "Watering frequency looks balanced"
)

// PlantHarvestStat aggregates one (plant, unit) group over the window.
type PlantHarvestStat struct {
	Plant      string   `json:"plant"`
	Unit       string   `json:"unit"`
	Total      float64  `json:"total"`
	Objects    int      `json:"objects"`
	PerObject  float64  `json:"per_object"`
	AvgYield   *float64 `json:"avg_yield"`
	Efficiency *float64 `json:"efficiency"`
}

// Analytics is chart-ready data for the trailing window ending today (UTC).
type Analytics struct {
	Days           []string           `json:"days"`
	WateringCounts []int              `json:"watering_counts"`
	TotalWatering  int                `json:"total_watering"`
	Summary        string             `json:"summary"`
	Harvests       []PlantHarvestStat `json:"harvests"`
}

type AnalyticsService struct {
	maps    *MapService
	journal repository.JournalRepository
	now     func() time.Time
}

func NewAnalyticsService(maps *MapService, journal repository.JournalRepository) *AnalyticsService {
	return &AnalyticsService{
		maps:    maps,
		journal: journal,
		now:     time.Now,
	}
}

// Weekly builds both series, optionally restricted to one owned map.
func (s *AnalyticsService) Weekly(userID uint64, mapID *uint64) (*Analytics, error) {
	if mapID != nil {
		if _, err := s.maps.GetOwnedMap(userID, *mapID); err != nil {
			return nil, err
		}
	}
	filter := repository.JournalFilter{UserID: userID, MapID: mapID}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(constants.AnalyticsWindowDays - 1))

	days := make([]string, constants.AnalyticsWindowDays)
	index := make(map[string]int, constants.AnalyticsWindowDays)
	for i := range days {
		days[i] = start.AddDate(0, 0, i).Format(constants.DateLayout)
		index[days[i]] = i
	}

	times, err := s.journal.WateringTimes(filter, start)
	if err != nil {
		return nil, fmt.Errorf("failed to load watering logs: %w", err)
	}

	counts := make([]int, constants.AnalyticsWindowDays)
	total := 0
	for _, t := range times {
		if i, ok := index[t.UTC().Format(constants.DateLayout)]; ok {
			counts[i]++
			total++
		}
	}

	rows, err := s.journal.HarvestsSince(filter, days[0])
	if err != nil {
		return nil, fmt.Errorf("failed to load harvests: %w", err)
	}

	return &Analytics{
		Days:           days,
		WateringCounts: counts,
		TotalWatering:  total,
		Summary:        WateringSummary(total),
		Harvests:       aggregateHarvests(rows, days[len(days)-1]),
	}, nil
}

// WateringSummary picks the summary line for a weekly watering count.
func WateringSummary(total int) string {
	switch {
	case total == 0:
		return SummaryNoWatering
	case total >= constants.HighWateringThreshold:
		return SummaryHighWatering
	default:
		return SummaryBalanced
	}
}

type harvestKey struct {
	plant string
	unit  string
}

// aggregateHarvests groups rows dated up to lastDay by plant name and unit.
func aggregateHarvests(rows []repository.HarvestRow, lastDay string) []PlantHarvestStat {
	type group struct {
		total    float64
		objects  map[uint64]struct{}
		avgYield *float64
	}

	groups := make(map[harvestKey]*group)
	for _, row := range rows {
		if row.HarvestedAt > lastDay {
			continue
		}
		key := harvestKey{plant: harvestPlantName(row), unit: row.Unit}
		g, ok := groups[key]
		if !ok {
			g = &group{objects: make(map[uint64]struct{}), avgYield: row.AvgYield}
			groups[key] = g
		}
		g.total += row.Amount
		g.objects[row.PlantObjectID] = struct{}{}
	}

	stats := make([]PlantHarvestStat, 0, len(groups))
	for key, g := range groups {
		perObject := g.total / float64(len(g.objects))
		stats = append(stats, PlantHarvestStat{
			Plant:      key.plant,
			Unit:       key.unit,
			Total:      round(g.total, 2),
			Objects:    len(g.objects),
			PerObject:  round(perObject, 2),
			AvgYield:   g.avgYield,
			Efficiency: Efficiency(perObject, g.avgYield),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Plant != stats[j].Plant {
			return stats[i].Plant < stats[j].Plant
		}
		return stats[i].Unit < stats[j].Unit
	})
	return stats
}

func harvestPlantName(row repository.HarvestRow) string {
	switch {
	case row.PlantName != nil && *row.PlantName != "":
		return *row.PlantName
	case row.ObjectName != nil && *row.ObjectName != "":
		return *row.ObjectName
	default:
		return "Unknown"
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
