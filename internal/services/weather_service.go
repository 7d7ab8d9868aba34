package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/yukikurage/growmap/internal/logging"
	"github.com/yukikurage/growmap/internal/models"
	"github.com/yukikurage/growmap/internal/repository"
	"github.com/yukikurage/growmap/internal/weather"
)

// ErrWeatherUnavailable is returned when no forecast could be fetched.
var ErrWeatherUnavailable = errors.New("weather service unavailable")

// WeatherService resolves the user's location and turns a forecast into
// watering advice.
type WeatherService struct {
	forecast weather.ForecastProvider
	geo      weather.GeoIPProvider
	objects  repository.ObjectRepository
	fallback weather.Location
}

func NewWeatherService(forecast weather.ForecastProvider, geo weather.GeoIPProvider, objects repository.ObjectRepository, fallback weather.Location) *WeatherService {
	fallback.Source = weather.SourceFallback
	return &WeatherService{
		forecast: forecast,
		geo:      geo,
		objects:  objects,
		fallback: fallback,
	}
}

// LocationRequest carries every location hint available for a request.
type LocationRequest struct {
	Lat      *float64
	Lon      *float64
	Cached   *weather.Location
	ClientIP string
}

// ResolveLocation picks, in order: explicit coordinates, the session cache,
// an IP lookup, then the configured fallback. It never fails.
func (s *WeatherService) ResolveLocation(ctx context.Context, req LocationRequest) weather.Location {
	if req.Lat != nil && req.Lon != nil && validCoordinate(*req.Lat, *req.Lon) {
		return weather.Location{Lat: *req.Lat, Lon: *req.Lon, Source: weather.SourceExplicit}
	}

	if req.Cached != nil {
		loc := *req.Cached
		loc.Source = weather.SourceSession
		return loc
	}

	return s.LookupIP(ctx, req.ClientIP)
}

// LookupIP geolocates clientIP, returning the fallback on any failure.
func (s *WeatherService) LookupIP(ctx context.Context, clientIP string) weather.Location {
	if s.geo == nil {
		return s.fallback
	}

	loc, err := s.geo.Lookup(ctx, clientIP)
	if err != nil || !validCoordinate(loc.Lat, loc.Lon) {
		logging.Warn().Err(err).Str("provider", s.geo.Name()).Msg("IP geolocation failed, using fallback location")
		return s.fallback
	}
	return *loc
}

func validCoordinate(lat, lon float64) bool {
	return !math.IsNaN(lat) && !math.IsNaN(lon) && lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// AtRiskPlant is a placed plant whose catalog entry is sensitive to a
// warning that fired today.
type AtRiskPlant struct {
	ObjectID  uint64              `json:"object_id"`
	MapID     uint64              `json:"map_id"`
	Name      string              `json:"name"`
	PlantName string              `json:"plant_name"`
	Risk      weather.WarningKind `json:"risk"`
}

type WeatherReport struct {
	Location weather.Location        `json:"location"`
	Current  weather.CurrentWeather  `json:"current"`
	Daily    []weather.DailyForecast `json:"daily"`
	Today    weather.DailyForecast   `json:"today"`
	Advice   weather.Advice          `json:"advice"`
	AtRisk   []AtRiskPlant           `json:"at_risk"`
}

// Report fetches the forecast for loc and evaluates today's entry.
func (s *WeatherService) Report(ctx context.Context, userID uint64, loc weather.Location) (*WeatherReport, error) {
	forecast, err := s.forecast.Forecast(ctx, loc.Lat, loc.Lon)
	if err != nil {
		logging.Error().Err(err).Float64("lat", loc.Lat).Float64("lon", loc.Lon).Msg("Forecast request failed")
		return nil, fmt.Errorf("%w: %v", ErrWeatherUnavailable, err)
	}
	if len(forecast.Daily) == 0 {
		return nil, ErrWeatherUnavailable
	}

	today := forecast.Daily[0]
	advice := weather.Evaluate(today)

	atRisk, err := s.plantsAtRisk(userID, advice.Warnings)
	if err != nil {
		return nil, err
	}

	return &WeatherReport{
		Location: loc,
		Current:  forecast.Current,
		Daily:    forecast.Daily,
		Today:    today,
		Advice:   advice,
		AtRisk:   atRisk,
	}, nil
}

func (s *WeatherService) plantsAtRisk(userID uint64, warnings []weather.Warning) ([]AtRiskPlant, error) {
	atRisk := []AtRiskPlant{}
	if len(warnings) == 0 {
		return atRisk, nil
	}

	plants, err := s.objects.ListPlantsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", err)
	}

	for _, w := range warnings {
		for _, p := range plants {
			if !sensitiveTo(p, w.Kind) {
				continue
			}
			atRisk = append(atRisk, AtRiskPlant{
				ObjectID:  p.ID,
				MapID:     p.MapID,
				Name:      displayName(p),
				PlantName: derefString(p.PlantName),
				Risk:      w.Kind,
			})
		}
	}
	return atRisk, nil
}

func sensitiveTo(p models.MapObjectWithPlant, kind weather.WarningKind) bool {
	switch kind {
	case weather.WarningFrost:
		return p.FrostSensitive != nil && *p.FrostSensitive
	case weather.WarningHeat:
		return p.HeatSensitive != nil && *p.HeatSensitive
	default:
		return false
	}
}

func displayName(p models.MapObjectWithPlant) string {
	if p.Name != nil && *p.Name != "" {
		return *p.Name
	}
	return derefString(p.PlantName)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
