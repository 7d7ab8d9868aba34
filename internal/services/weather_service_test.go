package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/growmap/internal/weather"
)

var testFallback = weather.Location{Lat: 55.75, Lon: 37.62, City: "Moscow"}

func forecastDay(date string, maxC, minC, precipMM float64) weather.DailyForecast {
	return weather.DailyForecast{Date: date, TempMax: ptr(maxC), TempMin: ptr(minC), Precipitation: ptr(precipMM)}
}

func forecastFor(day weather.DailyForecast) *weather.Forecast {
	return &weather.Forecast{
		Current: weather.CurrentWeather{Temperature: 18},
		Daily:   []weather.DailyForecast{day},
	}
}

func TestWeatherService_ResolveLocation(t *testing.T) {
	geo := &fakeGeo{loc: &weather.Location{Lat: 48.85, Lon: 2.35, City: "Paris", Source: weather.SourceIP}}
	svc := NewWeatherService(&fakeForecast{}, geo, nil, testFallback)
	ctx := context.Background()

	loc := svc.ResolveLocation(ctx, LocationRequest{Lat: ptr(10.0), Lon: ptr(20.0), ClientIP: "8.8.8.8"})
	assert.Equal(t, weather.SourceExplicit, loc.Source)
	assert.Equal(t, 10.0, loc.Lat)

	loc = svc.ResolveLocation(ctx, LocationRequest{Cached: &weather.Location{Lat: 1, Lon: 2, City: "Cached"}})
	assert.Equal(t, weather.SourceSession, loc.Source)
	assert.Equal(t, "Cached", loc.City)
	assert.Zero(t, geo.calls)

	loc = svc.ResolveLocation(ctx, LocationRequest{Lat: ptr(123.0), Lon: ptr(20.0), ClientIP: "8.8.8.8"})
	assert.Equal(t, weather.SourceIP, loc.Source)
	assert.Equal(t, "Paris", loc.City)
	assert.Equal(t, 1, geo.calls)
}

func TestWeatherService_GeolocationFailureFallsBack(t *testing.T) {
	svc := NewWeatherService(&fakeForecast{}, &fakeGeo{err: errUpstream}, nil, testFallback)

	loc := svc.ResolveLocation(context.Background(), LocationRequest{ClientIP: "8.8.8.8"})
	assert.Equal(t, weather.SourceFallback, loc.Source)
	assert.Equal(t, "Moscow", loc.City)
}

func TestWeatherService_ReportAdvice(t *testing.T) {
	tests := []struct {
		name     string
		day      weather.DailyForecast
		want     string
		warnings int
	}{
		{"heavy rain", forecastDay("", 20, 10, 6), weather.RecommendNoWatering, 0},
		{"hot and dry", forecastDay("", 29, 15, 0.2), weather.RecommendWatering, 0},
		{"mild", forecastDay("", 22, 12, 2), weather.RecommendLightWatering, 0},
		{"frost", forecastDay("", 8, 1, 0), weather.RecommendLightWatering, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupServiceEnv(t)
			user := env.signup(t, "gardener")
			svc := NewWeatherService(&fakeForecast{forecast: forecastFor(tt.day)}, nil, env.objects, testFallback)

			report, err := svc.Report(context.Background(), user.ID, testFallback)
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.Advice.Recommendation)
			assert.Len(t, report.Advice.Warnings, tt.warnings)
			assert.Empty(t, report.AtRisk)
		})
	}
}

func TestWeatherService_ReportAtRiskPlants(t *testing.T) {
	env := setupServiceEnv(t)
	user := env.signup(t, "gardener")
	m := env.createMap(t, user.ID)
	tomato := env.plantCircle(t, user.ID, m.ID, "Tomato", 1, 1)
	env.plantCircle(t, user.ID, m.ID, "Rosemary", 3, 3)

	day := forecastDay("2024-04-02", 9, -1, 0)
	svc := NewWeatherService(&fakeForecast{forecast: forecastFor(day)}, nil, env.objects, testFallback)

	report, err := svc.Report(context.Background(), user.ID, testFallback)
	require.NoError(t, err)
	require.Len(t, report.AtRisk, 1)
	assert.Equal(t, tomato.ID, report.AtRisk[0].ObjectID)
	assert.Equal(t, "Tomato", report.AtRisk[0].Name)
	assert.Equal(t, weather.WarningFrost, report.AtRisk[0].Risk)
	assert.Equal(t, "2024-04-02", report.Today.Date)
}

func TestWeatherService_MissingMinimumFlagsNoFrostRisk(t *testing.T) {
	env := setupServiceEnv(t)
	user := env.signup(t, "gardener")
	m := env.createMap(t, user.ID)
	env.plantCircle(t, user.ID, m.ID, "Tomato", 1, 1)

	day := weather.DailyForecast{Date: "2024-04-02", TempMax: ptr(12.0)}
	svc := NewWeatherService(&fakeForecast{forecast: forecastFor(day)}, nil, env.objects, testFallback)

	report, err := svc.Report(context.Background(), user.ID, testFallback)
	require.NoError(t, err)
	assert.Empty(t, report.Advice.Warnings)
	assert.Empty(t, report.AtRisk)
	assert.Equal(t, weather.RecommendLightWatering, report.Advice.Recommendation)
}

func TestWeatherService_ForecastFailure(t *testing.T) {
	svc := NewWeatherService(&fakeForecast{err: errUpstream}, nil, nil, testFallback)

	_, err := svc.Report(context.Background(), 1, testFallback)
	assert.ErrorIs(t, err, ErrWeatherUnavailable)
}
