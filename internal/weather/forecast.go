package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/yukikurage/growmap/internal/logging"
	"github.com/yukikurage/growmap/internal/metrics"
)

// ErrForecastUnavailable wraps every failure to obtain a forecast, including
// calls rejected by the open circuit breaker.
var ErrForecastUnavailable = errors.New("weather forecast unavailable")

// CurrentWeather is the observation at request time.
type CurrentWeather struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windspeed"`
	WeatherCode int     `json:"weathercode"`
	Time        string  `json:"time"`
}

// DailyForecast is one day of the 7-day forecast. Values the upstream
// reported as null stay nil.
type DailyForecast struct {
	Date          string   `json:"date"`
	TempMax       *float64 `json:"temp_max"`
	TempMin       *float64 `json:"temp_min"`
	Precipitation *float64 `json:"precipitation"`
}

type Forecast struct {
	Current CurrentWeather  `json:"current"`
	Daily   []DailyForecast `json:"daily"`
}

// ForecastProvider fetches a forecast for a coordinate.
type ForecastProvider interface {
	Forecast(ctx context.Context, lat, lon float64) (*Forecast, error)
}

type openMeteoResponse struct {
	CurrentWeather *CurrentWeather `json:"current_weather"`
	Daily          struct {
		Time             []string   `json:"time"`
		TemperatureMax   []*float64 `json:"temperature_2m_max"`
		TemperatureMin   []*float64 `json:"temperature_2m_min"`
		PrecipitationSum []*float64 `json:"precipitation_sum"`
	} `json:"daily"`
}

// OpenMeteoClient queries the Open-Meteo forecast API behind a circuit breaker.
type OpenMeteoClient struct {
	client  *http.Client
	baseURL string
	cb      *gobreaker.CircuitBreaker[*Forecast]
	name    string
}

func NewOpenMeteoClient(baseURL string, timeout time.Duration) *OpenMeteoClient {
	name := "open-meteo"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[*Forecast](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &OpenMeteoClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		cb:      cb,
		name:    name,
	}
}

func (c *OpenMeteoClient) Forecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	forecast, err := c.cb.Execute(func() (*Forecast, error) {
		return c.fetch(ctx, lat, lon)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordUpstream(c.name, "rejected")
		} else {
			metrics.RecordUpstream(c.name, "failure")
		}
		return nil, fmt.Errorf("%w: %v", ErrForecastUnavailable, err)
	}

	metrics.RecordUpstream(c.name, "success")
	return forecast, nil
}

func (c *OpenMeteoClient) fetch(ctx context.Context, lat, lon float64) (*Forecast, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	q.Set("current_weather", "true")
	q.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum")
	q.Set("forecast_days", "7")
	q.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query open-meteo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-meteo returned status %d", resp.StatusCode)
	}

	var body openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode open-meteo response: %w", err)
	}

	return convertOpenMeteoResponse(&body)
}

func convertOpenMeteoResponse(body *openMeteoResponse) (*Forecast, error) {
	if len(body.Daily.Time) == 0 {
		return nil, errors.New("open-meteo response has no daily entries")
	}

	forecast := &Forecast{Daily: make([]DailyForecast, len(body.Daily.Time))}
	if body.CurrentWeather != nil {
		forecast.Current = *body.CurrentWeather
	}

	for i, date := range body.Daily.Time {
		forecast.Daily[i] = DailyForecast{
			Date:          date,
			TempMax:       valueAt(body.Daily.TemperatureMax, i),
			TempMin:       valueAt(body.Daily.TemperatureMin, i),
			Precipitation: valueAt(body.Daily.PrecipitationSum, i),
		}
	}
	return forecast, nil
}

func valueAt(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
