package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func num(v float64) *float64 {
	return &v
}

func day(maxC, minC, precipMM float64) DailyForecast {
	return DailyForecast{TempMax: num(maxC), TempMin: num(minC), Precipitation: num(precipMM)}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name           string
		day            DailyForecast
		recommendation string
		warnings       []WarningKind
	}{
		{"heavy rain wins regardless of heat", day(35, 20, 6), RecommendNoWatering, []WarningKind{WarningHeat}},
		{"exactly 5mm", day(20, 10, 5), RecommendNoWatering, nil},
		{"hot and dry", day(29, 15, 0), RecommendWatering, nil},
		{"hot with some rain", day(29, 15, 1), RecommendLightWatering, nil},
		{"mild", day(20, 8, 0), RecommendLightWatering, nil},
		{"frost", day(6, 2, 0), RecommendLightWatering, []WarningKind{WarningFrost}},
		{"both warnings", day(31, -1, 0), RecommendWatering, []WarningKind{WarningFrost, WarningHeat}},
		{"missing minimum raises no frost", DailyForecast{TempMax: num(31)}, RecommendLightWatering, []WarningKind{WarningHeat}},
		{"missing precipitation is not dry", DailyForecast{TempMax: num(29), TempMin: num(15)}, RecommendLightWatering, nil},
		{"missing maximum", DailyForecast{TempMin: num(10), Precipitation: num(0)}, RecommendLightWatering, nil},
		{"nothing known", DailyForecast{Date: "2024-07-01"}, RecommendLightWatering, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advice := Evaluate(tt.day)
			assert.Equal(t, tt.recommendation, advice.Recommendation)

			kinds := make([]WarningKind, 0, len(advice.Warnings))
			for _, w := range advice.Warnings {
				kinds = append(kinds, w.Kind)
			}
			if tt.warnings == nil {
				assert.Empty(t, kinds)
			} else {
				assert.Equal(t, tt.warnings, kinds)
			}
		})
	}
}

const openMeteoBody = `{
	"current_weather": {"temperature": 21.4, "windspeed": 7.2, "weathercode": 3, "time": "2024-07-01T12:00"},
	"daily": {
		"time": ["2024-07-01", "2024-07-02"],
		"temperature_2m_max": [29.0, null],
		"temperature_2m_min": [14.5, 13.0],
		"precipitation_sum": [0.0, 6.2]
	}
}`

func TestOpenMeteoClientForecast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "55.7558", r.URL.Query().Get("latitude"))
		assert.Equal(t, "true", r.URL.Query().Get("current_weather"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(openMeteoBody))
	}))
	defer srv.Close()

	client := NewOpenMeteoClient(srv.URL, time.Second)
	forecast, err := client.Forecast(context.Background(), 55.7558, 37.6173)
	require.NoError(t, err)

	assert.InDelta(t, 21.4, forecast.Current.Temperature, 1e-9)
	require.Len(t, forecast.Daily, 2)
	assert.Equal(t, "2024-07-01", forecast.Daily[0].Date)
	require.NotNil(t, forecast.Daily[0].TempMax)
	assert.InDelta(t, 29.0, *forecast.Daily[0].TempMax, 1e-9)
	assert.Nil(t, forecast.Daily[1].TempMax)
	require.NotNil(t, forecast.Daily[1].Precipitation)
	assert.InDelta(t, 6.2, *forecast.Daily[1].Precipitation, 1e-9)
}

func TestOpenMeteoClientNullValuesDoNotWarn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"daily": {
			"time": ["2024-07-01"],
			"temperature_2m_max": [31],
			"temperature_2m_min": [null],
			"precipitation_sum": [null]
		}}`))
	}))
	defer srv.Close()

	forecast, err := NewOpenMeteoClient(srv.URL, time.Second).Forecast(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, forecast.Daily, 1)

	today := forecast.Daily[0]
	assert.Nil(t, today.TempMin)
	assert.Nil(t, today.Precipitation)

	advice := Evaluate(today)
	assert.Equal(t, RecommendLightWatering, advice.Recommendation)
	require.Len(t, advice.Warnings, 1)
	assert.Equal(t, WarningHeat, advice.Warnings[0].Kind)
}

func TestDailyForecastEncodesMissingAsNull(t *testing.T) {
	raw, err := json.Marshal(DailyForecast{Date: "2024-07-01", TempMax: num(20)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-07-01","temp_max":20,"temp_min":null,"precipitation":null}`, string(raw))
}

func TestOpenMeteoClientUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewOpenMeteoClient(srv.URL, time.Second)
	_, err := client.Forecast(context.Background(), 1, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForecastUnavailable))
}

func TestOpenMeteoClientBreakerOpens(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewOpenMeteoClient(srv.URL, time.Second)
	for i := 0; i < 8; i++ {
		_, err := client.Forecast(context.Background(), 1, 2)
		require.ErrorIs(t, err, ErrForecastUnavailable)
	}
	assert.Equal(t, 5, calls)
}

func TestOpenMeteoClientEmptyDaily(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"daily": {"time": []}}`))
	}))
	defer srv.Close()

	_, err := NewOpenMeteoClient(srv.URL, time.Second).Forecast(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrForecastUnavailable)
}

func TestIPAPIProviderLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/8.8.8.8", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"success","country":"United States","city":"Mountain View","lat":37.4,"lon":-122.1}`))
	}))
	defer srv.Close()

	loc, err := NewIPAPIProvider(srv.URL, time.Second).Lookup(context.Background(), "8.8.8.8")
	require.NoError(t, err)
	assert.Equal(t, "Mountain View", loc.City)
	assert.Equal(t, SourceIP, loc.Source)
	assert.InDelta(t, 37.4, loc.Lat, 1e-9)
}

func TestIPAPIProviderPrivateAddressQueriesServerLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"success","city":"Kazan","lat":55.79,"lon":49.12}`))
	}))
	defer srv.Close()

	loc, err := NewIPAPIProvider(srv.URL, time.Second).Lookup(context.Background(), "192.168.1.20")
	require.NoError(t, err)
	assert.Equal(t, "Kazan", loc.City)
}

func TestIPAPIProviderFailStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
	}))
	defer srv.Close()

	_, err := NewIPAPIProvider(srv.URL, time.Second).Lookup(context.Background(), "8.8.4.4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved range")
}

func TestIPAPIProviderTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewIPAPIProvider(srv.URL, 20*time.Millisecond).Lookup(context.Background(), "8.8.4.4")
	assert.Error(t, err)
}

func TestIsPrivateIP(t *testing.T) {
	assert.True(t, IsPrivateIP("127.0.0.1"))
	assert.True(t, IsPrivateIP("10.1.2.3"))
	assert.True(t, IsPrivateIP("::1"))
	assert.False(t, IsPrivateIP("8.8.8.8"))
	assert.False(t, IsPrivateIP("not-an-ip"))
}
