package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/growmap/internal/constants"
	"github.com/yukikurage/growmap/internal/credentials"
	"github.com/yukikurage/growmap/internal/database"
	"github.com/yukikurage/growmap/internal/middleware"
	"github.com/yukikurage/growmap/internal/models"
	"github.com/yukikurage/growmap/internal/repository"
	"github.com/yukikurage/growmap/internal/services"
	"github.com/yukikurage/growmap/internal/validation"
	"github.com/yukikurage/growmap/internal/weather"
	"github.com/yukikurage/growmap/internal/web"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "Sunflower#2024"

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterGin(); err != nil {
		panic(err)
	}
}

type fakeForecast struct {
	forecast *weather.Forecast
	err      error
}

func (f *fakeForecast) Forecast(_ context.Context, _, _ float64) (*weather.Forecast, error) {
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
	loc := *f.loc
	return &loc, nil
}

func (f *fakeGeo) Name() string {
	return "fake"
}

type handlerTestEnv struct {
	db       *gorm.DB
	router   *gin.Engine
	auth     *services.AuthService
	forecast *fakeForecast
	geo      *fakeGeo
}

func setupHandlerTestEnv(t *testing.T) handlerTestEnv {
	t.Helper()
	return setupHandlerTestEnvWithLimiter(t, nil)
}

func setupHandlerTestEnvWithLimiter(t *testing.T, limiter *middleware.RateLimiter) handlerTestEnv {
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

	authService := services.NewAuthService(repository.NewUserRepository(db), credentials.NewBcryptHasher(bcrypt.MinCost), credentials.DefaultPasswordPolicy())
	mapService := services.NewMapService(mapRepo, objectRepo, catalogRepo)

	forecast := &fakeForecast{forecast: &weather.Forecast{
		Current: weather.CurrentWeather{Temperature: 18, WindSpeed: 3},
		Daily:   []weather.DailyForecast{{Date: "2024-06-01", TempMax: ptr(22.0), TempMin: ptr(12.0), Precipitation: ptr(0.5)}},
	}}
	geo := &fakeGeo{loc: &weather.Location{Lat: 59.93, Lon: 30.31, City: "Saint Petersburg", Source: weather.SourceIP}}
	fallback := weather.Location{Lat: 55.7558, Lon: 37.6173, City: "Moscow"}

	h := NewHandlers(
		authService,
		mapService,
		services.NewCatalogService(catalogRepo),
		services.NewJournalService(mapService, objectRepo, journalRepo),
		services.NewWeatherService(forecast, geo, objectRepo, fallback),
		services.NewAnalyticsService(mapService, journalRepo),
		NewHealthHandler(db),
	)

	tmpl, err := web.Templates()
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	RegisterRoutes(r, h, mapService, limiter)

	return handlerTestEnv{
		db:       db,
		router:   r,
		auth:     authService,
		forecast: forecast,
		geo:      geo,
	}
}

// client keeps the session cookie between requests.
type client struct {
	env     handlerTestEnv
	cookies map[string]*http.Cookie
}

func (env handlerTestEnv) client() *client {
	return &client{env: env, cookies: map[string]*http.Cookie{}}
}

func (cl *client) send(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range cl.cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	cl.env.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(cl.cookies, c.Name)
			continue
		}
		cl.cookies[c.Name] = c
	}
	return w
}

func (cl *client) json(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return cl.send(req)
}

func (cl *client) form(method, path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return cl.send(req)
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	return cl.send(httptest.NewRequest(http.MethodGet, path, nil))
}

// signedIn registers username and returns a logged-in client.
func (env handlerTestEnv) signedIn(t *testing.T, username string) (*client, *models.User) {
	t.Helper()

	user, err := env.auth.Signup(services.SignupInput{Username: username, Password: testPassword})
	require.NoError(t, err)

	cl := env.client()
	w := cl.json(t, http.MethodPost, "/login", map[string]string{"username": username, "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code)
	return cl, user
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func ptr[T any](v T) *T {
	return &v
}

// handlerTestContext builds a context for calling a handler directly.
func handlerTestContext(method, target string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

var errUpstream = errors.New("upstream down")
