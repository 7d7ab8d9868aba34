package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yukikurage/growmap/internal/config"
	"github.com/yukikurage/growmap/internal/constants"
	"github.com/yukikurage/growmap/internal/credentials"
	"github.com/yukikurage/growmap/internal/database"
	"github.com/yukikurage/growmap/internal/handlers"
	"github.com/yukikurage/growmap/internal/logging"
	"github.com/yukikurage/growmap/internal/middleware"
	"github.com/yukikurage/growmap/internal/repository"
	"github.com/yukikurage/growmap/internal/services"
	"github.com/yukikurage/growmap/internal/utils"
	"github.com/yukikurage/growmap/internal/validation"
	"github.com/yukikurage/growmap/internal/weather"
	"github.com/yukikurage/growmap/internal/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	if err := validation.RegisterGin(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to register validators")
	}

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to database")
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to run migrations")
	}

	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	mapRepo := repository.NewMapRepository(db)
	objectRepo := repository.NewObjectRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	journalRepo := repository.NewJournalRepository(db)

	authService := services.NewAuthService(userRepo, credentials.NewBcryptHasher(cfg.BcryptCost), credentials.DefaultPasswordPolicy())
	mapService := services.NewMapService(mapRepo, objectRepo, catalogRepo)
	weatherService := services.NewWeatherService(
		weather.NewOpenMeteoClient(cfg.ForecastURL, cfg.ForecastTimeout),
		weather.NewIPAPIProvider(cfg.GeoIPURL, cfg.GeoIPTimeout),
		objectRepo,
		weather.Location{Lat: cfg.FallbackLat, Lon: cfg.FallbackLon, City: cfg.FallbackCity},
	)

	h := handlers.NewHandlers(
		authService,
		mapService,
		services.NewCatalogService(catalogRepo),
		services.NewJournalService(mapService, objectRepo, journalRepo),
		weatherService,
		services.NewAnalyticsService(mapService, journalRepo),
		handlers.NewHealthHandler(db),
	)

	tmpl, err := web.Templates()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to parse templates")
	}

	// Initialize Gin router
	r := gin.New()
	if err := trustProxies(r, cfg.TrustedProxies); err != nil {
		logging.Fatal().Err(err).Msg("Failed to configure trusted proxies")
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(web.Static()))
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("store", cfg.SessionStore).Msg("Failed to create session store")
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(constants.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	var loginLimiter *middleware.RateLimiter
	if cfg.LoginRatePerMinute > 0 {
		loginLimiter = middleware.NewRateLimiter(cfg.LoginRatePerMinute, time.Minute)
	}
	handlers.RegisterRoutes(r, h, mapService, loginLimiter)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Start server
	logging.Info().Str("port", cfg.Port).Str("db_driver", cfg.DBDriver).Msg("Server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		logging.Fatal().Err(err).Msg("Failed to start server")
	}
}

// trustProxies sets the proxies whose X-Forwarded-For header ClientIP honors.
// With none configured the header is ignored and the peer address is used.
func trustProxies(r *gin.Engine, proxies []string) error {
	if len(proxies) == 0 {
		return r.SetTrustedProxies(nil)
	}
	return r.SetTrustedProxies(proxies)
}

// newSessionStore builds the cookie store, or the redis store when
// SESSION_STORE=redis. Without a configured secret a random one is used and
// sessions do not survive a restart.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	secret := cfg.SessionSecret
	if secret == "" {
		generated, err := utils.GenerateSecret(32)
		if err != nil {
			return nil, err
		}
		secret = generated
		logging.Warn().Msg("SESSION_SECRET is not set, using a random secret")
	}

	if cfg.SessionStore == "redis" {
		return redisStore.NewStore(
			10, // pool size
			"tcp",
			cfg.RedisHost+":"+cfg.RedisPort,
			"", // password
			[]byte(secret),
		)
	}
	return cookie.NewStore([]byte(secret)), nil
}
