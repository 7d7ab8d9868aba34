package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/growmap/internal/constants"
	"github.com/yukikurage/growmap/internal/middleware"
	"github.com/yukikurage/growmap/internal/models"
	"github.com/yukikurage/growmap/internal/services"
)

// Handlers groups every route handler the router mounts.
type Handlers struct {
	Auth      *AuthHandler
	Maps      *MapHandler
	Objects   *ObjectHandler
	Catalog   *CatalogHandler
	Journal   *JournalHandler
	Weather   *WeatherHandler
	Analytics *AnalyticsHandler
	Health    *HealthHandler
}

// NewHandlers wires handlers to their services.
func NewHandlers(
	auth *services.AuthService,
	maps *services.MapService,
	catalog *services.CatalogService,
	journal *services.JournalService,
	weather *services.WeatherService,
	analytics *services.AnalyticsService,
	health *HealthHandler,
) Handlers {
	return Handlers{
		Auth:      NewAuthHandler(auth),
		Maps:      NewMapHandler(maps),
		Objects:   NewObjectHandler(maps),
		Catalog:   NewCatalogHandler(catalog),
		Journal:   NewJournalHandler(journal),
		Weather:   NewWeatherHandler(weather),
		Analytics: NewAnalyticsHandler(analytics, maps),
		Health:    health,
	}
}

// RegisterRoutes mounts the HTML pages and the JSON API. Session middleware
// must already be installed on r.
func RegisterRoutes(r *gin.Engine, h Handlers, maps *services.MapService, loginLimiter *middleware.RateLimiter) {
	r.GET("/health", h.Health.Health)

	r.GET("/", h.Auth.Home)
	r.GET("/login", h.Auth.LoginPage)
	r.GET("/register", h.Auth.RegisterPage)
	r.GET("/logout", h.Auth.Logout)
	if loginLimiter != nil {
		r.POST("/login", middleware.RateLimit(loginLimiter), h.Auth.Login)
		r.POST("/register", middleware.RateLimit(loginLimiter), h.Auth.Register)
	} else {
		r.POST("/login", h.Auth.Login)
		r.POST("/register", h.Auth.Register)
	}

	pages := r.Group("")
	pages.Use(middleware.RequirePage())
	{
		pages.GET("/maps", h.Maps.ListPage)
		pages.GET("/maps/create", h.Maps.CreatePage)
		pages.POST("/maps/create", h.Maps.Create)
		pages.GET("/editor/:id", h.Maps.EditorPage)
		pages.GET("/weather", h.Weather.Page)
		pages.POST("/weather", h.Weather.Page)
		pages.GET("/analytics", h.Analytics.Page)
	}

	requireMap := middleware.RequireOwned[models.GardenMap]("id", constants.ContextKeyMap, "map", maps.GetOwnedMap, services.ErrMapNotFound)

	api := r.Group("/api")
	api.Use(middleware.RequireAuth())
	{
		api.GET("/me", h.Auth.GetCurrentUser)

		api.GET("/maps", h.Maps.List)
		api.DELETE("/maps/:id", requireMap, h.Maps.Delete)
		api.GET("/maps/:id/objects", requireMap, h.Objects.List)
		api.POST("/maps/:id/objects", requireMap, h.Objects.Create)
		api.GET("/maps/:id/conflicts", requireMap, h.Objects.Conflicts)
		api.DELETE("/objects/:id", h.Objects.Delete)

		api.GET("/catalog", h.Catalog.Plants)
		api.GET("/compat", h.Catalog.Compat)

		api.GET("/logs", h.Journal.ListLogs)
		api.POST("/logs", h.Journal.LogAction)
		api.POST("/harvest", h.Journal.AddHarvest)
		api.GET("/harvests", h.Journal.ListHarvests)
		api.DELETE("/harvests/:id", h.Journal.DeleteHarvest)
		api.GET("/export/journal.xlsx", h.Journal.Export)

		api.GET("/weather", h.Weather.Report)
		api.GET("/location/ip", h.Weather.IPLocation)
		api.GET("/analytics", h.Analytics.Weekly)
	}
}
