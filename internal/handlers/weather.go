package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/growmap/internal/constants"
	"github.com/yukikurage/growmap/internal/logging"
	"github.com/yukikurage/growmap/internal/services"
	"github.com/yukikurage/growmap/internal/weather"
)

type WeatherHandler struct {
	weather *services.WeatherService
}

func NewWeatherHandler(weather *services.WeatherService) *WeatherHandler {
	return &WeatherHandler{weather: weather}
}

// resolveLocation reads explicit coordinates from the query or form and
// falls back to the session cache and IP lookup. IP results are cached in
// the session.
func (h *WeatherHandler) resolveLocation(c *gin.Context) weather.Location {
	session := sessions.Default(c)

	loc := h.weather.ResolveLocation(c.Request.Context(), services.LocationRequest{
		Lat:      coordinate(c, "lat"),
		Lon:      coordinate(c, "lon"),
		Cached:   cachedLocation(session),
		ClientIP: c.ClientIP(),
	})

	if loc.Source == weather.SourceIP {
		session.Set(constants.SessionKeyGeoLat, loc.Lat)
		session.Set(constants.SessionKeyGeoLon, loc.Lon)
		session.Set(constants.SessionKeyGeoCity, loc.City)
		if err := session.Save(); err != nil {
			logging.Warn().Err(err).Msg("Failed to cache location in session")
		}
	}
	return loc
}

func coordinate(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		raw = c.PostForm(key)
	}
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func cachedLocation(session sessions.Session) *weather.Location {
	lat, okLat := session.Get(constants.SessionKeyGeoLat).(float64)
	lon, okLon := session.Get(constants.SessionKeyGeoLon).(float64)
	if !okLat || !okLon {
		return nil
	}
	city, _ := session.Get(constants.SessionKeyGeoCity).(string)
	return &weather.Location{Lat: lat, Lon: lon, City: city}
}

// Page renders today's advice. GET and POST (coordinate form) share it.
func (h *WeatherHandler) Page(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	loc := h.resolveLocation(c)
	report, err := h.weather.Report(c.Request.Context(), userID, loc)
	if err != nil {
		status, message := errorStatus(err)
		renderPage(c, status, "weather.html", "Weather", gin.H{"Location": loc, "Error": message})
		return
	}
	renderPage(c, http.StatusOK, "weather.html", "Weather", gin.H{"Location": loc, "Report": report})
}

func (h *WeatherHandler) Report(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	report, err := h.weather.Report(c.Request.Context(), userID, h.resolveLocation(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// IPLocation geolocates the caller without touching the session cache.
func (h *WeatherHandler) IPLocation(c *gin.Context) {
	c.JSON(http.StatusOK, h.weather.LookupIP(c.Request.Context(), c.ClientIP()))
}
