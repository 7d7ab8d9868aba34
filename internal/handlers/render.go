package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/growmap/internal/errors"
	"github.com/yukikurage/growmap/internal/logging"
	"github.com/yukikurage/growmap/internal/middleware"
	"github.com/yukikurage/growmap/internal/services"
)

// wantsJSON reports whether a route that serves both forms and JSON should
// answer with JSON.
func wantsJSON(c *gin.Context) bool {
	if strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), gin.MIMEJSON)
}

// renderPage renders a template with the fields every layout needs.
func renderPage(c *gin.Context, status int, name, title string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["Username"] = middleware.GetUsername(c)
	c.HTML(status, name, data)
}

func renderErrorPage(c *gin.Context, status int, message string) {
	renderPage(c, status, "error.html", http.StatusText(status), gin.H{"Message": message})
}

// currentUser reads the authenticated user id; routes behind RequireAuth or
// RequirePage always have one.
func currentUser(c *gin.Context) (uint64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
	}
	return userID, ok
}

func parseIDParam(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}

// optionalMapID parses the map_id query parameter. Absent means all maps.
func optionalMapID(c *gin.Context) (*uint64, bool) {
	raw := c.Query("map_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid map_id")
		return nil, false
	}
	return &id, true
}

// errorStatus maps service errors to an HTTP status and client message.
// Unknown errors are logged and reported as a generic 500.
func errorStatus(err error) (int, string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message()
	case errors.Is(err, services.ErrUsernameTaken):
		return http.StatusConflict, err.Error()
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, services.ErrMapNotFound),
		errors.Is(err, services.ErrObjectNotFound),
		errors.Is(err, services.ErrHarvestNotFound),
		errors.Is(err, services.ErrCompatNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrWeatherUnavailable):
		return http.StatusBadGateway, services.ErrWeatherUnavailable.Error()
	default:
		logging.Error().Err(err).Msg("Request failed")
		return http.StatusInternalServerError, "Internal server error"
	}
}

// respondServiceError writes the JSON error body for a service error.
func respondServiceError(c *gin.Context, err error) {
	status, message := errorStatus(err)
	switch status {
	case http.StatusBadRequest:
		apierrors.BadRequest(c, message)
	case http.StatusConflict:
		apierrors.Conflict(c, message)
	case http.StatusUnauthorized:
		apierrors.InvalidCredentials(c, message)
	case http.StatusNotFound:
		apierrors.NotFound(c, message)
	case http.StatusBadGateway:
		apierrors.BadGateway(c, message)
	default:
		apierrors.InternalError(c, message)
	}
}
