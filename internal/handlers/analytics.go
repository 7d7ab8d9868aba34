package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/growmap/internal/dto"
	"github.com/yukikurage/growmap/internal/services"
)

type AnalyticsHandler struct {
	analytics *services.AnalyticsService
	maps      *services.MapService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService, maps *services.MapService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, maps: maps}
}

// Page renders the weekly charts with a map selector.
func (h *AnalyticsHandler) Page(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	mapID, ok := optionalMapID(c)
	if !ok {
		return
	}

	result, err := h.analytics.Weekly(userID, mapID)
	if err != nil {
		status, message := errorStatus(err)
		renderErrorPage(c, status, message)
		return
	}
	maps, err := h.maps.ListMaps(userID)
	if err != nil {
		status, message := errorStatus(err)
		renderErrorPage(c, status, message)
		return
	}

	var selected uint64
	if mapID != nil {
		selected = *mapID
	}
	renderPage(c, http.StatusOK, "analytics.html", "Analytics", gin.H{
		"Analytics": result,
		"Maps":      dto.ToMapDTOs(maps),
		"Selected":  selected,
	})
}

func (h *AnalyticsHandler) Weekly(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	mapID, ok := optionalMapID(c)
	if !ok {
		return
	}

	result, err := h.analytics.Weekly(userID, mapID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
