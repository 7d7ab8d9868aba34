package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/growmap/internal/constants"
	"github.com/yukikurage/growmap/internal/dto"
	apierrors "github.com/yukikurage/growmap/internal/errors"
	"github.com/yukikurage/growmap/internal/models"
	"github.com/yukikurage/growmap/internal/services"
	"github.com/yukikurage/growmap/internal/validation"
)

type MapHandler struct {
	maps *services.MapService
}

func NewMapHandler(maps *services.MapService) *MapHandler {
	return &MapHandler{maps: maps}
}

type createMapRequest struct {
	Name    string  `form:"name" json:"name" binding:"required,max=100"`
	WidthM  float64 `form:"width_m" json:"width_m" binding:"required,gt=0,lte=1000"`
	HeightM float64 `form:"height_m" json:"height_m" binding:"required,gt=0,lte=1000"`
}

// ListPage renders the user's maps.
func (h *MapHandler) ListPage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	maps, err := h.maps.ListMaps(userID)
	if err != nil {
		status, message := errorStatus(err)
		renderErrorPage(c, status, message)
		return
	}
	renderPage(c, http.StatusOK, "maps.html", "My maps", gin.H{"Maps": dto.ToMapDTOs(maps)})
}

func (h *MapHandler) CreatePage(c *gin.Context) {
	renderPage(c, http.StatusOK, "map_create.html", "New map", gin.H{"MaxDimension": constants.MaxMapDimension})
}

// Create handles both the new-map form and JSON clients.
func (h *MapHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req createMapRequest
	if err := c.ShouldBind(&req); err != nil {
		h.createFailed(c, http.StatusBadRequest, validation.Message(err), req)
		return
	}

	m, err := h.maps.CreateMap(userID, services.CreateMapInput{
		Name:    req.Name,
		WidthM:  req.WidthM,
		HeightM: req.HeightM,
	})
	if err != nil {
		if wantsJSON(c) {
			respondServiceError(c, err)
			return
		}
		status, message := errorStatus(err)
		h.createFailed(c, status, message, req)
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusCreated, dto.ToMapDTO(*m))
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/editor/%d", m.ID))
}

func (h *MapHandler) createFailed(c *gin.Context, status int, message string, req createMapRequest) {
	if wantsJSON(c) {
		apierrors.BadRequest(c, message)
		return
	}
	renderPage(c, status, "map_create.html", "New map", gin.H{
		"Error":        message,
		"Form":         req,
		"MaxDimension": constants.MaxMapDimension,
	})
}

// EditorPage renders the SVG editor for an owned map.
func (h *MapHandler) EditorPage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	mapID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		renderErrorPage(c, http.StatusNotFound, services.ErrMapNotFound.Error())
		return
	}

	m, err := h.maps.GetOwnedMap(userID, mapID)
	if err != nil {
		status, message := errorStatus(err)
		renderErrorPage(c, status, message)
		return
	}

	renderPage(c, http.StatusOK, "editor.html", m.Name, gin.H{
		"Map":         dto.ToMapDTO(*m),
		"ActionTypes": models.ValidActionTypes,
	})
}

// List returns the user's maps ordered by id.
func (h *MapHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	maps, err := h.maps.ListMaps(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMapDTOs(maps))
}

// Delete removes an owned map and everything recorded on it.
// The map was loaded by RequireOwned.
func (h *MapHandler) Delete(c *gin.Context) {
	m, ok := ownedMap(c)
	if !ok {
		return
	}

	if err := h.maps.DeleteMapOn(m); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
