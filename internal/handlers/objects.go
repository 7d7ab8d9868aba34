package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/growmap/internal/constants"
	"github.com/yukikurage/growmap/internal/dto"
	apierrors "github.com/yukikurage/growmap/internal/errors"
	"github.com/yukikurage/growmap/internal/middleware"
	"github.com/yukikurage/growmap/internal/models"
	"github.com/yukikurage/growmap/internal/services"
	"github.com/yukikurage/growmap/internal/validation"
)

// ObjectHandler serves the objects placed on a map. Map-scoped routes run
// behind RequireOwned.
type ObjectHandler struct {
	maps *services.MapService
}

func NewObjectHandler(maps *services.MapService) *ObjectHandler {
	return &ObjectHandler{maps: maps}
}

type createObjectRequest struct {
	Type      string      `json:"type" binding:"required,oneof=plant building zone"`
	Shape     string      `json:"shape" binding:"required,oneof=circle rect polygon"`
	Name      *string     `json:"name" binding:"omitempty,max=100"`
	PlantID   *uint64     `json:"plant_id"`
	PlantedAt *string     `json:"planted_at" binding:"omitempty,dateonly"`
	BedType   *string     `json:"bed_type" binding:"omitempty,oneof=bed pot"`
	X         *float64    `json:"x"`
	Y         *float64    `json:"y"`
	Size      *float64    `json:"size"`
	Width     *float64    `json:"width"`
	Height    *float64    `json:"height"`
	Points    [][]float64 `json:"points"`
	Color     *string     `json:"color" binding:"omitempty,max=20"`
}

func ownedMap(c *gin.Context) (*models.GardenMap, bool) {
	m, ok := middleware.GetOwned[models.GardenMap](c, constants.ContextKeyMap)
	if !ok {
		respondServiceError(c, errors.New("map missing from request context"))
	}
	return m, ok
}

func (h *ObjectHandler) List(c *gin.Context) {
	m, ok := ownedMap(c)
	if !ok {
		return
	}

	objects, err := h.maps.ListObjectsOn(m)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToMapObjectDTOs(objects))
}

func (h *ObjectHandler) Create(c *gin.Context) {
	m, ok := ownedMap(c)
	if !ok {
		return
	}

	var req createObjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validation.Message(err))
		return
	}

	obj, err := h.maps.CreateObjectOn(m, services.CreateObjectInput{
		Type:      req.Type,
		Shape:     req.Shape,
		Name:      req.Name,
		PlantID:   req.PlantID,
		PlantedAt: req.PlantedAt,
		BedType:   req.BedType,
		X:         req.X,
		Y:         req.Y,
		Size:      req.Size,
		Width:     req.Width,
		Height:    req.Height,
		Points:    req.Points,
		Color:     req.Color,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToMapObjectDTO(*obj))
}

// Conflicts lists nearby plant pairs that do not grow well together.
func (h *ObjectHandler) Conflicts(c *gin.Context) {
	m, ok := ownedMap(c)
	if !ok {
		return
	}

	conflicts, err := h.maps.ConflictsOn(m)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, conflicts)
}

func (h *ObjectHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	objectID, ok := parseIDParam(c, "id", "object")
	if !ok {
		return
	}

	if err := h.maps.DeleteObject(userID, objectID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
