package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/growmap/internal/services"
)

type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) Plants(c *gin.Context) {
	plants, err := h.catalog.ListPlants()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, plants)
}

// Compat returns every pair, or the single pair for ?a=&b= in either order.
func (h *CatalogHandler) Compat(c *gin.Context) {
	a, b := c.Query("a"), c.Query("b")
	if a == "" && b == "" {
		pairs, err := h.catalog.ListCompat()
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, pairs)
		return
	}

	pair, err := h.catalog.Compat(a, b)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, pair)
}
