package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/growmap/internal/dto"
	apierrors "github.com/yukikurage/growmap/internal/errors"
	"github.com/yukikurage/growmap/internal/export"
	"github.com/yukikurage/growmap/internal/logging"
	"github.com/yukikurage/growmap/internal/services"
	"github.com/yukikurage/growmap/internal/utils"
	"github.com/yukikurage/growmap/internal/validation"
)

// JournalHandler serves the action log, the harvest ledger and the export.
type JournalHandler struct {
	journal *services.JournalService
}

func NewJournalHandler(journal *services.JournalService) *JournalHandler {
	return &JournalHandler{journal: journal}
}

type logActionRequest struct {
	MapID         uint64   `json:"map_id" binding:"required"`
	ActionType    string   `json:"action_type" binding:"required,oneof=watering fertilizing planting pruning harvest note"`
	PlantObjectID *uint64  `json:"plant_object_id"`
	Amount        *float64 `json:"amount" binding:"omitempty,gte=0"`
	Note          *string  `json:"note" binding:"omitempty,max=1000"`
}

type addHarvestRequest struct {
	MapID         uint64  `json:"map_id" binding:"required"`
	PlantObjectID uint64  `json:"plant_object_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Unit          *string `json:"unit" binding:"omitempty,max=10"`
	HarvestedAt   *string `json:"harvested_at" binding:"omitempty,dateonly"`
}

// harvestResponse is the stored harvest plus its comparison with the catalog.
type harvestResponse struct {
	dto.HarvestDTO
	Efficiency *float64 `json:"efficiency"`
	AvgYield   *float64 `json:"avg_yield"`
	YieldUnit  *string  `json:"yield_unit"`
}

// ListLogs returns a page of log entries, newest first.
func (h *JournalHandler) ListLogs(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	mapID, ok := optionalMapID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	entries, total, err := h.journal.ListLogs(userID, mapID, params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToLogListDTO(entries, params, total))
}

func (h *JournalHandler) LogAction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req logActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validation.Message(err))
		return
	}

	entry, err := h.journal.LogAction(userID, services.LogActionInput{
		MapID:         req.MapID,
		ActionType:    req.ActionType,
		PlantObjectID: req.PlantObjectID,
		Amount:        req.Amount,
		Note:          req.Note,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToLogEntryDTO(*entry))
}

func (h *JournalHandler) AddHarvest(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req addHarvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, validation.Message(err))
		return
	}

	result, err := h.journal.AddHarvest(userID, services.AddHarvestInput{
		MapID:         req.MapID,
		PlantObjectID: req.PlantObjectID,
		Amount:        req.Amount,
		Unit:          req.Unit,
		HarvestedAt:   req.HarvestedAt,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, harvestResponse{
		HarvestDTO: dto.HarvestDTO{
			ID:            result.Harvest.ID,
			MapID:         result.Harvest.MapID,
			PlantObjectID: result.Harvest.PlantObjectID,
			Amount:        result.Harvest.Amount,
			Unit:          result.Harvest.Unit,
			HarvestedAt:   result.Harvest.HarvestedAt,
		},
		Efficiency: result.Efficiency,
		AvgYield:   result.AvgYield,
		YieldUnit:  result.YieldUnit,
	})
}

func (h *JournalHandler) ListHarvests(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	mapID, ok := optionalMapID(c)
	if !ok {
		return
	}

	rows, err := h.journal.ListHarvests(userID, mapID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToHarvestDTOs(rows))
}

// DeleteHarvest removes a harvest record; its log entry stays.
func (h *JournalHandler) DeleteHarvest(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	harvestID, ok := parseIDParam(c, "id", "harvest")
	if !ok {
		return
	}

	if err := h.journal.DeleteHarvest(userID, harvestID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Export streams the journal as an XLSX workbook.
func (h *JournalHandler) Export(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	mapID, ok := optionalMapID(c)
	if !ok {
		return
	}

	journal, err := h.journal.Export(userID, mapID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
	c.Header("Content-Type", export.ContentType)
	c.Status(http.StatusOK)
	if err := export.WriteJournal(c.Writer, journal); err != nil {
		logging.Error().Err(err).Uint64("user_id", userID).Msg("Failed to write journal export")
	}
}
