package dto

import (
	"time"

	"github.com/yukikurage/growmap/internal/models"
	"github.com/yukikurage/growmap/internal/repository"
	"github.com/yukikurage/growmap/internal/utils"
)

type LogEntryDTO struct {
	ID            uint64            `json:"id"`
	MapID         uint64            `json:"map_id"`
	ActionType    models.ActionType `json:"action_type"`
	PlantObjectID *uint64           `json:"plant_object_id"`
	Amount        *float64          `json:"amount"`
	Note          *string           `json:"note"`
	CreatedAt     time.Time         `json:"created_at"`
}

func ToLogEntryDTO(entry models.LogEntry) LogEntryDTO {
	return LogEntryDTO{
		ID:            entry.ID,
		MapID:         entry.MapID,
		ActionType:    entry.ActionType,
		PlantObjectID: entry.PlantObjectID,
		Amount:        entry.Amount,
		Note:          entry.Note,
		CreatedAt:     entry.CreatedAt,
	}
}

// LogListDTO is a page of log entries.
type LogListDTO struct {
	Logs       []LogEntryDTO            `json:"logs"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

func ToLogListDTO(entries []models.LogEntry, params utils.PaginationParams, total int64) LogListDTO {
	logs := make([]LogEntryDTO, len(entries))
	for i, entry := range entries {
		logs[i] = ToLogEntryDTO(entry)
	}
	return LogListDTO{
		Logs:       logs,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}

type HarvestDTO struct {
	ID            uint64  `json:"id"`
	MapID         uint64  `json:"map_id"`
	PlantObjectID uint64  `json:"plant_object_id"`
	ObjectName    *string `json:"object_name"`
	PlantName     *string `json:"plant_name"`
	Amount        float64 `json:"amount"`
	Unit          string  `json:"unit"`
	HarvestedAt   string  `json:"harvested_at"`
}

func ToHarvestDTO(row repository.HarvestRow) HarvestDTO {
	return HarvestDTO{
		ID:            row.ID,
		MapID:         row.MapID,
		PlantObjectID: row.PlantObjectID,
		ObjectName:    row.ObjectName,
		PlantName:     row.PlantName,
		Amount:        row.Amount,
		Unit:          row.Unit,
		HarvestedAt:   row.HarvestedAt,
	}
}

func ToHarvestDTOs(rows []repository.HarvestRow) []HarvestDTO {
	out := make([]HarvestDTO, len(rows))
	for i, row := range rows {
		out[i] = ToHarvestDTO(row)
	}
	return out
}
