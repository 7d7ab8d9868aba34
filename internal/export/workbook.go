// Package export renders the care journal as an XLSX workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/yukikurage/growmap/internal/models"
	"github.com/yukikurage/growmap/internal/repository"
	"github.com/yukikurage/growmap/internal/services"
)

const (
	LogsSheet     = "Logs"
	HarvestsSheet = "Harvests"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	logsHeader     = []any{"ID", "Date", "Map ID", "Action", "Object ID", "Amount", "Note"}
	harvestsHeader = []any{"ID", "Harvested at", "Map ID", "Object ID", "Object", "Plant", "Amount", "Unit", "Efficiency %"}
)

// Filename is the attachment name for an export generated at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("growmap-journal-%s.xlsx", t.UTC().Format("20060102"))
}

// WriteJournal writes a workbook with one sheet for log entries and one for
// harvests.
func WriteJournal(w io.Writer, journal *services.JournalExport) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", LogsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(HarvestsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	logRows := make([][]any, 0, len(journal.Logs))
	for _, entry := range journal.Logs {
		logRows = append(logRows, logRow(entry))
	}
	if err := writeSheet(f, LogsSheet, header, logsHeader, logRows); err != nil {
		return err
	}

	harvestRows := make([][]any, 0, len(journal.Harvests))
	for _, row := range journal.Harvests {
		harvestRows = append(harvestRows, harvestRow(row))
	}
	if err := writeSheet(f, HarvestsSheet, header, harvestsHeader, harvestRows); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 16)
}

func logRow(entry models.LogEntry) []any {
	return []any{
		entry.ID,
		entry.CreatedAt.UTC().Format(time.RFC3339),
		entry.MapID,
		string(entry.ActionType),
		optional(entry.PlantObjectID),
		optional(entry.Amount),
		optional(entry.Note),
	}
}

func harvestRow(row repository.HarvestRow) []any {
	return []any{
		row.ID,
		row.HarvestedAt,
		row.MapID,
		row.PlantObjectID,
		optional(row.ObjectName),
		optional(row.PlantName),
		row.Amount,
		row.Unit,
		optional(services.Efficiency(row.Amount, row.AvgYield)),
	}
}

// optional turns a nil pointer into an empty cell.
func optional[T any](v *T) any {
	if v == nil {
		return ""
	}
	return *v
}
