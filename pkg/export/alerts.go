// Package export renders a ward's alert history as an xlsx workbook for audit.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"liyu1981.xyz/ward-alert-service/pkg/models"
)

const AlertSheet = "Alerts"

var AlertHistoryHeader = []string{
	"Alert ID",
	"Bed",
	"Patient",
	"Kind",
	"Raised At",
	"Assigned Nurse",
	"Outcome",
	"Resolved At",
	"Resolved By",
}

var alertColumnWidths = []float64{38, 12, 24, 14, 22, 38, 12, 22, 38}

func outcome(a models.Alert) string {
	switch {
	case a.Resolution != models.ResolutionPending:
		return string(a.Resolution)
	case a.Confirmed:
		return string(models.ResolutionConfirmed)
	default:
		return "pending"
	}
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

// AlertHistory writes alerts in the given order, one row each.
func AlertHistory(alerts []models.Alert) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(AlertSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(AlertSheet, "A1", &AlertHistoryHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(AlertHistoryHeader))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(AlertSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	for i, width := range alertColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(AlertSheet, col, col, width); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, a := range alerts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		createdAt := a.CreatedAt
		row := []any{
			a.ID,
			a.BedID,
			a.PatientName,
			string(a.Kind),
			formatTime(&createdAt),
			a.AssignedNurseID,
			outcome(a),
			formatTime(a.ResolvedAt),
			a.ResolvedBy,
		}
		if err := f.SetSheetRow(AlertSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
