// Package export renders dashboard tables as XLSX workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/queue-dashboard/internal/domain"
	"github.com/spec-kit/queue-dashboard/internal/view"
)

// ContentType is the MIME type of the workbooks written here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DateLayout renders instants like "March 4, 2024 at 6:00 PM" (UTC).
const DateLayout = "January 2, 2006 at 3:04 PM"

const (
	queueSheet = "Queues"
	userSheet  = "Users"
)

// FormatTimestamp renders ts with DateLayout; invalid values are blank.
func FormatTimestamp(ts domain.Timestamp) string {
	if !ts.Valid {
		return ""
	}
	return ts.Time.UTC().Format(DateLayout)
}

// WriteQueues writes the queue table in row order.
func WriteQueues(w io.Writer, rows []view.QueueRow) error {
	headers := []interface{}{"Queue ID", "Queue", "Ended", "Tickets"}
	records := make([][]interface{}, len(rows))
	for i, r := range rows {
		records[i] = []interface{}{r.ID, r.Title, FormatTimestamp(r.EndTime), r.TicketCount}
	}
	return writeSheet(w, queueSheet, headers, records, map[string]float64{"B": 40, "C": 30})
}

// WriteUsers writes the aggregated user table in row order.
func WriteUsers(w io.Writer, rows []view.UserRow) error {
	headers := []interface{}{"User ID", "Display name", "Email", "Tickets"}
	records := make([][]interface{}, len(rows))
	for i, r := range rows {
		records[i] = []interface{}{r.UserID, r.DisplayName, r.Email, r.TicketCount}
	}
	return writeSheet(w, userSheet, headers, records, map[string]float64{"B": 30, "C": 35})
}

func writeSheet(w io.Writer, sheet string, headers []interface{}, records [][]interface{}, widths map[string]float64) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &record); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	for col, width := range widths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}

	return f.Write(w)
}
