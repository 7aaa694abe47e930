package tlf

import (
	"fmt"
	"io"
	"time"

	"tlf-sync/feature/tlf/store"

	"github.com/xuri/excelize/v2"
)

const (
	orphanSheet = "Orphans"
	eventSheet  = "Events"
)

// WriteOrphansXLSX writes the orphan registry as a workbook with one summary
// row per board and one row per orphaned event.
func WriteOrphansXLSX(w io.Writer, orphans []store.Orphan) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", orphanSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(eventSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	summary := [][]any{{"BoardCode", "TotalQty", "FirstSeenAt", "LastSeenAt"}}
	events := [][]any{{"BoardCode", "RowID", "GroupID", "JobName", "Plan", "Destination", "EventTime"}}
	for _, o := range orphans {
		summary = append(summary, []any{o.BoardCode, o.TotalQty, o.FirstSeenAt.Format(time.RFC3339), o.LastSeenAt.Format(time.RFC3339)})
		for _, e := range o.Events {
			events = append(events, []any{o.BoardCode, e.RowID, e.GroupID, e.JobName, e.Plan, e.Destination, e.EventTime.Format(time.RFC3339)})
		}
	}

	if err := writeRows(f, orphanSheet, summary); err != nil {
		return err
	}
	if err := writeRows(f, eventSheet, events); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
