package report

import (
	"fmt"

	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	SheetProfiles = "Profiles"
	SheetSegments = "Segments"
	SheetSummary  = "Summary"
)

// WriteWorkbook saves the profiles, segment sizes and recommendations of rep
// as an XLSX file at path.
func WriteWorkbook(path string, rep *SegmentReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetProfiles); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeProfilesSheet(f, rep.Profiles); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetSegments); err != nil {
		return fmt.Errorf("create sheet %s: %w", SheetSegments, err)
	}
	if err := writeSegmentsSheet(f, rep); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetSummary); err != nil {
		return fmt.Errorf("create sheet %s: %w", SheetSummary, err)
	}
	if err := writeSummarySheet(f, rep); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeProfilesSheet(f *excelize.File, profiles []Profile) error {
	if err := setRow(f, SheetProfiles, 1, toRow(ProfileColumns)); err != nil {
		return err
	}
	for i, p := range profiles {
		if err := setRow(f, SheetProfiles, i+2, toRow(p.record())); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetProfiles, "A", "J", 20)
}

func writeSegmentsSheet(f *excelize.File, rep *SegmentReport) error {
	if err := setRow(f, SheetSegments, 1, []interface{}{"group", "segment", "count", "percentage"}); err != nil {
		return err
	}
	row := 2
	for _, shares := range [][]domain.SegmentShare{rep.Price, rep.Frequency, rep.Demographic, rep.Communication} {
		for _, s := range shares {
			group := string(domain.SegmentRule(s.ID).Group)
			if err := setRow(f, SheetSegments, row, []interface{}{group, s.Label, s.Count, s.Percentage}); err != nil {
				return err
			}
			row++
		}
	}
	return f.SetColWidth(SheetSegments, "A", "B", 32)
}

func writeSummarySheet(f *excelize.File, rep *SegmentReport) error {
	if err := f.SetCellValue(SheetSummary, "A1", "Total responses"); err != nil {
		return err
	}
	if err := f.SetCellValue(SheetSummary, "B1", rep.Total); err != nil {
		return err
	}
	if err := f.SetCellValue(SheetSummary, "A3", "Recommendations"); err != nil {
		return err
	}
	for i, rec := range rep.Recommendations {
		cell, _ := excelize.CoordinatesToCellName(1, i+4)
		if err := f.SetCellValue(SheetSummary, cell, rec); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "A", 80)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func toRow(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
