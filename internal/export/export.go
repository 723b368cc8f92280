// Package export renders score history as an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"scoredAPI/internal/score"
)

const (
	SheetName   = "Scores"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []interface{}{"Date", "Score", "Band", "Description", "Note"}

// Scores builds a single-sheet workbook with one row per score, in the order
// given. The caller must Close the returned file.
func Scores(scores []*score.Score) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, sc := range scores {
		band := score.BandFor(sc.Score)
		row := []interface{}{sc.Date, sc.Score, string(band), band.DayDescription()}
		if sc.Description != nil {
			row = append(row, *sc.Description)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 12); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "E", "E", 60); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// WriteScores streams the workbook for scores to w.
func WriteScores(w io.Writer, scores []*score.Score) error {
	f, err := Scores(scores)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Filename is the download name for a user's export.
func Filename(username, today string) string {
	return fmt.Sprintf("scores-%s-%s.xlsx", username, today)
}
