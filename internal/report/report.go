package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/nguyentantai21042004/lecture-flow/internal/pipeline"
)

const sheet = "Outcomes"

// Write renders one row per job outcome to an xlsx workbook at path, so a
// batch can be reviewed without trawling logs.
func Write(path string, outcomes []pipeline.Outcome) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	headers := []string{"Title", "Slug", "State", "Failed Stage", "Reason", "Audio", "Transcript", "Notes"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for row, o := range outcomes {
		reason := ""
		if o.Err != nil {
			reason = o.Err.Error()
		}
		values := []interface{}{
			o.Job.Result.Title,
			o.Job.Slug,
			string(o.State),
			string(o.FailedStage),
			reason,
			o.Job.AudioPath,
			o.Job.TranscriptPath,
			o.Job.NotesPath,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row+1, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}
