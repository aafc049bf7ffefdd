package csvio

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/errors"
	"github.com/COVID19-Campus-Recovery/Scheduling-Optimization/pkg/model"
)

// WriteAssignments writes the solved assignment table to path, overwriting
// any previous run's output.
func WriteAssignments(rows []model.Assignment, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()

	if err := gocsv.MarshalFile(&rows, out); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// WriteExclusions writes the sections dropped before the solve, one row per
// excluded section with its reason, next to the main output.
func WriteExclusions(excluded []*errors.InfeasibleEligibilityError, path string) error {
	type row struct {
		Section string `csv:"subject_course_section_occurrence"`
		Reason  string `csv:"reason"`
	}
	rows := make([]row, 0, len(excluded))
	for _, e := range excluded {
		rows = append(rows, row{Section: e.Section, Reason: e.Reason})
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()

	if err := gocsv.MarshalFile(&rows, out); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
