package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// #region import-config
// ImportConfig describes a clinician plan spreadsheet. Each row is one
// exercise; plan-level columns repeat on every row of the same ailment.
type ImportConfig struct {
	FilePath  string
	SheetName string
	// StartRow is 1-based; the default skips one header row.
	StartRow int
}

// DefaultImportConfig reads Sheet1 from row 2.
func DefaultImportConfig(path string) ImportConfig {
	return ImportConfig{FilePath: path, SheetName: "Sheet1", StartRow: 2}
}

// ImportResult summarizes an import.
type ImportResult struct {
	Rows     int
	Plans    int
	Inserted int
	Errors   []string
}

// column order: ailment, exercise, description, target_reps, sets,
// rest_seconds, difficulty, duration_weeks
const (
	colAilment = iota
	colExercise
	colDescription
	colTargetReps
	colSets
	colRestSeconds
	colDifficulty
	colDurationWeeks
)

// #endregion import-config

// #region import
// ImportXLSX reads plans from a spreadsheet and adds them to the store. Bad
// rows are reported in ImportResult.Errors and skipped.
func (s *Store) ImportXLSX(ctx context.Context, cfg ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(cfg.SheetName)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", cfg.SheetName, err)
	}

	plans, order, result := parseRows(rows, cfg.StartRow)
	for _, key := range order {
		n, err := s.AddPlan(ctx, *plans[key])
		if err != nil {
			return result, fmt.Errorf("import %q: %w", key, err)
		}
		result.Inserted += n
	}
	result.Plans = len(order)
	return result, nil
}

func parseRows(rows [][]string, startRow int) (map[string]*Plan, []string, *ImportResult) {
	if startRow < 1 {
		startRow = 1
	}
	result := &ImportResult{Errors: []string{}}
	plans := map[string]*Plan{}
	var order []string

	for i, row := range rows {
		if i < startRow-1 || blank(row) {
			continue
		}
		result.Rows++

		p, e, err := parseRow(row)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
			continue
		}
		existing, ok := plans[p.Ailment]
		if !ok {
			existing = &p
			plans[p.Ailment] = existing
			order = append(order, p.Ailment)
		}
		existing.Exercises = append(existing.Exercises, e)
	}
	return plans, order, result
}

func parseRow(row []string) (Plan, Exercise, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	num := func(i int, name string) (int, error) {
		v, err := strconv.Atoi(cell(i))
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid %s %q", name, cell(i))
		}
		return v, nil
	}

	ailment := normalize(cell(colAilment))
	name := cell(colExercise)
	if ailment == "" || name == "" {
		return Plan{}, Exercise{}, fmt.Errorf("ailment and exercise are required")
	}

	e := Exercise{Name: name, Description: cell(colDescription)}
	var err error
	if e.TargetReps, err = num(colTargetReps, "target_reps"); err != nil {
		return Plan{}, Exercise{}, err
	}
	if e.Sets, err = num(colSets, "sets"); err != nil {
		return Plan{}, Exercise{}, err
	}
	if e.RestSeconds, err = num(colRestSeconds, "rest_seconds"); err != nil {
		return Plan{}, Exercise{}, err
	}

	p := Plan{Ailment: ailment, DifficultyLevel: cell(colDifficulty)}
	if p.DifficultyLevel == "" {
		p.DifficultyLevel = "beginner"
	}
	if p.DurationWeeks, err = num(colDurationWeeks, "duration_weeks"); err != nil {
		return Plan{}, Exercise{}, err
	}
	return p, e, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// #endregion import
