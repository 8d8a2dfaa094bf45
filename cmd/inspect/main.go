package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/catalog"
)

// #region main

func main() {
	driver := flag.String("driver", "sqlite", "catalog driver: sqlite or postgres")
	dsn := flag.String("dsn", "", "catalog DSN, e.g. physio_catalog.db")
	ailment := flag.String("ailment", "", "show one plan in detail")
	importPath := flag.String("import", "", "import plans from an .xlsx workbook first")
	sheet := flag.String("sheet", "", "sheet name for --import (default: Sheet1)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dsn == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --dsn path/to/physio_catalog.db [--driver sqlite|postgres] [--ailment name] [--import plans.xlsx] [--json]")
		os.Exit(2)
	}

	cfg := catalog.DefaultImportConfig(*importPath)
	if *sheet != "" {
		cfg.SheetName = *sheet
	}
	os.Exit(run(*driver, *dsn, cfg, *ailment, *jsonOut))
}

// run returns the process exit code so deferred cleanup happens before exit.
func run(driver, dsn string, importCfg catalog.ImportConfig, ailment string, jsonOut bool) int {
	ctx := context.Background()
	store, err := catalog.Open(driver, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open catalog: %v\n", err)
		return 1
	}
	defer store.Close()

	if importCfg.FilePath != "" {
		if err := runImport(ctx, store, importCfg); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}

	if ailment != "" {
		err = runDetailMode(ctx, store, ailment, jsonOut)
	} else {
		err = runListMode(ctx, store, jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// #endregion main

// #region import-mode

func runImport(ctx context.Context, store *catalog.Store, cfg catalog.ImportConfig) error {
	res, err := store.ImportXLSX(ctx, cfg)
	if err != nil {
		return err
	}
	for _, e := range res.Errors {
		fmt.Fprintf(os.Stderr, "skipped: %s\n", e)
	}
	fmt.Fprintf(os.Stderr, "imported %s: %d rows, %d plans, %d new exercises\n",
		cfg.FilePath, res.Rows, res.Plans, res.Inserted)
	return nil
}

// #endregion import-mode

// #region list-mode

type listRow struct {
	Ailment         string `json:"ailment"`
	Exercises       int    `json:"exercises"`
	DifficultyLevel string `json:"difficulty_level"`
	DurationWeeks   int    `json:"duration_weeks"`
}

func runListMode(ctx context.Context, store *catalog.Store, jsonOut bool) error {
	ailments, err := store.Ailments(ctx)
	if err != nil {
		return err
	}
	if len(ailments) == 0 {
		fmt.Fprintln(os.Stderr, "no plans found")
		return nil
	}

	rows := make([]listRow, 0, len(ailments))
	for _, a := range ailments {
		p, err := store.GetPlan(ctx, a)
		if err != nil {
			return err
		}
		rows = append(rows, listRow{
			Ailment:         p.Ailment,
			Exercises:       len(p.Exercises),
			DifficultyLevel: p.DifficultyLevel,
			DurationWeeks:   p.DurationWeeks,
		})
	}

	if jsonOut {
		return writeJSON(rows)
	}

	fmt.Printf("%-24s| %-9s| %-14s| %s\n", "Ailment", "Exercises", "Difficulty", "Weeks")
	fmt.Printf("%-24s+%-10s+%-15s+%s\n", "------------------------", "----------", "---------------", "------")
	for _, r := range rows {
		fmt.Printf("%-24s| %-9d| %-14s| %d\n", r.Ailment, r.Exercises, r.DifficultyLevel, r.DurationWeeks)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(ctx context.Context, store *catalog.Store, ailment string, jsonOut bool) error {
	p, err := store.GetPlan(ctx, ailment)
	if err != nil {
		return err
	}
	if jsonOut {
		return writeJSON(p)
	}

	fmt.Printf("Plan: %s (%s, %d weeks)\n\n", p.Ailment, p.DifficultyLevel, p.DurationWeeks)
	fmt.Printf("%-24s| %-20s| %-5s| %-5s| %-6s| %s\n", "Exercise", "Category", "Reps", "Sets", "Rest", "Range")
	fmt.Printf("%-24s+%-21s+%-6s+%-6s+%-7s+%s\n",
		"------------------------", "---------------------", "------", "------", "-------", "----------")
	for _, e := range p.Exercises {
		fmt.Printf("%-24s| %-20s| %-5d| %-5d| %-6s| %d-%d\n",
			e.Name, e.Category, e.TargetReps, e.Sets, fmt.Sprintf("%ds", e.RestSeconds), e.MinAngle, e.MaxAngle)
	}
	return nil
}

// #endregion detail-mode

// #region output

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// #endregion output
