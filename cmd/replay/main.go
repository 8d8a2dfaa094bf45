package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/replay"
)

// #region main

func main() {
	dir := flag.String("dir", "", "directory of fixture JSON files")
	flag.Parse()

	paths := flag.Args()
	if *dir != "" {
		matches, err := filepath.Glob(filepath.Join(*dir, "*.json"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "glob fixtures: %v\n", err)
			os.Exit(2)
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: replay path/to/fixture.json [...]")
		fmt.Fprintln(os.Stderr, "       replay --dir path/to/fixtures")
		os.Exit(2)
	}

	os.Exit(runFixtures(paths))
}

// #endregion main

// #region run

type row struct {
	file    string
	outcome replay.Outcome
	want    replay.FixtureCase
}

func runFixtures(paths []string) int {
	fixtures := make([]*replay.Fixture, len(paths))
	total := 0
	for i, p := range paths {
		f, err := replay.LoadFixture(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
			return 2
		}
		fixtures[i] = f
		total += len(f.Cases)
	}

	bar := pb.StartNew(total)
	var rows []row
	for i, f := range fixtures {
		for j := range f.Cases {
			rows = append(rows, row{
				file:    filepath.Base(paths[i]),
				outcome: replay.RunCase(&f.Cases[j]),
				want:    f.Cases[j],
			})
			bar.Increment()
		}
	}
	bar.Finish()

	return printComparison(rows)
}

// #endregion run

// #region output

// printComparison outputs a comparison table and returns the exit code.
func printComparison(rows []row) int {
	fmt.Printf("%-20s| %-40s| %-12s| %-12s| %s\n", "File", "Case", "Expected", "Replayed", "Match")
	fmt.Printf("%-20s+%-41s+%-13s+%-13s+%s\n",
		"--------------------", "-----------------------------------------", "-------------", "-------------", "------")

	matches := 0
	for _, r := range rows {
		match := "DIFF"
		if r.outcome.Match {
			match = "OK"
			matches++
		}
		final := r.outcome.Summary.Final
		fmt.Printf("%-20s| %-40s| %-12s| %-12s| %s\n",
			r.file,
			r.outcome.Name,
			fmt.Sprintf("%d/%s", r.want.ExpectedReps, r.want.ExpectedPhase),
			fmt.Sprintf("%d/%s", final.Reps, final.Phase),
			match,
		)
	}

	diverge := len(rows) - matches
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", len(rows), matches, diverge)

	if diverge > 0 {
		return 1
	}
	return 0
}

// #endregion output
