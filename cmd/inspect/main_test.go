package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/physio-coach/go-controller/internal/catalog"
)

func seededCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := catalog.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, err := store.Seed(context.Background(), catalog.Builtin()); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_ExitCodes(t *testing.T) {
	path := seededCatalog(t)
	noImport := catalog.DefaultImportConfig("")

	tests := []struct {
		name    string
		driver  string
		cfg     catalog.ImportConfig
		ailment string
		want    int
	}{
		{"list", "sqlite", noImport, "", 0},
		{"detail", "sqlite", noImport, "Shoulder Injury", 0},
		{"unknown ailment", "sqlite", noImport, "knee injury", 1},
		{"missing workbook", "sqlite", catalog.DefaultImportConfig(filepath.Join(t.TempDir(), "absent.xlsx")), "", 1},
		{"bad driver", "mysql", noImport, "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.driver, path, tt.cfg, tt.ailment, true); got != tt.want {
				t.Errorf("expected exit %d, got %d", tt.want, got)
			}
		})
	}
}

// A failed run still closes the catalog, so the file opens cleanly again.
func TestRun_ClosesStoreOnError(t *testing.T) {
	path := seededCatalog(t)
	if got := run("sqlite", path, catalog.DefaultImportConfig(""), "knee injury", false); got != 1 {
		t.Fatalf("expected exit 1, got %d", got)
	}

	store, err := catalog.Open("sqlite", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	if _, err := store.GetPlan(context.Background(), "wrist injury"); err != nil {
		t.Errorf("expected catalog intact, got %v", err)
	}
}
