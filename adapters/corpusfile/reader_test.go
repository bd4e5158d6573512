package corpusfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"agrosim/domain/core"
	"agrosim/internal"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestLoadAliasedHeaders(t *testing.T) {
	// Header spellings as they appear in the source export: "Crops",
	// "Soil type", "yeilds".
	path := writeCSV(t, `Location,Crops,Season,Soil type,Irrigation,Area,Temperature,Rainfall,yeilds
Mysuru,RICE ,Kharif,loamy,drip,2,25,800,3.4
Mysuru,ragi,kharif,clay,canal,3,26,750,1.8
`)
	r := NewReader(path, "Mysuru", internal.NewDefaultLogger())
	c, err := r.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if c.Len() != 2 {
		t.Fatalf("expected 2 observations, got %d", c.Len())
	}
	first := c.Observations[0]
	if first.Crop != "Rice" || first.SoilType != "Loamy" || first.Irrigation != "Drip" {
		t.Errorf("expected normalized categoricals, got %+v", first)
	}
	if first.Yield != 3.4 || first.Area != 2 || first.Temperature != 25 {
		t.Errorf("numeric fields misparsed: %+v", first)
	}
}

func TestLoadSkipsMalformedRows(t *testing.T) {
	path := writeCSV(t, `crop,season,area,yield
Rice,Kharif,2,3.4
Rice,Kharif,0,3.0
Rice,Kharif,-1,2.0
Rice,Kharif,2,not-a-number
,Kharif,2,3.0
Ragi,,2,1.5
Ragi,Rabi,3,1.4
`)
	r := NewReader(path, "Mysuru", internal.NewDefaultLogger())
	c, err := r.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 usable rows, got %d", c.Len())
	}
}

func TestLoadMissingRequiredColumns(t *testing.T) {
	path := writeCSV(t, `crop,season,area
Rice,Kharif,2
`)
	r := NewReader(path, "", internal.NewDefaultLogger())
	if _, err := r.Load(context.Background()); !errors.Is(err, core.ErrCorpusMalformed) {
		t.Errorf("expected ErrCorpusMalformed for missing yield column, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	r := NewReader(filepath.Join(t.TempDir(), "absent.csv"), "", internal.NewDefaultLogger())
	if _, err := r.Load(context.Background()); !errors.Is(err, core.ErrCorpusMalformed) {
		t.Errorf("expected ErrCorpusMalformed for missing file, got %v", err)
	}
}

func TestLoadNoUsableRows(t *testing.T) {
	path := writeCSV(t, `crop,season,area,yield
Rice,Kharif,0,3.4
`)
	r := NewReader(path, "", internal.NewDefaultLogger())
	if _, err := r.Load(context.Background()); !errors.Is(err, core.ErrCorpusEmpty) {
		t.Errorf("expected ErrCorpusEmpty, got %v", err)
	}
}

func TestLoadDefaultDistrictApplied(t *testing.T) {
	path := writeCSV(t, `crop,season,area,yield
Rice,Kharif,2,3.4
`)
	r := NewReader(path, "mysuru", internal.NewDefaultLogger())
	c, err := r.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Observations[0].District != "Mysuru" {
		t.Errorf("expected default district Mysuru, got %q", c.Observations[0].District)
	}
}
