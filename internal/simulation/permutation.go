package simulation

import (
	"fmt"

	"agrosim/domain/core"
	"agrosim/domain/corpus"
	"agrosim/domain/scenario"
	"agrosim/internal/catalog"
)

// Request is a farmer's possibly-partial planting plan. Any categorical
// dimension may carry several candidate values or none (none means "all
// catalog values"). Area values must be positive.
type Request struct {
	District    string
	Crops       []string
	Seasons     []string
	SoilTypes   []string
	Irrigations []string
	Areas       []float64
}

// CandidateSet is the concrete scenario list a request expands to, plus the
// batch-level coverage flag and validation warnings.
type CandidateSet struct {
	Scenarios       []scenario.Scenario
	CoverageWarning bool
	Warnings        []string
	Truncated       bool
}

// Generator expands requests against the option catalog.
type Generator struct {
	catalog         *catalog.Catalog
	maxCombinations int
}

// NewGenerator creates a permutation generator. maxCombinations caps the
// Cartesian expansion; zero disables the cap.
func NewGenerator(cat *catalog.Catalog, maxCombinations int) *Generator {
	return &Generator{catalog: cat, maxCombinations: maxCombinations}
}

// Generate expands the request into concrete candidates.
//
// Two-tier policy: candidates whose combination key is observed in the
// corpus are preferred; only when none are observed does the full Cartesian
// product serve, flagged with CoverageWarning. The generator prefers
// evidence but never refuses to answer.
func (g *Generator) Generate(req Request) (CandidateSet, error) {
	var set CandidateSet

	district, warn := g.resolveDistrict(req.District)
	if warn != "" {
		set.Warnings = append(set.Warnings, warn)
	}

	dims := []struct {
		name     string
		supplied []string
	}{
		{corpus.DimCrop, req.Crops},
		{corpus.DimSeason, req.Seasons},
		{corpus.DimSoilType, req.SoilTypes},
		{corpus.DimIrrigation, req.Irrigations},
	}
	resolved := make([][]string, len(dims))
	for i, d := range dims {
		values, warnings := g.resolveDimension(d.name, d.supplied)
		set.Warnings = append(set.Warnings, warnings...)
		if len(values) == 0 {
			return set, fmt.Errorf("%w: no valid values for %s", core.ErrNoCandidates, d.name)
		}
		resolved[i] = values
	}

	areas := make([]float64, 0, len(req.Areas))
	for _, a := range req.Areas {
		if a <= 0 {
			set.Warnings = append(set.Warnings, fmt.Sprintf("dropped non-positive area %g", a))
			continue
		}
		areas = append(areas, a)
	}
	if len(areas) == 0 {
		return set, fmt.Errorf("%w: no positive area supplied", core.ErrNoCandidates)
	}

	all := g.cartesian(district, resolved, areas, &set)

	var observed []scenario.Scenario
	for _, s := range all {
		if g.catalog.IsObserved(s.CombinationKey()) {
			observed = append(observed, s)
		}
	}
	if len(observed) > 0 {
		set.Scenarios = observed
		set.CoverageWarning = false
	} else {
		set.Scenarios = all
		set.CoverageWarning = true
	}
	if len(set.Scenarios) == 0 {
		return set, core.ErrNoCandidates
	}
	return set, nil
}

// resolveDistrict validates the district against the catalog, keeping the
// requested name (normalized) when the catalog has no district column data.
func (g *Generator) resolveDistrict(district string) (string, string) {
	d := corpus.NormalizeValue(district)
	known, err := g.catalog.ValuesFor(corpus.DimDistrict)
	if err != nil || len(known) == 0 {
		return d, ""
	}
	if d == "" {
		return known[0], ""
	}
	if g.catalog.Contains(corpus.DimDistrict, d) {
		return d, ""
	}
	// Unknown district still simulates (extrapolation is the calibrator's
	// job), but the caller hears about it.
	return d, fmt.Sprintf("district %q not present in historical data", d)
}

// resolveDimension validates supplied values against the catalog, dropping
// unknowns with a warning; an empty supply defaults to all catalog values.
func (g *Generator) resolveDimension(dim string, supplied []string) ([]string, []string) {
	if len(supplied) == 0 {
		values, _ := g.catalog.ValuesFor(dim)
		return values, nil
	}
	var valid []string
	var warnings []string
	seen := map[string]struct{}{}
	for _, raw := range supplied {
		v := corpus.NormalizeValue(raw)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if !g.catalog.Contains(dim, v) {
			warnings = append(warnings, fmt.Sprintf("dropped unknown %s %q", dim, raw))
			continue
		}
		valid = append(valid, v)
	}
	return valid, warnings
}

func (g *Generator) cartesian(district string, dims [][]string, areas []float64, set *CandidateSet) []scenario.Scenario {
	capacity := len(areas)
	for _, d := range dims {
		capacity *= len(d)
	}
	out := make([]scenario.Scenario, 0, capacity)

	for _, crop := range dims[0] {
		for _, season := range dims[1] {
			for _, soil := range dims[2] {
				for _, irr := range dims[3] {
					for _, area := range areas {
						if g.maxCombinations > 0 && len(out) >= g.maxCombinations {
							set.Truncated = true
							set.Warnings = append(set.Warnings, fmt.Sprintf(
								"candidate expansion truncated at %d combinations", g.maxCombinations))
							return out
						}
						out = append(out, scenario.Scenario{
							District:   district,
							Crop:       crop,
							Season:     season,
							SoilType:   soil,
							Irrigation: irr,
							Area:       area,
						})
					}
				}
			}
		}
	}
	return out
}
