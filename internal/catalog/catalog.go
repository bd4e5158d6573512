package catalog

import (
	"fmt"
	"sort"

	"agrosim/domain/core"
	"agrosim/domain/corpus"

	"github.com/montanaflynn/stats"
)

// Catalog derives the valid option space from the historical corpus: ordered
// value sets per dimension plus the set of combinations actually observed.
// Built once at process start and read-only afterwards; rebuilding requires
// an explicit reload, never in-place mutation.
type Catalog struct {
	values   map[string][]string
	areas    []float64
	observed map[corpus.CombinationKey][]float64 // key -> observed yields
}

// Build scans the corpus and collects distinct values per dimension and
// distinct combination tuples. Fails only at load time.
func Build(c *corpus.Corpus) (*Catalog, error) {
	if c == nil || c.Len() == 0 {
		return nil, core.ErrCorpusEmpty
	}

	sets := map[string]map[string]struct{}{}
	for _, dim := range corpus.Dimensions {
		sets[dim] = map[string]struct{}{}
	}
	areaSet := map[float64]struct{}{}
	observed := map[corpus.CombinationKey][]float64{}

	for _, obs := range c.Observations {
		add := func(dim, v string) {
			if v != "" {
				sets[dim][v] = struct{}{}
			}
		}
		add(corpus.DimDistrict, obs.District)
		add(corpus.DimCrop, obs.Crop)
		add(corpus.DimSeason, obs.Season)
		add(corpus.DimSoilType, obs.SoilType)
		add(corpus.DimIrrigation, obs.Irrigation)
		areaSet[obs.Area] = struct{}{}

		key := obs.Key()
		observed[key] = append(observed[key], obs.Yield)
	}

	values := make(map[string][]string, len(sets))
	for dim, set := range sets {
		ordered := make([]string, 0, len(set))
		for v := range set {
			ordered = append(ordered, v)
		}
		sort.Strings(ordered)
		values[dim] = ordered
	}
	if len(values[corpus.DimCrop]) == 0 || len(values[corpus.DimSeason]) == 0 {
		return nil, core.ErrCatalogEmpty
	}

	areas := make([]float64, 0, len(areaSet))
	for a := range areaSet {
		areas = append(areas, a)
	}
	sort.Float64s(areas)

	return &Catalog{values: values, areas: areas, observed: observed}, nil
}

// ValuesFor returns the ordered valid values for a categorical dimension.
func (c *Catalog) ValuesFor(dimension string) ([]string, error) {
	vals, ok := c.values[dimension]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownDimension, dimension)
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out, nil
}

// Contains reports whether value is valid for dimension.
func (c *Catalog) Contains(dimension, value string) bool {
	for _, v := range c.values[dimension] {
		if v == value {
			return true
		}
	}
	return false
}

// Areas returns the distinct observed area values (ascending). These drive
// client-side selection menus; area itself stays continuous.
func (c *Catalog) Areas() []float64 {
	out := make([]float64, len(c.areas))
	copy(out, c.areas)
	return out
}

// IsObserved reports whether the combination tuple appears in the corpus.
func (c *Catalog) IsObserved(key corpus.CombinationKey) bool {
	return len(c.observed[key]) > 0
}

// MatchCount returns how many historical rows carry the combination.
func (c *Catalog) MatchCount(key corpus.CombinationKey) int {
	return len(c.observed[key])
}

// YieldSpread returns the mean and coefficient of variation of observed
// yields for the combination. ok is false when no rows match.
func (c *Catalog) YieldSpread(key corpus.CombinationKey) (mean, cv float64, ok bool) {
	yields := c.observed[key]
	if len(yields) == 0 {
		return 0, 0, false
	}
	mean, _ = stats.Mean(yields)
	if len(yields) < 2 || mean == 0 {
		return mean, 0, true
	}
	sd, _ := stats.StandardDeviationSample(yields)
	return mean, sd / mean, true
}

// Options returns the full option space keyed by dimension name, the shape
// the options endpoint serves.
func (c *Catalog) Options() map[string]interface{} {
	out := make(map[string]interface{}, len(c.values)+1)
	for dim, vals := range c.values {
		copied := make([]string, len(vals))
		copy(copied, vals)
		out[dim] = copied
	}
	out[corpus.DimArea] = c.Areas()
	return out
}

// CombinationCount returns the number of distinct observed combinations.
func (c *Catalog) CombinationCount() int {
	return len(c.observed)
}
