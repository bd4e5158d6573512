package corpus

import (
	"fmt"
	"strings"
)

// Dimension names in catalog-declared order. The order is load-bearing: it
// fixes option listing order and the deterministic ranking tie-break.
const (
	DimDistrict   = "district"
	DimCrop       = "crop"
	DimSeason     = "season"
	DimSoilType   = "soil_type"
	DimIrrigation = "irrigation"
	DimArea       = "area"
)

// Dimensions lists the categorical dimensions in declared order.
var Dimensions = []string{DimDistrict, DimCrop, DimSeason, DimSoilType, DimIrrigation}

// Observation is one historical row: scenario fields, numeric covariates,
// and the observed yield per unit area. Used only at catalog/training time.
type Observation struct {
	District   string
	Crop       string
	Season     string
	SoilType   string
	Irrigation string
	Area       float64

	Temperature float64
	Rainfall    float64
	Humidity    float64
	Nitrogen    float64
	Phosphorus  float64
	Potassium   float64
	PH          float64

	Yield float64
}

// Key returns the observation's combination key (area excluded).
func (o Observation) Key() CombinationKey {
	return CombinationKey{
		Crop:       o.Crop,
		Season:     o.Season,
		SoilType:   o.SoilType,
		Irrigation: o.Irrigation,
	}
}

// CombinationKey is a categorical tuple excluding area. A key is "observed"
// when at least one historical row carries it.
type CombinationKey struct {
	Crop       string
	Season     string
	SoilType   string
	Irrigation string
}

func (k CombinationKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%s", k.Crop, k.Season, k.SoilType, k.Irrigation)
}

// Corpus is the immutable in-memory historical record set for one geography.
// Built once at process start; safe for concurrent readers.
type Corpus struct {
	District     string
	Observations []Observation
}

// Len returns the number of historical rows.
func (c *Corpus) Len() int {
	return len(c.Observations)
}

// NormalizeValue canonicalizes a categorical value the way the corpus loader
// does: trimmed and title-cased, so "drip " and "DRIP" compare equal.
func NormalizeValue(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return v
	}
	words := strings.Fields(strings.ToLower(v))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
