package features

import (
	"fmt"

	"agrosim/domain/core"
	"agrosim/domain/scenario"
)

// Schema names the feature columns a model expects, in order.
type Schema struct {
	Numeric     []string `json:"numeric"`
	Categorical []string `json:"categorical"`
}

// Covariates are the numeric agronomic inputs accompanying a scenario.
// Zero values mean "not supplied"; the encoder fills them from the fitted
// reference tables, then from training means.
type Covariates struct {
	Temperature float64 `json:"temperature,omitempty"`
	Rainfall    float64 `json:"rainfall,omitempty"`
	Humidity    float64 `json:"humidity,omitempty"`
	Nitrogen    float64 `json:"nitrogen,omitempty"`
	Phosphorus  float64 `json:"phosphorus,omitempty"`
	Potassium   float64 `json:"potassium,omitempty"`
	PH          float64 `json:"ph,omitempty"`
}

// Canonical feature column names shared by the trainer and the encoder.
const (
	ColArea        = "area"
	ColTemperature = "temperature"
	ColRainfall    = "rainfall"
	ColHumidity    = "humidity"
	ColNitrogen    = "nitrogen"
	ColPhosphorus  = "phosphorus"
	ColPotassium   = "potassium"
	ColPH          = "ph"
)

// Encoder is the fitted feature pipeline: one-hot category tables and
// standard-scaler constants captured at training time. It must reproduce the
// training encoding bit-for-bit, so it is persisted inside the model bundle
// and versioned together with the weights.
type Encoder struct {
	Schema     Schema              `json:"schema"`
	Categories map[string][]string `json:"categories"` // fitted value order per categorical column
	Means      map[string]float64  `json:"means"`      // scaler means per numeric column
	Scales     map[string]float64  `json:"scales"`     // scaler standard deviations per numeric column
	References ReferenceTables     `json:"references"`
}

// ReferenceTables hold training-time covariate aggregates used to fill
// missing request covariates: seasonal weather per district+season and
// nutrient indices per district.
type ReferenceTables struct {
	WeatherByDistrictSeason map[string]map[string]WeatherAggregate `json:"weather_by_district_season,omitempty"`
	NutrientsByDistrict     map[string]NutrientAggregate           `json:"nutrients_by_district,omitempty"`
}

// WeatherAggregate is the fitted seasonal weather profile for one
// district+season cell.
type WeatherAggregate struct {
	Temperature float64 `json:"temperature"`
	Rainfall    float64 `json:"rainfall"`
	Humidity    float64 `json:"humidity"`
}

// NutrientAggregate is the fitted soil nutrient profile for one district.
type NutrientAggregate struct {
	Nitrogen   float64 `json:"nitrogen"`
	Phosphorus float64 `json:"phosphorus"`
	Potassium  float64 `json:"potassium"`
	PH         float64 `json:"ph"`
}

// FeatureNames returns the full output column order: scaled numerics first,
// then one-hot groups per categorical column in schema order.
func (e *Encoder) FeatureNames() []string {
	names := make([]string, 0, len(e.Schema.Numeric))
	names = append(names, e.Schema.Numeric...)
	for _, col := range e.Schema.Categorical {
		for _, v := range e.Categories[col] {
			names = append(names, col+"="+v)
		}
	}
	return names
}

// Validate checks internal consistency of the fitted encoder.
func (e *Encoder) Validate() error {
	for _, col := range e.Schema.Numeric {
		if _, ok := e.Means[col]; !ok {
			return core.NewSchemaMismatchError(fmt.Sprintf("missing scaler mean for %q", col))
		}
		if s, ok := e.Scales[col]; !ok || s == 0 {
			return core.NewSchemaMismatchError(fmt.Sprintf("missing or zero scaler scale for %q", col))
		}
	}
	for _, col := range e.Schema.Categorical {
		if len(e.Categories[col]) == 0 {
			return core.NewSchemaMismatchError(fmt.Sprintf("no fitted categories for %q", col))
		}
	}
	return nil
}

// Transform maps one scenario plus covariates to the numeric feature vector
// the model consumes. Unknown categorical values fall into the implicit
// unknown bucket (all-zero one-hot group) rather than failing the batch.
func (e *Encoder) Transform(s scenario.Scenario, cov Covariates) ([]float64, error) {
	if s.Area <= 0 {
		return nil, core.ErrInvalidArea
	}
	cov = e.fillCovariates(s, cov)

	vec := make([]float64, 0, len(e.FeatureNames()))
	for _, col := range e.Schema.Numeric {
		raw, err := numericValue(col, s, cov)
		if err != nil {
			return nil, err
		}
		vec = append(vec, (raw-e.Means[col])/e.Scales[col])
	}
	for _, col := range e.Schema.Categorical {
		value, err := categoricalValue(col, s)
		if err != nil {
			return nil, err
		}
		for _, fitted := range e.Categories[col] {
			if fitted == value {
				vec = append(vec, 1)
			} else {
				vec = append(vec, 0)
			}
		}
	}
	return vec, nil
}

// fillCovariates substitutes fitted reference aggregates for unsupplied
// covariates, then training means for anything still missing.
func (e *Encoder) fillCovariates(s scenario.Scenario, cov Covariates) Covariates {
	if w, ok := e.References.WeatherByDistrictSeason[s.District][s.Season]; ok {
		if cov.Temperature == 0 {
			cov.Temperature = w.Temperature
		}
		if cov.Rainfall == 0 {
			cov.Rainfall = w.Rainfall
		}
		if cov.Humidity == 0 {
			cov.Humidity = w.Humidity
		}
	}
	if n, ok := e.References.NutrientsByDistrict[s.District]; ok {
		if cov.Nitrogen == 0 {
			cov.Nitrogen = n.Nitrogen
		}
		if cov.Phosphorus == 0 {
			cov.Phosphorus = n.Phosphorus
		}
		if cov.Potassium == 0 {
			cov.Potassium = n.Potassium
		}
		if cov.PH == 0 {
			cov.PH = n.PH
		}
	}

	fill := func(v *float64, col string) {
		if *v == 0 {
			*v = e.Means[col]
		}
	}
	fill(&cov.Temperature, ColTemperature)
	fill(&cov.Rainfall, ColRainfall)
	fill(&cov.Humidity, ColHumidity)
	fill(&cov.Nitrogen, ColNitrogen)
	fill(&cov.Phosphorus, ColPhosphorus)
	fill(&cov.Potassium, ColPotassium)
	fill(&cov.PH, ColPH)
	return cov
}

func numericValue(col string, s scenario.Scenario, cov Covariates) (float64, error) {
	switch col {
	case ColArea:
		return s.Area, nil
	case ColTemperature:
		return cov.Temperature, nil
	case ColRainfall:
		return cov.Rainfall, nil
	case ColHumidity:
		return cov.Humidity, nil
	case ColNitrogen:
		return cov.Nitrogen, nil
	case ColPhosphorus:
		return cov.Phosphorus, nil
	case ColPotassium:
		return cov.Potassium, nil
	case ColPH:
		return cov.PH, nil
	default:
		return 0, core.NewSchemaMismatchError(fmt.Sprintf("unknown numeric feature %q", col))
	}
}

func categoricalValue(col string, s scenario.Scenario) (string, error) {
	switch col {
	case "district":
		return s.District, nil
	case "crop":
		return s.Crop, nil
	case "season":
		return s.Season, nil
	case "soil_type":
		return s.SoilType, nil
	case "irrigation":
		return s.Irrigation, nil
	default:
		return "", core.NewSchemaMismatchError(fmt.Sprintf("unknown categorical feature %q", col))
	}
}
