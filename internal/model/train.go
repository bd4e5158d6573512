package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"time"

	"agrosim/domain/core"
	"agrosim/domain/corpus"
	"agrosim/domain/scenario"
	"agrosim/internal/features"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// TrainOptions tune the offline trainer.
type TrainOptions struct {
	// Ridge is the L2 regularization strength. Zero falls back to a small
	// default that keeps the normal equations well conditioned under
	// one-hot collinearity.
	Ridge float64
	// HoldoutEvery sends every Nth row to the holdout split (deterministic,
	// no shuffling). Zero defaults to 5.
	HoldoutEvery int
	// Version overrides the timestamp version stamp (used by tests).
	Version string
}

// Fit trains the yield model on the corpus: fits the feature encoder
// (one-hot tables, scaler constants, covariate reference tables), solves a
// ridge regression via the normal equations, and scores a deterministic
// holdout split. The returned bundle is self-contained and versioned.
func Fit(c *corpus.Corpus, opts TrainOptions) (*Bundle, error) {
	if c == nil || c.Len() == 0 {
		return nil, core.ErrCorpusEmpty
	}
	if opts.Ridge <= 0 {
		opts.Ridge = 1e-3
	}
	if opts.HoldoutEvery <= 0 {
		opts.HoldoutEvery = 5
	}
	version := opts.Version
	if version == "" {
		version = time.Now().UTC().Format("20060102T150405Z")
	}

	enc := fitEncoder(c)
	if err := enc.Validate(); err != nil {
		return nil, err
	}
	names := enc.FeatureNames()
	dim := len(names)

	// Encode the whole corpus; the trainer reuses the exact request-time
	// transform so training and serving cannot drift apart.
	var trainX, holdX [][]float64
	var trainY, holdY []float64
	for i, obs := range c.Observations {
		x, err := enc.Transform(observationScenario(obs), observationCovariates(obs))
		if err != nil {
			return nil, fmt.Errorf("failed to encode corpus row %d: %w", i, err)
		}
		if (i+1)%opts.HoldoutEvery == 0 {
			holdX = append(holdX, x)
			holdY = append(holdY, obs.Yield)
		} else {
			trainX = append(trainX, x)
			trainY = append(trainY, obs.Yield)
		}
	}
	if len(trainX) < dim/2 && len(trainX) < len(c.Observations) {
		// Tiny corpora train on everything; holdout metrics degrade to
		// training metrics rather than starving the fit.
		trainX = append(trainX, holdX...)
		trainY = append(trainY, holdY...)
		holdX, holdY = trainX, trainY
	}

	weights, intercept, err := solveRidge(trainX, trainY, dim, opts.Ridge)
	if err != nil {
		return nil, err
	}

	b := &Bundle{
		Metadata: Metadata{
			ModelName:      "ridge_yield_v1",
			Version:        version,
			TrainedAt:      time.Now().UTC().Format(time.RFC3339),
			CorpusChecksum: corpusChecksum(c),
		},
		Encoder:   enc,
		Weights:   weights,
		Intercept: intercept,
	}
	b.Metadata.Metrics = scoreHoldout(b, holdX, holdY, len(trainX))
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// fitEncoder captures category tables, scaler constants, and covariate
// reference aggregates from the corpus.
func fitEncoder(c *corpus.Corpus) features.Encoder {
	schema := features.Schema{
		Numeric: []string{
			features.ColArea, features.ColTemperature, features.ColRainfall,
			features.ColHumidity, features.ColNitrogen, features.ColPhosphorus,
			features.ColPotassium, features.ColPH,
		},
		Categorical: append([]string{}, corpus.Dimensions...),
	}

	numericCols := map[string][]float64{}
	categorySets := map[string]map[string]struct{}{}
	for _, col := range schema.Categorical {
		categorySets[col] = map[string]struct{}{}
	}

	type weatherAcc struct {
		temp, rain, humid float64
		n                 int
	}
	type nutrientAcc struct {
		n, p, k, ph float64
		count       int
	}
	weather := map[string]map[string]*weatherAcc{}
	nutrients := map[string]*nutrientAcc{}

	for _, obs := range c.Observations {
		numericCols[features.ColArea] = append(numericCols[features.ColArea], obs.Area)
		numericCols[features.ColTemperature] = append(numericCols[features.ColTemperature], obs.Temperature)
		numericCols[features.ColRainfall] = append(numericCols[features.ColRainfall], obs.Rainfall)
		numericCols[features.ColHumidity] = append(numericCols[features.ColHumidity], obs.Humidity)
		numericCols[features.ColNitrogen] = append(numericCols[features.ColNitrogen], obs.Nitrogen)
		numericCols[features.ColPhosphorus] = append(numericCols[features.ColPhosphorus], obs.Phosphorus)
		numericCols[features.ColPotassium] = append(numericCols[features.ColPotassium], obs.Potassium)
		numericCols[features.ColPH] = append(numericCols[features.ColPH], obs.PH)

		categorySets["district"][obs.District] = struct{}{}
		categorySets["crop"][obs.Crop] = struct{}{}
		categorySets["season"][obs.Season] = struct{}{}
		if obs.SoilType != "" {
			categorySets["soil_type"][obs.SoilType] = struct{}{}
		}
		if obs.Irrigation != "" {
			categorySets["irrigation"][obs.Irrigation] = struct{}{}
		}

		if weather[obs.District] == nil {
			weather[obs.District] = map[string]*weatherAcc{}
		}
		w := weather[obs.District][obs.Season]
		if w == nil {
			w = &weatherAcc{}
			weather[obs.District][obs.Season] = w
		}
		w.temp += obs.Temperature
		w.rain += obs.Rainfall
		w.humid += obs.Humidity
		w.n++

		nu := nutrients[obs.District]
		if nu == nil {
			nu = &nutrientAcc{}
			nutrients[obs.District] = nu
		}
		nu.n += obs.Nitrogen
		nu.p += obs.Phosphorus
		nu.k += obs.Potassium
		nu.ph += obs.PH
		nu.count++
	}

	categories := map[string][]string{}
	for col, set := range categorySets {
		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		categories[col] = vals
	}

	means := map[string]float64{}
	scales := map[string]float64{}
	for col, vals := range numericCols {
		mean, _ := mstats.Mean(vals)
		sd, _ := mstats.StandardDeviationSample(vals)
		if sd == 0 || math.IsNaN(sd) {
			sd = 1
		}
		means[col] = mean
		scales[col] = sd
	}

	refs := features.ReferenceTables{
		WeatherByDistrictSeason: map[string]map[string]features.WeatherAggregate{},
		NutrientsByDistrict:     map[string]features.NutrientAggregate{},
	}
	for district, seasons := range weather {
		refs.WeatherByDistrictSeason[district] = map[string]features.WeatherAggregate{}
		for season, acc := range seasons {
			n := float64(acc.n)
			refs.WeatherByDistrictSeason[district][season] = features.WeatherAggregate{
				Temperature: acc.temp / n,
				Rainfall:    acc.rain / n,
				Humidity:    acc.humid / n,
			}
		}
	}
	for district, acc := range nutrients {
		n := float64(acc.count)
		refs.NutrientsByDistrict[district] = features.NutrientAggregate{
			Nitrogen:   acc.n / n,
			Phosphorus: acc.p / n,
			Potassium:  acc.k / n,
			PH:         acc.ph / n,
		}
	}

	return features.Encoder{
		Schema:     schema,
		Categories: categories,
		Means:      means,
		Scales:     scales,
		References: refs,
	}
}

// solveRidge solves (XᵀX + λI)w = Xᵀy with an unregularized intercept
// column appended.
func solveRidge(rowsX [][]float64, y []float64, dim int, ridge float64) ([]float64, float64, error) {
	n := len(rowsX)
	if n == 0 {
		return nil, 0, core.ErrCorpusEmpty
	}
	aug := dim + 1 // trailing ones column for the intercept

	X := mat.NewDense(n, aug, nil)
	for i, row := range rowsX {
		for j, v := range row {
			X.Set(i, j, v)
		}
		X.Set(i, dim, 1)
	}
	Y := mat.NewVecDense(n, y)

	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	for j := 0; j < dim; j++ {
		xtx.Set(j, j, xtx.At(j, j)+ridge)
	}

	var xty mat.VecDense
	xty.MulVec(X.T(), Y)

	var w mat.VecDense
	if err := w.SolveVec(&xtx, &xty); err != nil {
		return nil, 0, fmt.Errorf("ridge solve failed: %w", err)
	}

	weights := make([]float64, dim)
	for j := 0; j < dim; j++ {
		weights[j] = w.AtVec(j)
	}
	return weights, w.AtVec(dim), nil
}

// scoreHoldout computes R², MAE, and the derived confidence percentage on
// the holdout split. Confidence maps R² into [10, 95] the same way the
// trainer has always reported it: 50 + R²·50, clipped.
func scoreHoldout(b *Bundle, holdX [][]float64, holdY []float64, trainRows int) Metrics {
	m := Metrics{TrainRows: trainRows, HoldoutRows: len(holdY)}
	if len(holdY) == 0 {
		m.ConfidencePct = 50
		return m
	}

	w := mat.NewVecDense(len(b.Weights), b.Weights)
	estimates := make([]float64, len(holdY))
	var absErr float64
	for i, x := range holdX {
		est := mat.Dot(w, mat.NewVecDense(len(x), x)) + b.Intercept
		estimates[i] = est
		absErr += math.Abs(est - holdY[i])
	}

	m.R2 = stat.RSquaredFrom(estimates, holdY, nil)
	if math.IsNaN(m.R2) {
		m.R2 = 0
	}
	m.MAE = absErr / float64(len(holdY))
	m.ConfidencePct = math.Min(95, math.Max(10, 50+m.R2*50))
	return m
}

// corpusChecksum fingerprints the training corpus so a served bundle can be
// traced back to its exact data.
func corpusChecksum(c *corpus.Corpus) string {
	h := sha256.New()
	for _, obs := range c.Observations {
		fmt.Fprintf(h, "%s|%s|%s|%s|%s|%g|%g\n",
			obs.District, obs.Crop, obs.Season, obs.SoilType, obs.Irrigation,
			obs.Area, obs.Yield)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func observationScenario(obs corpus.Observation) scenario.Scenario {
	return scenario.Scenario{
		District:   obs.District,
		Crop:       obs.Crop,
		Season:     obs.Season,
		SoilType:   obs.SoilType,
		Irrigation: obs.Irrigation,
		Area:       obs.Area,
	}
}

func observationCovariates(obs corpus.Observation) features.Covariates {
	return features.Covariates{
		Temperature: obs.Temperature,
		Rainfall:    obs.Rainfall,
		Humidity:    obs.Humidity,
		Nitrogen:    obs.Nitrogen,
		Phosphorus:  obs.Phosphorus,
		Potassium:   obs.Potassium,
		PH:          obs.PH,
	}
}
