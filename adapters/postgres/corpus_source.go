package postgres

import (
	"context"
	"fmt"

	"agrosim/domain/core"
	"agrosim/domain/corpus"
	"agrosim/ports"

	"github.com/jmoiron/sqlx"
)

// corpusSource implements the CorpusSource interface over a
// historical_observations table
type corpusSource struct {
	db       *sqlx.DB
	district string
}

// NewCorpusSource creates a Postgres-backed corpus source. district filters
// rows; empty loads every district.
func NewCorpusSource(db *sqlx.DB, district string) ports.CorpusSource {
	return &corpusSource{db: db, district: district}
}

type observationRow struct {
	District    string  `db:"district"`
	Crop        string  `db:"crop"`
	Season      string  `db:"season"`
	SoilType    string  `db:"soil_type"`
	Irrigation  string  `db:"irrigation"`
	Area        float64 `db:"area"`
	Temperature float64 `db:"temperature"`
	Rainfall    float64 `db:"rainfall"`
	Humidity    float64 `db:"humidity"`
	Nitrogen    float64 `db:"nitrogen"`
	Phosphorus  float64 `db:"phosphorus"`
	Potassium   float64 `db:"potassium"`
	PH          float64 `db:"ph"`
	Yield       float64 `db:"yield_per_area"`
}

// Load reads historical observations for the configured district
func (s *corpusSource) Load(ctx context.Context) (*corpus.Corpus, error) {
	query := `SELECT
		district, crop, season,
		COALESCE(soil_type, '') AS soil_type, COALESCE(irrigation, '') AS irrigation,
		area,
		COALESCE(temperature, 0) AS temperature, COALESCE(rainfall, 0) AS rainfall,
		COALESCE(humidity, 0) AS humidity,
		COALESCE(nitrogen, 0) AS nitrogen, COALESCE(phosphorus, 0) AS phosphorus,
		COALESCE(potassium, 0) AS potassium, COALESCE(ph, 0) AS ph,
		yield_per_area
	FROM historical_observations
	WHERE area > 0 AND yield_per_area > 0`

	args := []interface{}{}
	if s.district != "" {
		query += ` AND district ILIKE $1`
		args = append(args, s.district)
	}
	query += ` ORDER BY district, crop, season`

	var rows []observationRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to load historical observations: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no historical observations for district %q",
			core.ErrCorpusEmpty, s.district)
	}

	c := &corpus.Corpus{District: corpus.NormalizeValue(s.district)}
	for _, r := range rows {
		c.Observations = append(c.Observations, corpus.Observation{
			District:    corpus.NormalizeValue(r.District),
			Crop:        corpus.NormalizeValue(r.Crop),
			Season:      corpus.NormalizeValue(r.Season),
			SoilType:    corpus.NormalizeValue(r.SoilType),
			Irrigation:  corpus.NormalizeValue(r.Irrigation),
			Area:        r.Area,
			Temperature: r.Temperature,
			Rainfall:    r.Rainfall,
			Humidity:    r.Humidity,
			Nitrogen:    r.Nitrogen,
			Phosphorus:  r.Phosphorus,
			Potassium:   r.Potassium,
			PH:          r.PH,
			Yield:       r.Yield,
		})
	}
	return c, nil
}
