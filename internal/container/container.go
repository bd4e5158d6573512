package container

import (
	"context"
	"fmt"

	"agrosim/adapters/corpusfile"
	"agrosim/adapters/postgres"
	"agrosim/app"
	"agrosim/internal"
	"agrosim/internal/catalog"
	"agrosim/internal/config"
	apperrors "agrosim/internal/errors"
	"agrosim/internal/model"
	"agrosim/internal/simulation"
	"agrosim/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Container holds all application dependencies and manages their lifecycle.
// Build wires everything in dependency order; a corpus or catalog failure is
// fatal, a missing model bundle is fatal only when the config requires it.
type Container struct {
	Config *config.Config
	Log    *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Engine state, immutable after Build
	Corpus  ports.CorpusSource
	Catalog *catalog.Catalog
	Bundle  *model.Bundle

	AdvisoryLog ports.AdvisoryLog
	Service     *app.SimulationService
}

// New creates an empty container around validated configuration.
func New(cfg *config.Config, log *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		log = internal.NewDefaultLogger()
	}
	return &Container{Config: cfg, Log: log}, nil
}

// Build initializes every component: corpus source, option catalog, model
// bundle, and the simulation service.
func (c *Container) Build(ctx context.Context) error {
	if err := c.initDatabase(); err != nil {
		return err
	}
	if err := c.initCorpus(ctx); err != nil {
		return err
	}
	if err := c.initModel(); err != nil {
		return err
	}
	c.initService()

	c.Log.Info("container initialized: %d scenario combinations in catalog, model loaded: %t",
		c.Catalog.CombinationCount(), c.Bundle != nil)
	return nil
}

// initDatabase opens Postgres when a URL is configured. The connection backs
// the optional corpus source and the advisory log; without it both fall back
// to file loading and a no-op log.
func (c *Container) initDatabase() error {
	c.AdvisoryLog = ports.NopAdvisoryLog{}
	if c.Config.Database.URL == "" {
		return nil
	}

	db, err := sqlx.Connect("postgres", c.Config.Database.URL)
	if err != nil {
		if c.Config.Corpus.Source == "postgres" {
			return apperrors.Wrap(err, "database connection failed")
		}
		c.Log.Warn("database unavailable, advisory log disabled: %v", err)
		return nil
	}
	c.DB = db
	c.AdvisoryLog = postgres.NewAdvisoryLog(db)
	return nil
}

// initCorpus loads the historical corpus and builds the option catalog.
// Failure here is fatal: without options there is nothing to simulate.
func (c *Container) initCorpus(ctx context.Context) error {
	switch c.Config.Corpus.Source {
	case "postgres":
		c.Corpus = postgres.NewCorpusSource(c.DB, c.Config.Corpus.District)
	default:
		c.Corpus = corpusfile.NewReader(c.Config.Corpus.File, c.Config.Corpus.District, c.Log)
	}

	loaded, err := c.Corpus.Load(ctx)
	if err != nil {
		return apperrors.Wrap(err, "failed to load historical corpus")
	}
	c.Log.Info("loaded %d historical observations for district %q", loaded.Len(), loaded.District)

	cat, err := catalog.Build(loaded)
	if err != nil {
		return apperrors.Wrap(err, "failed to build option catalog")
	}
	c.Catalog = cat
	return nil
}

// initModel loads the trained bundle. When the bundle is missing or invalid
// and MODEL_REQUIRED is false the engine boots in fallback-only mode.
func (c *Container) initModel() error {
	bundle, err := model.Load(c.Config.Model.BundlePath)
	if err != nil {
		if c.Config.Model.Required {
			return apperrors.Wrap(err, "model bundle required but unavailable")
		}
		c.Log.Warn("model bundle unavailable, serving fallback-only advisories: %v", err)
		return nil
	}
	c.Bundle = bundle
	c.Log.Info("loaded model %s version %s (r2=%.3f)",
		bundle.Metadata.ModelName, bundle.Metadata.Version, bundle.Metadata.Metrics.R2)
	return nil
}

func (c *Container) initService() {
	var predictor *simulation.Predictor
	if c.Bundle != nil {
		predictor = simulation.NewPredictor(c.Bundle, c.Config.Engine.PredictWorkers, c.Log)
	}
	generator := simulation.NewGenerator(c.Catalog, c.Config.Engine.MaxCombinations)
	calibrator := simulation.NewCalibrator(c.Catalog, c.Config.Calibration)

	c.Service = app.NewSimulationService(
		c.Catalog, generator, predictor, calibrator,
		c.AdvisoryLog, c.Config.Engine.TopK, c.Log,
	)
}

// Shutdown releases held resources.
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
