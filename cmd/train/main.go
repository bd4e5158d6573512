package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"agrosim/adapters/corpusfile"
	"agrosim/internal"
	"agrosim/internal/model"
)

// Trains the yield model from a historical corpus file and writes the
// artifact bundle the serving process loads at boot.
func main() {
	var (
		corpusPath = flag.String("corpus", "data/data_season.csv", "historical corpus file (CSV or XLSX)")
		district   = flag.String("district", "Mysuru", "district to train for (empty trains on every row)")
		out        = flag.String("out", "models/yield_bundle.json", "output bundle path")
		ridge      = flag.Float64("ridge", 1e-3, "L2 regularization strength")
		holdout    = flag.Int("holdout-every", 5, "send every Nth row to the holdout split")
	)
	flag.Parse()

	logger := internal.NewDefaultLogger()
	reader := corpusfile.NewReader(*corpusPath, *district, logger)

	corpus, err := reader.Load(context.Background())
	if err != nil {
		log.Fatalf("failed to load corpus: %v", err)
	}
	logger.Info("loaded %d observations from %s", corpus.Len(), *corpusPath)

	bundle, err := model.Fit(corpus, model.TrainOptions{
		Ridge:        *ridge,
		HoldoutEvery: *holdout,
	})
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}

	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("failed to create output directory: %v", err)
		}
	}
	if err := bundle.Save(*out); err != nil {
		log.Fatalf("failed to write bundle: %v", err)
	}

	m := bundle.Metadata.Metrics
	fmt.Printf("model %s version %s written to %s\n",
		bundle.Metadata.ModelName, bundle.Metadata.Version, *out)
	fmt.Printf("train rows: %d, holdout rows: %d\n", m.TrainRows, m.HoldoutRows)
	fmt.Printf("r2: %.4f, mae: %.4f, confidence: %.1f%%\n", m.R2, m.MAE, m.ConfidencePct)
}
