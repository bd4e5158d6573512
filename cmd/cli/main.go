package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"agrosim/domain/scenario"
	"agrosim/internal"
	"agrosim/internal/config"
	"agrosim/internal/container"
	"agrosim/internal/features"

	"github.com/joho/godotenv"
)

// Console predictor: answers one scenario from the command line using the
// same engine the API serves.
func main() {
	var (
		district   = flag.String("district", "", "district (defaults to the corpus district)")
		crop       = flag.String("crop", "", "crop to predict")
		season     = flag.String("season", "", "growing season")
		soil       = flag.String("soil", "", "soil type")
		irrigation = flag.String("irrigation", "", "irrigation system")
		area       = flag.Float64("area", 1, "cultivated area in units")

		temperature = flag.Float64("temperature", 0, "observed temperature (0 uses historical average)")
		rainfall    = flag.Float64("rainfall", 0, "observed rainfall (0 uses historical average)")
		humidity    = flag.Float64("humidity", 0, "observed humidity (0 uses historical average)")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	logger := internal.NewDefaultLogger()

	c, err := container.New(cfg, logger)
	if err != nil {
		log.Fatalf("container error: %v", err)
	}
	ctx := context.Background()
	if err := c.Build(ctx); err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer c.Shutdown(ctx)

	sc := scenario.Scenario{
		District:   *district,
		Crop:       *crop,
		Season:     *season,
		SoilType:   *soil,
		Irrigation: *irrigation,
		Area:       *area,
	}
	cov := features.Covariates{
		Temperature: *temperature,
		Rainfall:    *rainfall,
		Humidity:    *humidity,
	}

	report := c.Service.PredictOne(ctx, sc, cov)
	printReport(report)
}

func printReport(r scenario.AdvisoryReport) {
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Advisory %s (%s)\n", r.ID, r.Status)
	fmt.Println(strings.Repeat("=", 60))

	s := r.Summary
	fmt.Printf("Scenario:    %s / %s / %s / %s / %s, area %g\n",
		s.Scenario.District, s.Scenario.Crop, s.Scenario.Season,
		s.Scenario.SoilType, s.Scenario.Irrigation, s.Scenario.Area)
	fmt.Printf("Yield:       %.2f tons per unit area\n", s.YieldPerArea)
	fmt.Printf("Total:       %.2f tons\n", s.EstimatedTotalYield)
	fmt.Printf("Confidence:  %.0f%%\n", s.Confidence*100)
	fmt.Printf("Risk:        %s\n", s.Risk)
	if r.CoverageWarning {
		fmt.Println("Coverage:    extrapolated, no matching historical combination")
	}

	fmt.Println(strings.Repeat("-", 60))
	fmt.Println(r.Narrative)
}
