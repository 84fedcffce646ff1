// Command evotune searches environment parameters with CMA-ES for
// combinations that keep evolved populations alive over long runs.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/optimize"

	"github.com/scstack/evogrid/config"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	steps := flag.Int("steps", 5000, "Ticks per simulation run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseParams := config.Cfg().EnvParams()

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}

	evaluator := NewFitnessEvaluator(params, *steps, evalSeeds, baseParams)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return evaluator.Evaluate(params.Denormalize(x))
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // sequential: the sim itself must stay single-threaded
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
	}

	initX := params.Normalize(params.DefaultVector())
	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil && result == nil {
		log.Fatalf("optimization failed: %v", err)
	}

	best := params.Denormalize(result.X)
	slog.Info("search finished", "score", -result.F, "evals", evaluator.evals)

	if err := writeResults(*outputDir, params, best, -result.F); err != nil {
		log.Fatalf("failed to write results: %v", err)
	}
	if err := writeBestConfig(*outputDir, config.Cfg(), best); err != nil {
		log.Fatalf("failed to write best config: %v", err)
	}
}

// writeBestConfig saves a ready-to-run config YAML with the winning
// parameter vector applied over the base configuration.
func writeBestConfig(dir string, base *config.Config, best []float64) error {
	cfg := *base
	cfg.Reproduction.MutationProb = best[0]
	cfg.Food.AvgNewPerTick = best[1]
	cfg.Energy.PerFood = int(best[2])
	cfg.Energy.PerKill = int(best[3])
	cfg.Energy.ReproduceCost = int(best[4])
	return cfg.WriteYAML(filepath.Join(dir, "best_config.yaml"))
}

// writeResults stores the best parameter vector as CSV.
func writeResults(dir string, params *ParamVector, best []float64, score float64) error {
	f, err := os.Create(filepath.Join(dir, "best.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(append(params.Names(), "score")); err != nil {
		return err
	}
	row := make([]string, 0, len(best)+1)
	for _, v := range best {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	row = append(row, fmt.Sprintf("%.2f", score))
	return w.Write(row)
}
