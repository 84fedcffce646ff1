// Command evogrid runs the evolution simulation headless: build or load
// an environment, advance it N ticks, and write stats and snapshots.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/scstack/evogrid/config"
	"github.com/scstack/evogrid/sim"
	"github.com/scstack/evogrid/store"
	"github.com/scstack/evogrid/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	steps := flag.Int("steps", 1000, "Number of ticks to run")
	preset := flag.Int("preset", -2, "Wall layout preset override (-1 = random, -2 = use config)")
	loadPath := flag.String("load", "", "Load environment from a JSON snapshot file")
	partial := flag.String("partial", "", "With -load: import only these subsets (comma list of params,creatures,walls,food)")
	savePath := flag.String("save", "", "Save the final environment to a JSON snapshot file")
	outputDir := flag.String("out", "", "Output directory for CSV stats and config snapshot")
	dbPath := flag.String("db", "", "SQLite snapshot database path (optional)")
	dbName := flag.String("db-name", "latest", "Snapshot name used with -db")
	logEvery := flag.Int("log-every", 0, "Log stats every N ticks (0 = use config)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))
	slog.Info("starting", "seed", rngSeed, "steps", *steps)

	env, err := buildEnvironment(cfg, *preset, *loadPath, *partial, rng)
	if err != nil {
		slog.Error("failed to build environment", "error", err)
		os.Exit(1)
	}

	out, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to open output directory", "error", err)
		os.Exit(1)
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	every := *logEvery
	if every == 0 {
		every = cfg.Telemetry.LogEvery
	}
	if every <= 0 {
		every = 100
	}

	collector := telemetry.NewCollector(env)

	extinct := false
	for done := 0; done < *steps; done += every {
		batch := every
		if remaining := *steps - done; remaining < batch {
			batch = remaining
		}
		err := env.RunSteps(batch)

		stats := collector.Sample(env)
		slog.Info("tick", "stats", stats)
		if werr := out.WriteTick(stats); werr != nil {
			slog.Warn("failed to write telemetry", "error", werr)
		}

		if errors.Is(err, sim.ErrExtinct) {
			slog.Info("population extinct", "tick", env.TimeStep)
			extinct = true
			break
		}
	}

	if err := saveResults(env, *savePath, *dbPath, *dbName); err != nil {
		slog.Error("failed to save results", "error", err)
		os.Exit(1)
	}

	slog.Info("done",
		"tick", env.TimeStep,
		"creatures", env.NumCreatures,
		"total_creatures", env.NumTotalCreatures,
		"kills", env.NumKills,
		"natural_deaths", env.NumNaturalDeaths,
		"extinct", extinct,
	)
}

// buildEnvironment loads a snapshot if one was given, otherwise builds
// a fresh random environment from config. A -partial list imports only
// the named snapshot subsets into a fresh config-built environment.
func buildEnvironment(cfg *config.Config, presetOverride int, loadPath, partial string, rng *rand.Rand) (*sim.Environment, error) {
	fresh := func() (*sim.Environment, error) {
		params := cfg.EnvParams()
		preset := cfg.World.Preset
		if presetOverride != -2 {
			preset = presetOverride
		}
		if preset >= 0 {
			return sim.NewRandomWithPreset(params, preset, rng)
		}
		return sim.NewRandom(params, rng)
	}

	if loadPath == "" {
		return fresh()
	}

	data, err := os.ReadFile(loadPath)
	if err != nil {
		return nil, err
	}
	if partial == "" {
		return sim.FromJSON(data, rng)
	}

	opts, err := parseLoadOptions(partial)
	if err != nil {
		return nil, err
	}
	env, err := fresh()
	if err != nil {
		return nil, err
	}
	if err := env.LoadPartial(data, opts); err != nil {
		return nil, err
	}
	return env, nil
}

func parseLoadOptions(list string) (sim.LoadOptions, error) {
	var opts sim.LoadOptions
	for _, name := range strings.Split(list, ",") {
		switch strings.TrimSpace(name) {
		case "params":
			opts.Parameters = true
		case "creatures":
			opts.Creatures = true
		case "walls":
			opts.Walls = true
		case "food":
			opts.Food = true
		default:
			return opts, fmt.Errorf("unknown -partial subset %q (want params, creatures, walls, food)", name)
		}
	}
	return opts, nil
}

// saveResults writes the final environment wherever the caller asked.
func saveResults(env *sim.Environment, savePath, dbPath, dbName string) error {
	if savePath != "" {
		data, err := env.ToJSON()
		if err != nil {
			return err
		}
		if err := os.WriteFile(savePath, data, 0644); err != nil {
			return err
		}
		slog.Info("saved snapshot", "path", savePath)
	}

	if dbPath != "" {
		db, err := store.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Save(dbName, env); err != nil {
			return err
		}
		slog.Info("saved snapshot", "db", dbPath, "name", dbName)
	}

	return nil
}
