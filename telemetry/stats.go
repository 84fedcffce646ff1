// Package telemetry collects per-tick statistics from a running
// environment and writes them as CSV for offline analysis.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/scstack/evogrid/sim"
)

// TickStats is one row of simulation statistics.
type TickStats struct {
	Tick int `csv:"tick"`

	// Board composition
	Creatures int `csv:"creatures"`
	Food      int `csv:"food"`
	Walls     int `csv:"walls"`
	Blank     int `csv:"blank"`
	Fight     int `csv:"fight"`

	// Lifetime counters
	TotalCreatures int `csv:"total_creatures"`
	Kills          int `csv:"kills"`
	NaturalDeaths  int `csv:"natural_deaths"`

	// Births since the previous sample, derived from the running total.
	// Only set by Collector.Sample; a bare Collect leaves it zero.
	Births int `csv:"births"`

	// Population energy/age distribution
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`
	AgeMean    float64 `csv:"age_mean"`
}

// Collect samples the environment's current state into a stats row.
func Collect(env *sim.Environment) TickStats {
	s := TickStats{
		Tick:           env.TimeStep,
		Creatures:      env.NumCreatures,
		Food:           env.NumFood,
		Walls:          env.NumWalls,
		Blank:          env.NumBlank,
		TotalCreatures: env.NumTotalCreatures,
		Kills:          env.NumKills,
		NaturalDeaths:  env.NumNaturalDeaths,
	}

	for _, cell := range env.Grid.Cells {
		if cell.Kind == sim.FightSpace {
			s.Fight++
		}
	}
	// The environment counts fight markers as blank; report them in
	// their own column so the composition sums to the board area.
	s.Blank -= s.Fight

	if len(env.Creatures) == 0 {
		return s
	}

	energies := make([]float64, 0, len(env.Creatures))
	ages := make([]float64, 0, len(env.Creatures))
	for _, c := range env.Creatures {
		energies = append(energies, float64(c.Energy))
		ages = append(ages, float64(c.Age))
	}

	s.EnergyMean = stat.Mean(energies, nil)
	s.AgeMean = stat.Mean(ages, nil)

	sort.Float64s(energies)
	s.EnergyP10 = Percentile(energies, 0.10)
	s.EnergyP50 = Percentile(energies, 0.50)
	s.EnergyP90 = Percentile(energies, 0.90)

	return s
}

// Collector derives interval statistics across repeated samples of the
// same environment.
type Collector struct {
	lastTotal int
}

// NewCollector starts sampling from the environment's current state, so
// the founding population is not reported as births.
func NewCollector(env *sim.Environment) *Collector {
	return &Collector{lastTotal: env.NumTotalCreatures}
}

// Sample collects a stats row and fills in the per-interval births.
func (cl *Collector) Sample(env *sim.Environment) TickStats {
	s := Collect(env)
	s.Births = s.TotalCreatures - cl.lastTotal
	cl.lastTotal = s.TotalCreatures
	return s
}

// Percentile calculates the p-th percentile of a sorted slice with
// linear interpolation. p should be in [0, 1]. Returns 0 for an empty
// slice.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// LogValue implements slog.LogValuer for structured logging.
func (s TickStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tick", s.Tick),
		slog.Int("creatures", s.Creatures),
		slog.Int("food", s.Food),
		slog.Int("total_creatures", s.TotalCreatures),
		slog.Int("kills", s.Kills),
		slog.Int("natural_deaths", s.NaturalDeaths),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("age_mean", s.AgeMean),
	)
}
