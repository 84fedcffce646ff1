package main

import (
	"errors"
	"log/slog"
	"math/rand"

	"github.com/scstack/evogrid/sim"
)

// FitnessEvaluator scores a parameter vector by running headless
// simulations across several seeds and measuring how long populations
// persist and how large they end up.
type FitnessEvaluator struct {
	params   *ParamVector
	maxTicks int
	seeds    []int64
	base     sim.EnvironmentParams

	evals int
}

// NewFitnessEvaluator creates an evaluator over the given seeds.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []int64, base sim.EnvironmentParams) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:   params,
		maxTicks: maxTicks,
		seeds:    seeds,
		base:     base,
	}
}

// Evaluate returns the cost of a raw parameter vector (lower is
// better): the negated mean of survival ticks plus a population bonus.
func (fe *FitnessEvaluator) Evaluate(raw []float64) float64 {
	fe.evals++
	envParams := fe.params.Apply(fe.base, raw)

	var total float64
	for _, seed := range fe.seeds {
		total += fe.runOne(envParams, seed)
	}
	mean := total / float64(len(fe.seeds))

	slog.Info("evaluated", "eval", fe.evals, "score", mean, "params", raw)
	return -mean
}

// runOne scores a single seeded run. Survival dominates; a surviving
// population earns a secondary bonus for its final size, capped so
// runaway blooms don't drown out longevity.
func (fe *FitnessEvaluator) runOne(params sim.EnvironmentParams, seed int64) float64 {
	rng := rand.New(rand.NewSource(seed))
	env, err := sim.NewRandom(params, rng)
	if err != nil {
		return 0
	}

	err = env.RunSteps(fe.maxTicks)
	score := float64(env.TimeStep)
	if errors.Is(err, sim.ErrExtinct) {
		return score
	}

	pop := env.NumCreatures
	if pop > params.StartCreatures*2 {
		pop = params.StartCreatures * 2
	}
	return score + float64(pop)*10
}
