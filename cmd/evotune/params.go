package main

import (
	"github.com/scstack/evogrid/sim"
)

// ParamSpec describes one tunable environment parameter and its search
// bounds.
type ParamSpec struct {
	Name string
	Min  float64
	Max  float64
	Def  float64
}

// ParamVector is the set of parameters the optimizer searches over.
// Values travel normalized to [0,1] inside the optimizer and are
// denormalized back to raw values for evaluation.
type ParamVector struct {
	specs []ParamSpec
}

// NewParamVector returns the tunable parameter set: the knobs of the
// energy economy that decide whether populations persist.
func NewParamVector() *ParamVector {
	return &ParamVector{specs: []ParamSpec{
		{Name: "mutation_prob", Min: 0.001, Max: 0.2, Def: sim.DefaultMutationProb},
		{Name: "avg_new_food_per_tick", Min: 0.1, Max: 4.0, Def: sim.DefaultAvgNewFoodPerTick},
		{Name: "energy_per_food", Min: 10, Max: 120, Def: sim.DefaultEnergyPerFood},
		{Name: "energy_per_kill", Min: 5, Max: 100, Def: sim.DefaultEnergyPerKill},
		{Name: "reproduce_cost", Min: 10, Max: 100, Def: sim.DefaultReproduceCost},
	}}
}

// Dim returns the search space dimension.
func (pv *ParamVector) Dim() int { return len(pv.specs) }

// Names returns parameter names in vector order.
func (pv *ParamVector) Names() []string {
	names := make([]string, len(pv.specs))
	for i, s := range pv.specs {
		names[i] = s.Name
	}
	return names
}

// DefaultVector returns the raw default values.
func (pv *ParamVector) DefaultVector() []float64 {
	raw := make([]float64, len(pv.specs))
	for i, s := range pv.specs {
		raw[i] = s.Def
	}
	return raw
}

// Normalize maps raw values into [0,1] per dimension.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	x := make([]float64, len(raw))
	for i, s := range pv.specs {
		x[i] = (raw[i] - s.Min) / (s.Max - s.Min)
	}
	return x
}

// Denormalize maps optimizer coordinates back to raw values, clamping
// to the search bounds.
func (pv *ParamVector) Denormalize(x []float64) []float64 {
	raw := make([]float64, len(x))
	for i, s := range pv.specs {
		v := s.Min + x[i]*(s.Max-s.Min)
		if v < s.Min {
			v = s.Min
		}
		if v > s.Max {
			v = s.Max
		}
		raw[i] = v
	}
	return raw
}

// Apply installs raw values into a copy of the base parameters.
func (pv *ParamVector) Apply(base sim.EnvironmentParams, raw []float64) sim.EnvironmentParams {
	p := base
	p.MutationProb = raw[0]
	p.AvgNewFoodPerTick = raw[1]
	p.EnergyPerFood = int(raw[2])
	p.EnergyPerKill = int(raw[3])
	p.ReproduceCost = int(raw[4])
	return p
}
