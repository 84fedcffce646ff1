package sim

import (
	"math/rand"

	"github.com/scstack/evogrid/neural"
)

// Action is one of the closed set of things a creature can do in a tick.
type Action uint8

const (
	Stay Action = iota
	MoveForwards
	MoveBackwards
	MoveLeft
	MoveRight
	RotateCCW
	RotateCW
	Reproduce
	Kill
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case Stay:
		return "stay"
	case MoveForwards:
		return "move_forwards"
	case MoveBackwards:
		return "move_backwards"
	case MoveLeft:
		return "move_left"
	case MoveRight:
		return "move_right"
	case RotateCCW:
		return "rotate_ccw"
	case RotateCW:
		return "rotate_cw"
	case Reproduce:
		return "reproduce"
	case Kill:
		return "kill"
	}
	return "unknown"
}

// IsMove reports whether the action is one of the four movements.
func (a Action) IsMove() bool {
	return a == MoveForwards || a == MoveBackwards || a == MoveLeft || a == MoveRight
}

// SensorCode is the numeric encoding of an action fed back into the
// brain as the last-action input. Similar actions get nearby values.
func (a Action) SensorCode() float64 {
	switch a {
	case Stay:
		return 0
	case MoveForwards:
		return 2
	case MoveBackwards:
		return 3
	case MoveLeft:
		return 4
	case MoveRight:
		return 5
	case RotateCCW:
		return 10
	case RotateCW:
		return 11
	case Reproduce:
		return 15
	default: // Kill
		return 20
	}
}

// SensorType is a semantic input channel bound to one brain input slot.
type SensorType uint8

const (
	SensorAge SensorType = iota
	SensorEnergy
	SensorVisionDist
	SensorVisionRed
	SensorVisionGreen
	SensorVisionBlue
	SensorOrientation
	SensorLastAction
)

// EnabledSensors is the input slot layout of every brain: slot i of the
// input layer carries EnabledSensors[i]. Its length fixes the input
// layer size.
var EnabledSensors = []SensorType{
	SensorAge,
	SensorEnergy,
	SensorVisionDist,
	SensorVisionRed,
	SensorVisionGreen,
	SensorVisionBlue,
	SensorOrientation,
	SensorLastAction,
}

// EnabledActions is the output slot layout: output neuron i selects
// EnabledActions[i]. Its length fixes the output layer size, and its
// order decides ties (lowest slot wins).
var EnabledActions = []Action{
	Stay,
	MoveForwards,
	MoveBackwards,
	MoveLeft,
	MoveRight,
	RotateCCW,
	RotateCW,
	Reproduce,
	Kill,
}

// Brain topology and weight initialization range.
const (
	BrainHiddenSize   = 10
	BrainHiddenLayers = 2
	WeightInitMin     = -50.0
	WeightInitMax     = 50.0
)

// VisionSentinel is written to all vision-derived inputs when nothing
// is in view. It sits far outside any real observed range so "nothing
// visible" is distinguishable from "something dark or distant".
const VisionSentinel = -1e6

// Brain wraps a neural.Net with the fixed mapping from input slot to
// sensor type and output slot to action.
type Brain struct {
	Net     *neural.Net  `json:"net"`
	Sensors []SensorType `json:"sensors"`
	Actions []Action     `json:"actions"`
}

func brainLayerSizes() []int {
	sizes := make([]int, 0, BrainHiddenLayers+2)
	sizes = append(sizes, len(EnabledSensors))
	for i := 0; i < BrainHiddenLayers; i++ {
		sizes = append(sizes, BrainHiddenSize)
	}
	return append(sizes, len(EnabledActions))
}

// NewBrain creates a brain with uniformly random weights and the
// standard sensor/action slot layout.
func NewBrain(rng *rand.Rand) *Brain {
	return &Brain{
		Net:     neural.NewNet(brainLayerSizes(), WeightInitMin, WeightInitMax, rng),
		Sensors: append([]SensorType(nil), EnabledSensors...),
		Actions: append([]Action(nil), EnabledActions...),
	}
}

// NewBrainCopy deep-copies a parent brain, mutating each weight and
// bias independently with probability mutationProb. Slot mappings are
// inherited unchanged.
func NewBrainCopy(parent *Brain, mutationProb float64, rng *rand.Rand) *Brain {
	net := parent.Net.Clone()
	net.Mutate(rng, mutationProb, WeightInitMin, WeightInitMax)
	return &Brain{
		Net:     net,
		Sensors: append([]SensorType(nil), parent.Sensors...),
		Actions: append([]Action(nil), parent.Actions...),
	}
}

// SetInput writes the value of one input slot.
func (b *Brain) SetInput(slot int, v float64) {
	b.Net.SetInput(slot, v)
}

// NextAction evaluates the network and returns the action bound to the
// winning output slot.
func (b *Brain) NextAction() Action {
	return b.Actions[b.Net.Evaluate()]
}
