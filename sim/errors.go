package sim

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by environment operations. A full board
// (ErrNoSpace) is an expected condition: callers treat it as "the
// action yields no effect", never as a failure of the tick.
var (
	// ErrExtinct signals that RunSteps stopped early because the
	// population reached zero.
	ErrExtinct = errors.New("no creatures remain")

	// ErrNotFound signals a creature id with no matching live creature.
	ErrNotFound = errors.New("creature not found")

	// ErrNoSpace signals that no blank cell was found within the
	// placement attempt budget.
	ErrNoSpace = errors.New("no blank space available")

	// ErrOccupied signals an attempt to overwrite a creature cell
	// through a non-creature mutator.
	ErrOccupied = errors.New("space occupied by a creature")
)

// ConfigError reports invalid environment construction parameters.
// It is returned before any environment state is built.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

// StateError reports a corrupt or version-incompatible snapshot. The
// load attempt is aborted and in-memory state is left unmodified.
type StateError struct {
	Reason string
	Err    error
}

func (e *StateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("snapshot: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("snapshot: %s", e.Reason)
}

func (e *StateError) Unwrap() error { return e.Err }
