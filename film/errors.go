package film

import (
	"errors"
	"fmt"
	"strings"

	"github.com/achilleasa/lux/types"
)

var (
	ErrInvalidSample = errors.New("film: sample value is not finite")
	ErrUnknownPolicy = errors.New("film: unknown non-finite sample policy")
)

// SampleError describes a rejected sample.
type SampleError struct {
	// Sample position in frame coordinates.
	Pos types.Vec2

	Value types.Color
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("%s: %v at (%g, %g)", ErrInvalidSample, e.Value, e.Pos[0], e.Pos[1])
}

func (e *SampleError) Unwrap() error {
	return ErrInvalidSample
}

// Controls how Block.Put treats samples with NaN or infinite values.
type NonFinitePolicy uint8

const (
	// Reject the sample and return a *SampleError.
	Strict NonFinitePolicy = iota

	// Log the sample and discard it.
	Lenient
)

// Parse a policy name.
func ParsePolicy(name string) (NonFinitePolicy, error) {
	switch strings.ToLower(name) {
	case "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	}
	return Strict, fmt.Errorf("%w %q", ErrUnknownPolicy, name)
}

func (p NonFinitePolicy) String() string {
	if p == Lenient {
		return "lenient"
	}
	return "strict"
}
