// Package filter provides the reconstruction filters used to splat image
// samples into pixels.
package filter

import (
	"errors"
	"fmt"
	"sort"

	"github.com/chewxy/math32"
)

var ErrUnknownFilter = errors.New("filter: unknown filter")

// A separable, symmetric pixel reconstruction filter.
type Filter interface {
	// Get the filter radius in pixels.
	Radius() float32

	// Evaluate the 1D filter at offset x from the pixel center.
	Eval(x float32) float32
}

type factory func(radius float32) Filter

var registry = map[string]factory{
	"box": func(radius float32) Filter {
		return Box{radius: withDefault(radius, 0.5)}
	},
	"tent": func(radius float32) Filter {
		return Tent{radius: withDefault(radius, 1)}
	},
	"gaussian": func(radius float32) Filter {
		return NewGaussian(withDefault(radius, 2), 0.5)
	},
	"mitchell": func(radius float32) Filter {
		return NewMitchellNetravali(withDefault(radius, 2), 1.0/3.0, 1.0/3.0)
	},
}

func withDefault(radius, def float32) float32 {
	if radius <= 0 {
		return def
	}
	return radius
}

// Create a filter by name. A non-positive radius selects the filter's
// default radius.
func New(name string, radius float32) (Filter, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFilter, name)
	}
	return f(radius), nil
}

// Get the names of all supported filters.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Box filter. Every sample within the radius gets the same weight.
type Box struct {
	radius float32
}

// Create a box filter.
func NewBox(radius float32) Box {
	return Box{radius: radius}
}

func (f Box) Radius() float32 { return f.radius }

func (f Box) Eval(x float32) float32 {
	return 1
}

// Tent filter.
type Tent struct {
	radius float32
}

// Create a tent filter.
func NewTent(radius float32) Tent {
	return Tent{radius: radius}
}

func (f Tent) Radius() float32 { return f.radius }

func (f Tent) Eval(x float32) float32 {
	return math32.Max(0, 1-math32.Abs(x)/f.radius)
}

// Gaussian filter shifted down so it reaches zero at the radius.
type Gaussian struct {
	radius float32
	stddev float32
	alpha  float32
	floor  float32
}

// Create a gaussian filter with the given standard deviation.
func NewGaussian(radius, stddev float32) Gaussian {
	alpha := -1.0 / (2.0 * stddev * stddev)
	return Gaussian{
		radius: radius,
		stddev: stddev,
		alpha:  alpha,
		floor:  math32.Exp(alpha * radius * radius),
	}
}

func (f Gaussian) Radius() float32 { return f.radius }

func (f Gaussian) Eval(x float32) float32 {
	return math32.Max(0, math32.Exp(f.alpha*x*x)-f.floor)
}

// Mitchell-Netravali cubic filter.
type MitchellNetravali struct {
	radius float32
	b, c   float32
}

// Create a Mitchell-Netravali filter with the given B and C parameters.
func NewMitchellNetravali(radius, b, c float32) MitchellNetravali {
	return MitchellNetravali{radius: radius, b: b, c: c}
}

func (f MitchellNetravali) Radius() float32 { return f.radius }

func (f MitchellNetravali) Eval(x float32) float32 {
	x = math32.Abs(2 * x / f.radius)
	x2, x3 := x*x, x*x*x
	b, c := f.b, f.c

	switch {
	case x < 1:
		return 1.0 / 6.0 * ((12-9*b-6*c)*x3 + (-18+12*b+6*c)*x2 + (6 - 2*b))
	case x < 2:
		return 1.0 / 6.0 * ((-b-6*c)*x3 + (6*b+30*c)*x2 + (-12*b-48*c)*x + (8*b + 24*c))
	default:
		return 0
	}
}
