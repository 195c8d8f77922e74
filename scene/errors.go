package scene

import "errors"

var (
	ErrNoCamera     = errors.New("scene: no camera defined")
	ErrNoIntegrator = errors.New("scene: no integrator defined")
	ErrNoSampler    = errors.New("scene: no sampler defined")
	ErrNotActivated = errors.New("scene: scene has not been activated")
)
