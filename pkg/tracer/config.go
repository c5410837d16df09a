package tracer

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// Mode selects the scattering model used for the photon walk
type Mode int

const (
	// ModeFull branches into diffuse, specular and transmitted walks
	ModeFull Mode = iota
	// ModeMirror only bounces photons by mirror reflectivity, for quick maps
	ModeMirror
)

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeMirror:
		return "mirror"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "full" or "mirror"
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "full", "":
		return ModeFull, nil
	case "mirror":
		return ModeMirror, nil
	default:
		return 0, fmt.Errorf("unknown tracer mode %q (want full or mirror)", s)
	}
}

// Config contains configuration for photon tracing
type Config struct {
	EmissionIntensity     float64 // Photons emitted per unit of light energy
	AbsorptionProbability float64 // Russian roulette absorption chance k_a at every hit
	MaxDepth              int     // Walks stop once a photon has been recorded at this depth
	Mode                  Mode
	Epsilon               float64 // Offset applied to recorded locations and continuation rays
	NumWorkers            int     // Number of parallel workers (0 = use CPU count)
	BatchSize             int     // Photons emitted per work unit
	Seed                  int64   // Batch i draws from a generator seeded Seed+i
	TransmissionGate      bool    // Roll Bernoulli(Transmission) before refracting; failures end as Terminated
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		EmissionIntensity:     100,
		AbsorptionProbability: 0.1,
		MaxDepth:              5,
		Mode:                  ModeFull,
		Epsilon:               0.0003,
		NumWorkers:            0,
		BatchSize:             2048,
		Seed:                  42,
	}
}

// Validate reports every invalid setting
func (c Config) Validate() error {
	var err error
	if c.EmissionIntensity < 0 {
		err = multierr.Append(err, fmt.Errorf("emission intensity %v must be non-negative", c.EmissionIntensity))
	}
	if c.AbsorptionProbability < 0 || c.AbsorptionProbability > 1 {
		err = multierr.Append(err, fmt.Errorf("absorption probability %v must be in [0, 1]", c.AbsorptionProbability))
	}
	if c.MaxDepth < 1 {
		err = multierr.Append(err, fmt.Errorf("max depth %d must be at least 1", c.MaxDepth))
	}
	if c.Mode != ModeFull && c.Mode != ModeMirror {
		err = multierr.Append(err, fmt.Errorf("unknown mode %v", c.Mode))
	}
	if c.Epsilon < 0 {
		err = multierr.Append(err, fmt.Errorf("epsilon %v must be non-negative", c.Epsilon))
	}
	if c.BatchSize < 1 {
		err = multierr.Append(err, fmt.Errorf("batch size %d must be positive", c.BatchSize))
	}
	return err
}
