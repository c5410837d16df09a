package renderer

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"
)

// IndirectMode selects how indirect diffuse light is estimated
type IndirectMode int

const (
	// IndirectPath recurses along one hemisphere sample per hit
	IndirectPath IndirectMode = iota
	// IndirectPhotons gathers photons from a prebuilt map around the hit
	IndirectPhotons
	// IndirectNone renders direct light and specular recursion only
	IndirectNone
)

func (m IndirectMode) String() string {
	switch m {
	case IndirectPath:
		return "path"
	case IndirectPhotons:
		return "photons"
	case IndirectNone:
		return "none"
	default:
		return fmt.Sprintf("IndirectMode(%d)", int(m))
	}
}

// ParseIndirectMode accepts "path", "photons" or "none"
func ParseIndirectMode(s string) (IndirectMode, error) {
	switch strings.ToLower(s) {
	case "path", "":
		return IndirectPath, nil
	case "photons", "photon":
		return IndirectPhotons, nil
	case "none", "direct":
		return IndirectNone, nil
	default:
		return 0, fmt.Errorf("unknown indirect mode %q (want path, photons or none)", s)
	}
}

// GatherKernel weights each photon in a density estimate
type GatherKernel int

const (
	// KernelInverseSquare weights by cosine over (ε + distance)²
	KernelInverseSquare GatherKernel = iota
	// KernelUnweighted weights by cosine only
	KernelUnweighted
	// KernelVisibility is inverse-square, dropping photons the hit point cannot see
	KernelVisibility
)

func (k GatherKernel) String() string {
	switch k {
	case KernelInverseSquare:
		return "inverse-square"
	case KernelUnweighted:
		return "unweighted"
	case KernelVisibility:
		return "visibility"
	default:
		return fmt.Sprintf("GatherKernel(%d)", int(k))
	}
}

// ParseGatherKernel accepts "inverse-square", "unweighted" or "visibility"
func ParseGatherKernel(s string) (GatherKernel, error) {
	switch strings.ToLower(s) {
	case "inverse-square", "inverse_square", "":
		return KernelInverseSquare, nil
	case "unweighted":
		return KernelUnweighted, nil
	case "visibility":
		return KernelVisibility, nil
	default:
		return 0, fmt.Errorf("unknown gather kernel %q", s)
	}
}

// Config contains configuration for rendering
type Config struct {
	Width           int
	Height          int
	SamplesPerPixel int     // Total samples per pixel across all passes
	MaxDepth        int     // Recursion depth; 0 is direct lighting only
	Epsilon         float64 // Offset for shadow and secondary ray origins
	Gamma           float64 // Output gamma (1 = linear)
	Seed            int64   // Tile i draws from a generator seeded Seed+i+42

	Indirect       IndirectMode
	GatherRadius   float64
	GatherKernel   GatherKernel
	GatherScale    float64 // Multiplier applied to the density estimate
	GatherEpsilon  float64 // ε in the inverse-square kernel
	GatherMinDepth int     // Ignore photons shallower than this (0 = no bound)
	GatherMaxDepth int     // Ignore photons deeper than this (0 = no bound)

	TileSize       int // Size of each tile (64x64 recommended)
	InitialSamples int // Samples for first pass (1 recommended)
	MaxPasses      int // Maximum number of passes
	NumWorkers     int // Number of parallel workers (0 = use CPU count)
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:           400,
		Height:          300,
		SamplesPerPixel: 16,
		MaxDepth:        3,
		Epsilon:         0.0003,
		Gamma:           2.0,
		Seed:            0,

		Indirect:      IndirectPath,
		GatherRadius:  0.1,
		GatherKernel:  KernelInverseSquare,
		GatherScale:   0.001,
		GatherEpsilon: 0.01,

		TileSize:       64,
		InitialSamples: 1,
		MaxPasses:      5,
		NumWorkers:     0,
	}
}

// Validate reports every invalid setting
func (c Config) Validate() error {
	var err error
	if c.Width <= 0 || c.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("image size %dx%d must be positive", c.Width, c.Height))
	}
	if c.SamplesPerPixel < 1 {
		err = multierr.Append(err, fmt.Errorf("samples per pixel %d must be at least 1", c.SamplesPerPixel))
	}
	if c.MaxDepth < 0 {
		err = multierr.Append(err, fmt.Errorf("max depth %d must be non-negative", c.MaxDepth))
	}
	if c.Epsilon < 0 {
		err = multierr.Append(err, fmt.Errorf("epsilon %v must be non-negative", c.Epsilon))
	}
	if c.Gamma <= 0 {
		err = multierr.Append(err, fmt.Errorf("gamma %v must be positive", c.Gamma))
	}
	if c.Indirect == IndirectPhotons {
		if c.GatherRadius <= 0 {
			err = multierr.Append(err, fmt.Errorf("gather radius %v must be positive", c.GatherRadius))
		}
		if c.GatherEpsilon < 0 {
			err = multierr.Append(err, fmt.Errorf("gather epsilon %v must be non-negative", c.GatherEpsilon))
		}
		if c.GatherMaxDepth > 0 && c.GatherMinDepth > c.GatherMaxDepth {
			err = multierr.Append(err, fmt.Errorf("gather depth window [%d, %d] is empty", c.GatherMinDepth, c.GatherMaxDepth))
		}
	}
	if c.TileSize < 1 {
		err = multierr.Append(err, fmt.Errorf("tile size %d must be positive", c.TileSize))
	}
	if c.InitialSamples < 1 || c.InitialSamples > c.SamplesPerPixel {
		err = multierr.Append(err, fmt.Errorf("initial samples %d must be in [1, %d]", c.InitialSamples, c.SamplesPerPixel))
	}
	if c.MaxPasses < 1 {
		err = multierr.Append(err, fmt.Errorf("max passes %d must be at least 1", c.MaxPasses))
	}
	return err
}
