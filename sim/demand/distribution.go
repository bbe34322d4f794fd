// Package demand provides the per-tick demand samplers seller units draw
// from. Samplers are pure functions of the supplied RNG, so a seeded run
// reproduces the same demand trajectory.
package demand

import (
	"fmt"
	"math"
	"math/rand"
)

// Sampler generates one demand draw per tick.
type Sampler interface {
	// Sample returns a non-negative demand quantity.
	Sample(rng *rand.Rand) int
}

// GaussianSampler produces clamped Gaussian demand.
type GaussianSampler struct {
	Mean, StdDev float64
	Min, Max     int
}

func (s *GaussianSampler) Sample(rng *rand.Rand) int {
	if s.Min == s.Max {
		return s.Min
	}
	val := rng.NormFloat64()*s.StdDev + s.Mean
	clamped := math.Min(float64(s.Max), math.Max(float64(s.Min), val))
	result := int(math.Round(clamped))
	if result < 0 {
		return 0
	}
	return result
}

// UniformSampler produces integer demand uniform on [Min, Max].
type UniformSampler struct {
	Min, Max int
}

func (s *UniformSampler) Sample(rng *rand.Rand) int {
	if s.Max <= s.Min {
		return s.Min
	}
	return s.Min + rng.Intn(s.Max-s.Min+1)
}

// PoissonSampler produces Poisson-distributed demand via Knuth's method.
// Suitable for the small means typical of per-tick retail demand.
type PoissonSampler struct {
	Mean float64
}

func (s *PoissonSampler) Sample(rng *rand.Rand) int {
	if s.Mean <= 0 {
		return 0
	}
	limit := math.Exp(-s.Mean)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

// ConstantSampler produces the same demand every tick. Used for
// deterministic topologies and tests.
type ConstantSampler struct {
	Value int
}

func (s *ConstantSampler) Sample(rng *rand.Rand) int {
	if s.Value < 0 {
		return 0
	}
	return s.Value
}

// New builds a sampler by distribution name. Recognized names: "gaussian",
// "uniform", "poisson", "constant".
func New(kind string, mean, stdDev float64, minVal, maxVal, value int) (Sampler, error) {
	switch kind {
	case "gaussian":
		return &GaussianSampler{Mean: mean, StdDev: stdDev, Min: minVal, Max: maxVal}, nil
	case "uniform":
		return &UniformSampler{Min: minVal, Max: maxVal}, nil
	case "poisson":
		return &PoissonSampler{Mean: mean}, nil
	case "constant":
		return &ConstantSampler{Value: value}, nil
	default:
		return nil, fmt.Errorf("unknown demand distribution %q", kind)
	}
}
