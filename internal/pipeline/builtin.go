package pipeline

import (
	"fmt"
	"math/rand"

	"github.com/kingrea/sweeprig/internal/sweep"
)

// NormalMean is a reference pipeline: draw a normal sample of size "n"
// with mean "mean" and standard deviation "sd", then estimate the mean.
type NormalMean struct{}

// Generate draws the sample from the trial-seeded stream.
func (NormalMean) Generate(rng *rand.Rand, setting sweep.Setting, shared any) (any, error) {
	n, err := intAttr(setting, "n")
	if err != nil {
		return nil, err
	}
	mean := floatAttrDefault(setting, "mean", 0)
	sd := floatAttrDefault(setting, "sd", 1)
	if sd <= 0 {
		return nil, fmt.Errorf("pipeline normal-mean: sd must be positive, got %g", sd)
	}
	sample := make([]float64, n)
	for i := range sample {
		sample[i] = rng.NormFloat64()*sd + mean
	}
	return sample, nil
}

// Execute returns the sample mean and its error against the true mean.
func (NormalMean) Execute(rng *rand.Rand, data any, setting sweep.Setting, trial int, shared any) (any, error) {
	sample, ok := data.([]float64)
	if !ok {
		return nil, fmt.Errorf("pipeline normal-mean: unexpected data type %T", data)
	}
	if len(sample) == 0 {
		return nil, fmt.Errorf("pipeline normal-mean: empty sample")
	}
	var sum float64
	for _, x := range sample {
		sum += x
	}
	estimate := sum / float64(len(sample))
	return map[string]any{
		"estimate": estimate,
		"bias":     estimate - floatAttrDefault(setting, "mean", 0),
	}, nil
}

// CoinBias is a reference pipeline: flip "n" coins with heads
// probability "p", then estimate p.
type CoinBias struct{}

// Generate flips the coins from the trial-seeded stream.
func (CoinBias) Generate(rng *rand.Rand, setting sweep.Setting, shared any) (any, error) {
	n, err := intAttr(setting, "n")
	if err != nil {
		return nil, err
	}
	p := floatAttrDefault(setting, "p", 0.5)
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("pipeline coin-bias: p must be in [0,1], got %g", p)
	}
	heads := 0
	for i := 0; i < n; i++ {
		if rng.Float64() < p {
			heads++
		}
	}
	return heads, nil
}

// Execute returns the estimated heads probability.
func (CoinBias) Execute(rng *rand.Rand, data any, setting sweep.Setting, trial int, shared any) (any, error) {
	heads, ok := data.(int)
	if !ok {
		return nil, fmt.Errorf("pipeline coin-bias: unexpected data type %T", data)
	}
	n, err := intAttr(setting, "n")
	if err != nil {
		return nil, err
	}
	return float64(heads) / float64(n), nil
}

// intAttr reads a positive integer attribute, accepting the numeric
// types YAML decoding produces.
func intAttr(setting sweep.Setting, key string) (int, error) {
	raw, ok := setting[key]
	if !ok {
		return 0, fmt.Errorf("pipeline: setting is missing attribute %q", key)
	}
	var n int
	switch v := raw.(type) {
	case int:
		n = v
	case int64:
		n = int(v)
	case float64:
		n = int(v)
	default:
		return 0, fmt.Errorf("pipeline: attribute %q has non-numeric type %T", key, raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("pipeline: attribute %q must be positive, got %d", key, n)
	}
	return n, nil
}

// floatAttrDefault reads a float attribute, falling back when absent.
func floatAttrDefault(setting sweep.Setting, key string, def float64) float64 {
	raw, ok := setting[key]
	if !ok {
		return def
	}
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}
