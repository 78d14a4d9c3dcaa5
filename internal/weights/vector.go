package weights

import (
	"fmt"
	"sort"

	"benchcoach/internal/factor"
)

// Vector is an immutable mapping from factor name to a non-negative weight.
// Mutating operations return a new Vector; a Vector handed to a caller can
// never change underneath it.
type Vector struct {
	w map[string]float64
}

// New validates and copies m into a Vector. Unknown factor names and
// negative weights are configuration errors.
func New(m map[string]float64) (Vector, error) {
	out := make(map[string]float64, len(m))
	for name, weight := range m {
		if !factor.Known(name) {
			return Vector{}, fmt.Errorf("unknown factor: %s", name)
		}
		if weight < 0 {
			return Vector{}, fmt.Errorf("negative weight %.4f for factor %s", weight, name)
		}
		out[name] = weight
	}
	return Vector{w: out}, nil
}

// Weight returns the weight for a factor, or 0 when the factor has no entry.
func (v Vector) Weight(name string) float64 { return v.w[name] }

// Get returns the weight and whether the factor has an explicit entry.
func (v Vector) Get(name string) (float64, bool) {
	weight, ok := v.w[name]
	return weight, ok
}

// Set returns a copy of v with the factor's weight replaced.
func (v Vector) Set(name string, weight float64) (Vector, error) {
	if !factor.Known(name) {
		return Vector{}, fmt.Errorf("unknown factor: %s", name)
	}
	if weight < 0 {
		return Vector{}, fmt.Errorf("negative weight %.4f for factor %s", weight, name)
	}
	out := make(map[string]float64, len(v.w)+1)
	for k, val := range v.w {
		out[k] = val
	}
	out[name] = weight
	return Vector{w: out}, nil
}

// Merge overlays override onto v key-wise; the override wins where both have
// an entry. This is how sparse per-player vectors combine with the global one.
func (v Vector) Merge(override Vector) Vector {
	out := make(map[string]float64, len(v.w)+len(override.w))
	for k, val := range v.w {
		out[k] = val
	}
	for k, val := range override.w {
		out[k] = val
	}
	return Vector{w: out}
}

// Normalize rescales so the weights sum to 1.0. A zero-sum vector cannot be
// normalized and falls back to the documented defaults.
func (v Vector) Normalize() Vector {
	total := v.Sum()
	if total == 0 {
		return Defaults()
	}
	out := make(map[string]float64, len(v.w))
	for k, val := range v.w {
		out[k] = val / total
	}
	return Vector{w: out}
}

func (v Vector) Sum() float64 {
	total := 0.0
	for _, val := range v.w {
		total += val
	}
	return total
}

func (v Vector) Len() int { return len(v.w) }

// Map returns a copy of the underlying mapping, for serialization.
func (v Vector) Map() map[string]float64 {
	out := make(map[string]float64, len(v.w))
	for k, val := range v.w {
		out[k] = val
	}
	return out
}

// Factors lists the vector's factor names in catalog order, then any
// remaining names sorted, for stable display.
func (v Vector) Factors() []string {
	seen := make(map[string]bool, len(v.w))
	out := make([]string, 0, len(v.w))
	for _, name := range factor.Catalog {
		if _, ok := v.w[name]; ok {
			out = append(out, name)
			seen[name] = true
		}
	}
	rest := make([]string, 0)
	for name := range v.w {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Defaults is the documented global weight vector. The values are
// approximate fractions of 1.0 ranked by each factor's historical predictive
// impact; together they sum to 1.000.
func Defaults() Vector {
	return Vector{w: map[string]float64{
		factor.VegasOdds:          0.169,
		factor.StatcastMetrics:    0.115,
		factor.Matchup:            0.087,
		factor.BullpenFatigue:     0.087,
		factor.Platoon:            0.081,
		factor.HomeAway:           0.058,
		factor.Injury:             0.057,
		factor.ParkFactors:        0.056,
		factor.RecentForm:         0.046,
		factor.Wind:               0.045,
		factor.RestDay:            0.034,
		factor.Temperature:        0.032,
		factor.LineupPosition:     0.026,
		factor.Umpire:             0.025,
		factor.PitchMix:           0.021,
		factor.TimeOfDay:          0.017,
		factor.HumidityElevation:  0.014,
		factor.DefensivePositions: 0.013,
		factor.MonthlySplits:      0.009,
		factor.TeamMomentum:       0.008,
	}}
}
