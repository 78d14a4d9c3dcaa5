package factor

import (
	"context"
	"fmt"
	"log"

	"benchcoach/internal/domain"
)

// Analyzer is the capability every situational-factor module implements.
// Analyze must be total over the slate's roster: a player it cannot resolve
// gets a neutral 0.0 score with confidence none, never an omission. The Safe
// wrapper backstops that contract, so downstream aggregation can rely on it
// without per-analyzer defensive code.
type Analyzer interface {
	// Name is the factor's catalog name.
	Name() string
	// Bounds declares the analyzer's output range. Values outside it are a
	// defect and get clipped by the Safe wrapper.
	Bounds() (lo, hi float64)
	Analyze(ctx context.Context, slate *domain.Slate) ([]domain.FactorScore, error)
}

// Neutral builds the 0.0/none score an analyzer returns for a player it
// cannot resolve.
func Neutral(name string, p domain.Player, slate *domain.Slate) domain.FactorScore {
	return domain.FactorScore{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		GameDate:   domain.DateOnly(slate.Date),
		Factor:     name,
		Value:      0,
		Confidence: domain.ConfidenceNone,
	}
}

type safeAnalyzer struct {
	inner Analyzer
}

// Safe wraps an analyzer so that errors, panics, out-of-range values and
// omitted players are all normalized at one call site: the wrapped analyzer
// never fails and always yields exactly one score per roster player.
func Safe(a Analyzer) Analyzer {
	if _, ok := a.(safeAnalyzer); ok {
		return a
	}
	return safeAnalyzer{inner: a}
}

func (s safeAnalyzer) Name() string                { return s.inner.Name() }
func (s safeAnalyzer) Bounds() (float64, float64)  { return s.inner.Bounds() }

func (s safeAnalyzer) Analyze(ctx context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	scores, err := s.run(ctx, slate)
	if err != nil {
		log.Printf("factor %s failed, substituting neutral scores: %v", s.inner.Name(), err)
		scores = nil
	}

	lo, hi := s.inner.Bounds()
	byPlayer := make(map[string]domain.FactorScore, len(scores))
	for _, fs := range scores {
		if fs.Value < lo {
			fs.Value = lo
		}
		if fs.Value > hi {
			fs.Value = hi
		}
		fs.Factor = s.inner.Name()
		fs.GameDate = domain.DateOnly(slate.Date)
		byPlayer[fs.PlayerID] = fs
	}

	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		if fs, ok := byPlayer[p.ID]; ok {
			out = append(out, fs)
			continue
		}
		out = append(out, Neutral(s.inner.Name(), p, slate))
	}
	return out, nil
}

func (s safeAnalyzer) run(ctx context.Context, slate *domain.Slate) (scores []domain.FactorScore, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analyzer panic: %v", r)
		}
	}()
	return s.inner.Analyze(ctx, slate)
}

// Registry holds the typed mapping from factor name to analyzer.
type Registry struct {
	analyzers map[string]Analyzer
}

func NewRegistry() *Registry {
	return &Registry{analyzers: make(map[string]Analyzer, len(Catalog))}
}

// Register adds an analyzer under its declared factor name. Names outside
// the catalog and duplicate registrations are configuration errors.
func (r *Registry) Register(a Analyzer) error {
	name := a.Name()
	if !Known(name) {
		return fmt.Errorf("unknown factor: %s", name)
	}
	if _, dup := r.analyzers[name]; dup {
		return fmt.Errorf("factor already registered: %s", name)
	}
	r.analyzers[name] = Safe(a)
	return nil
}

// Analyzers returns the registered analyzers in catalog order.
func (r *Registry) Analyzers() []Analyzer {
	out := make([]Analyzer, 0, len(r.analyzers))
	for _, name := range Catalog {
		if a, ok := r.analyzers[name]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Get returns the analyzer registered for a factor name.
func (r *Registry) Get(name string) (Analyzer, bool) {
	a, ok := r.analyzers[name]
	return a, ok
}

// Default builds a registry with every shipped analyzer registered.
func Default() *Registry {
	r := NewRegistry()
	all := []Analyzer{
		&WindAnalyzer{},
		&MatchupAnalyzer{},
		&HomeAwayAnalyzer{},
		&PlatoonAnalyzer{},
		&ParkFactorsAnalyzer{},
		&RestDayAnalyzer{},
		&InjuryAnalyzer{},
		&UmpireAnalyzer{},
		&TemperatureAnalyzer{},
		&PitchMixAnalyzer{},
		&LineupPositionAnalyzer{},
		&TimeOfDayAnalyzer{},
		&DefensivePositionsAnalyzer{},
		&RecentFormAnalyzer{},
		&BullpenFatigueAnalyzer{},
		&HumidityElevationAnalyzer{},
		&MonthlySplitsAnalyzer{},
		&TeamMomentumAnalyzer{},
		&StatcastMetricsAnalyzer{},
		&VegasOddsAnalyzer{},
	}
	for _, a := range all {
		if err := r.Register(a); err != nil {
			// Catalog and shipped analyzers are maintained together; a
			// mismatch is a programming error.
			panic(err)
		}
	}
	return r
}
