package factor

import (
	"context"
	"errors"
	"testing"
	"time"

	"benchcoach/internal/domain"
)

type fakeAnalyzer struct {
	name   string
	lo, hi float64
	scores []domain.FactorScore
	err    error
	panics bool
}

func (f *fakeAnalyzer) Name() string               { return f.name }
func (f *fakeAnalyzer) Bounds() (float64, float64) { return f.lo, f.hi }

func (f *fakeAnalyzer) Analyze(_ context.Context, _ *domain.Slate) ([]domain.FactorScore, error) {
	if f.panics {
		panic("boom")
	}
	return f.scores, f.err
}

func twoPlayerSlate() *domain.Slate {
	return &domain.Slate{
		Date: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
		Roster: []domain.Player{
			{ID: "p1", Name: "Lead Off", Team: "BOS"},
			{ID: "p2", Name: "Clean Up", Team: "SEA"},
		},
	}
}

func TestSafeSubstitutesNeutralOnError(t *testing.T) {
	a := Safe(&fakeAnalyzer{name: Wind, lo: -2, hi: 2, err: errors.New("feed gone")})
	scores, err := a.Analyze(context.Background(), twoPlayerSlate())
	if err != nil {
		t.Fatalf("safe analyzer must not return errors, got %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected one score per roster player, got %d", len(scores))
	}
	for _, fs := range scores {
		if fs.Value != 0 || fs.Confidence != domain.ConfidenceNone {
			t.Fatalf("expected neutral score, got %+v", fs)
		}
	}
}

func TestSafeRecoversPanic(t *testing.T) {
	a := Safe(&fakeAnalyzer{name: Wind, lo: -2, hi: 2, panics: true})
	scores, err := a.Analyze(context.Background(), twoPlayerSlate())
	if err != nil {
		t.Fatalf("safe analyzer must swallow panics, got %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 neutral scores after panic, got %d", len(scores))
	}
}

func TestSafeClipsOutOfRangeValues(t *testing.T) {
	a := Safe(&fakeAnalyzer{name: Platoon, lo: -1.5, hi: 1.5, scores: []domain.FactorScore{
		{PlayerID: "p1", Value: 9.0},
		{PlayerID: "p2", Value: -9.0},
	}})
	scores, _ := a.Analyze(context.Background(), twoPlayerSlate())
	for _, fs := range scores {
		if fs.Value > 1.5 || fs.Value < -1.5 {
			t.Fatalf("value not clipped to bounds: %+v", fs)
		}
	}
}

func TestSafeFillsOmittedPlayers(t *testing.T) {
	slate := twoPlayerSlate()
	a := Safe(&fakeAnalyzer{name: Wind, lo: -2, hi: 2, scores: []domain.FactorScore{
		{PlayerID: "p1", Value: 1.0, Confidence: domain.ConfidenceHigh},
	}})
	scores, _ := a.Analyze(context.Background(), slate)
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	byID := make(map[string]domain.FactorScore)
	for _, fs := range scores {
		byID[fs.PlayerID] = fs
	}
	if byID["p1"].Value != 1.0 {
		t.Fatalf("existing score overwritten: %+v", byID["p1"])
	}
	if byID["p2"].Value != 0 || byID["p2"].Confidence != domain.ConfidenceNone {
		t.Fatalf("omitted player not filled with neutral: %+v", byID["p2"])
	}
	// Factor name and normalized game date are forced onto every row.
	want := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	for _, fs := range scores {
		if fs.Factor != Wind {
			t.Fatalf("factor name not forced: %+v", fs)
		}
		if !fs.GameDate.Equal(want) {
			t.Fatalf("game date not normalized: %+v", fs)
		}
	}
}

func TestRegistryRejectsUnknownAndDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&fakeAnalyzer{name: "made_up_factor"}); err == nil {
		t.Fatal("expected rejection of unknown factor name")
	}
	if err := r.Register(&fakeAnalyzer{name: Wind, lo: -2, hi: 2}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := r.Register(&fakeAnalyzer{name: Wind, lo: -2, hi: 2}); err == nil {
		t.Fatal("expected rejection of duplicate registration")
	}
}

func TestDefaultRegistryCoversCatalog(t *testing.T) {
	r := Default()
	analyzers := r.Analyzers()
	if len(analyzers) != len(Catalog) {
		t.Fatalf("expected %d analyzers, got %d", len(Catalog), len(analyzers))
	}
	for i, a := range analyzers {
		if a.Name() != Catalog[i] {
			t.Fatalf("analyzer %d out of catalog order: %s vs %s", i, a.Name(), Catalog[i])
		}
	}
}
