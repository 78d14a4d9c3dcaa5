package bot

import (
	"strings"
	"testing"
	"time"

	"benchcoach/internal/domain"
)

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	StartTelegramBot(nil)
}

func TestDateArg(t *testing.T) {
	got, err := dateArg([]string{"2025-06-15"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v want %v", got, want)
	}

	if _, err := dateArg([]string{"junk"}); err == nil {
		t.Error("expected error for malformed date")
	}

	got, err = dateArg(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Hour() != 0 || got.Location() != time.UTC {
		t.Errorf("default date should be midnight UTC, got %v", got)
	}
}

func TestFormatPlayerListsLargestContributionsFirst(t *testing.T) {
	r := domain.Recommendation{
		PlayerName:     "Mookie Betts",
		FinalScore:     0.19,
		Recommendation: "Strong Start",
		Factors: map[string]domain.FactorLine{
			"wind":         {Score: 2.0, Weight: 0.08, Contribution: 0.16},
			"park_factors": {Score: 0.5, Weight: 0.06, Contribution: 0.03},
			"platoon":      {Score: -1.0, Weight: 0.05, Contribution: -0.05},
		},
		Ensemble: &domain.EnsemblePrediction{PredEnsemble: 8.4, Confidence: 0.72},
	}

	msg := formatPlayer(r)
	if !strings.Contains(msg, "Strong Start") {
		t.Errorf("missing tier: %s", msg)
	}
	if !strings.Contains(msg, "Ensemble: 8.40 pts") {
		t.Errorf("missing ensemble line: %s", msg)
	}
	windAt := strings.Index(msg, "wind")
	parkAt := strings.Index(msg, "park_factors")
	if windAt == -1 || parkAt == -1 || windAt > parkAt {
		t.Errorf("factors not ordered by magnitude: %s", msg)
	}
}

func TestTopFactorsTruncates(t *testing.T) {
	factors := map[string]domain.FactorLine{
		"a": {Contribution: 0.1},
		"b": {Contribution: -0.4},
		"c": {Contribution: 0.2},
	}
	lines := topFactors(factors, 2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "b:") {
		t.Errorf("largest magnitude should lead: %v", lines)
	}
}
