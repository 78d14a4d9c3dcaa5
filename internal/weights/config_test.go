package weights

import (
	"os"
	"path/filepath"
	"testing"

	"benchcoach/internal/factor"
)

func TestLoadMissingFilesUsesDefaults(t *testing.T) {
	c := Load(t.TempDir())
	if got := c.Global().Weight(factor.VegasOdds); got != Defaults().Weight(factor.VegasOdds) {
		t.Fatalf("expected defaults, got vegas_odds %v", got)
	}
	if players := c.PlayersWithOverrides(); len(players) != 0 {
		t.Fatalf("expected no overrides, got %v", players)
	}
}

func TestLoadCorruptFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, globalWeightsFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c := Load(dir)
	if got := c.Global().Weight(factor.Wind); got != Defaults().Weight(factor.Wind) {
		t.Fatalf("corrupt file must fall back to defaults, got %v", got)
	}
}

func TestLoadFiltersInvalidEntries(t *testing.T) {
	dir := t.TempDir()
	blob := []byte(`{"wind": 0.5, "not_a_factor": 0.9, "park_factors": -1}`)
	if err := os.WriteFile(filepath.Join(dir, globalWeightsFile), blob, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c := Load(dir)
	if got := c.Global().Weight(factor.Wind); got != 0.5 {
		t.Fatalf("stored wind weight lost: %v", got)
	}
	if got := c.Global().Weight(factor.ParkFactors); got != Defaults().Weight(factor.ParkFactors) {
		t.Fatalf("negative weight must be ignored, got %v", got)
	}
	if got := c.Global().Weight("not_a_factor"); got != 0 {
		t.Fatalf("unknown factor must be dropped, got %v", got)
	}
}

func TestPlayerOverrideMergePrecedence(t *testing.T) {
	c := Load(t.TempDir())
	if err := c.SetGlobalWeight(factor.Wind, 0.10); err != nil {
		t.Fatalf("set global: %v", err)
	}
	if err := c.SetPlayerWeight("p1", factor.Wind, 0.25); err != nil {
		t.Fatalf("set player: %v", err)
	}

	if got := c.Weights("p1").Weight(factor.Wind); got != 0.25 {
		t.Fatalf("override should win for p1: got %v", got)
	}
	if got := c.Weights("p2").Weight(factor.Wind); got != 0.10 {
		t.Fatalf("other players keep global: got %v", got)
	}
	if got := c.Weights("").Weight(factor.Wind); got != 0.10 {
		t.Fatalf("empty id means global: got %v", got)
	}

	c.ResetPlayer("p1")
	if got := c.Weights("p1").Weight(factor.Wind); got != 0.10 {
		t.Fatalf("reset must revert to global: got %v", got)
	}
}

func TestSetRejectsUnknownFactorAtBoundary(t *testing.T) {
	c := Load(t.TempDir())
	if err := c.SetGlobalWeight("made_up", 0.5); err == nil {
		t.Fatal("expected rejection of unknown factor")
	}
	if err := c.SetPlayerWeight("p1", "made_up", 0.5); err == nil {
		t.Fatal("expected rejection of unknown factor override")
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	c := Load(dir)
	if err := c.SetGlobalWeight(factor.Wind, 0.2); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.SetPlayerWeight("p1", factor.Platoon, 0.3); err != nil {
		t.Fatalf("set player: %v", err)
	}
	if err := c.SaveAll(); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded := Load(dir)
	if got := reloaded.Global().Weight(factor.Wind); got != 0.2 {
		t.Fatalf("global weight lost on reload: %v", got)
	}
	if got := reloaded.Weights("p1").Weight(factor.Platoon); got != 0.3 {
		t.Fatalf("player override lost on reload: %v", got)
	}
}
