package domain

import "time"

// Confidence tags how much data backed a factor score.
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Tier is the ordered sit/start recommendation ladder. Higher is a
// stronger start.
type Tier int

const (
	TierBench Tier = iota
	TierUnfavorable
	TierNeutral
	TierFavorable
	TierStrongStart
)

func (t Tier) String() string {
	switch t {
	case TierStrongStart:
		return "Strong Start"
	case TierFavorable:
		return "Favorable"
	case TierNeutral:
		return "Neutral"
	case TierUnfavorable:
		return "Unfavorable"
	default:
		return "Bench"
	}
}

// FactorScore is one analyzer's judgment of one player for one game date.
// Produced fresh each scoring run and never mutated.
type FactorScore struct {
	PlayerID   string     `json:"player_id"`
	PlayerName string     `json:"player_name"`
	GameDate   time.Time  `json:"game_date"`
	Factor     string     `json:"factor"`
	Value      float64    `json:"value"`
	Confidence Confidence `json:"confidence"`
}

// PlayerScore is the aggregation result for one player/game.
// Contributions holds value*weight per factor for explainability.
type PlayerScore struct {
	PlayerID       string             `json:"player_id"`
	PlayerName     string             `json:"player_name"`
	GameDate       time.Time          `json:"game_date"`
	FinalScore     float64            `json:"final_score"`
	Recommendation Tier               `json:"-"`
	Contributions  map[string]float64 `json:"contributions"`
}

// EnsemblePrediction is the blended output for one player.
type EnsemblePrediction struct {
	PlayerID        string    `json:"player_id"`
	PlayerName      string    `json:"player_name"`
	GameDate        time.Time `json:"game_date"`
	PredWeightedSum float64   `json:"pred_weighted_sum"`
	PredModelA      float64   `json:"pred_model_a"`
	PredModelB      float64   `json:"pred_model_b"`
	PredEnsemble    float64   `json:"pred_ensemble"`
	Confidence      float64   `json:"confidence"`
}

// FactorLine pairs a factor's score with the weight that was applied to it.
type FactorLine struct {
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Recommendation is the record exposed to report/dashboard consumers:
// final score, tier label, and every factor score/weight pair used.
type Recommendation struct {
	PlayerID       string                `json:"player_id"`
	PlayerName     string                `json:"player_name"`
	GameDate       time.Time             `json:"game_date"`
	FinalScore     float64               `json:"final_score"`
	Recommendation string                `json:"recommendation"`
	Factors        map[string]FactorLine `json:"factors"`
	Ensemble       *EnsemblePrediction   `json:"ensemble,omitempty"`
}

// HistoryRow is one labeled (or not-yet-labeled) player-game: the full
// factor-score vector plus the realized fantasy points once resolved.
type HistoryRow struct {
	PlayerID      string             `json:"player_id"`
	PlayerName    string             `json:"player_name"`
	GameDate      time.Time          `json:"game_date"`
	Scores        map[string]float64 `json:"scores"`
	FantasyPoints *float64           `json:"fantasy_points,omitempty"`
}

// GameLog is a player's realized box-score line, used to resolve outcomes.
type GameLog struct {
	PlayerID    string    `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	GameDate    time.Time `json:"game_date"`
	Hits        int       `json:"hits"`
	Doubles     int       `json:"doubles"`
	Triples     int       `json:"triples"`
	HomeRuns    int       `json:"home_runs"`
	Runs        int       `json:"runs"`
	RBI         int       `json:"rbi"`
	StolenBases int       `json:"stolen_bases"`
	Walks       int       `json:"walks"`
}

// FantasyPoints applies the league scoring rules to a box-score line.
// Doubles and triples earn extra points on top of the hit itself.
func (g GameLog) FantasyPoints() float64 {
	return float64(g.Hits) +
		float64(g.Doubles) +
		2*float64(g.Triples) +
		3*float64(g.HomeRuns) +
		float64(g.Runs) +
		float64(g.RBI) +
		2*float64(g.StolenBases) +
		float64(g.Walks)
}

// DateOnly truncates t to midnight UTC so game dates compare cleanly.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
