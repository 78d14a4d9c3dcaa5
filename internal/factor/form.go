package factor

import (
	"context"

	"benchcoach/internal/domain"
)

// RecentFormAnalyzer scores the last seven days against the season baseline.
type RecentFormAnalyzer struct{}

func (a *RecentFormAnalyzer) Name() string               { return RecentForm }
func (a *RecentFormAnalyzer) Bounds() (float64, float64) { return -2.0, 2.0 }

func (a *RecentFormAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		line, ok := slate.Batting[p.ID]
		if !ok || line.SeasonAvg == 0 || line.Last7Avg == 0 {
			out = append(out, Neutral(RecentForm, p, slate))
			continue
		}
		fs := Neutral(RecentForm, p, slate)
		fs.Value = (line.Last7Avg - line.SeasonAvg) * 10.0
		fs.Confidence = domain.ConfidenceMedium
		out = append(out, fs)
	}
	return out, nil
}

// MonthlySplitsAnalyzer scores the calendar-month split against the season
// baseline; some hitters run hot or cold with the schedule.
type MonthlySplitsAnalyzer struct{}

func (a *MonthlySplitsAnalyzer) Name() string               { return MonthlySplits }
func (a *MonthlySplitsAnalyzer) Bounds() (float64, float64) { return -2.0, 2.0 }

func (a *MonthlySplitsAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		line, ok := slate.Batting[p.ID]
		if !ok || line.SeasonAvg == 0 || line.MonthAvg == 0 {
			out = append(out, Neutral(MonthlySplits, p, slate))
			continue
		}
		fs := Neutral(MonthlySplits, p, slate)
		fs.Value = (line.MonthAvg - line.SeasonAvg) * 8.0
		fs.Confidence = domain.ConfidenceLow
		out = append(out, fs)
	}
	return out, nil
}

// TeamMomentumAnalyzer scores the team's last-ten record. Winning clubs put
// more runners on base for everyone in the lineup.
type TeamMomentumAnalyzer struct{}

func (a *TeamMomentumAnalyzer) Name() string               { return TeamMomentum }
func (a *TeamMomentumAnalyzer) Bounds() (float64, float64) { return -2.0, 2.0 }

func (a *TeamMomentumAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		ts, ok := slate.Teams[p.Team]
		if !ok {
			out = append(out, Neutral(TeamMomentum, p, slate))
			continue
		}
		fs := Neutral(TeamMomentum, p, slate)
		fs.Value = (float64(ts.Last10Wins) - 5.0) * 0.2
		fs.Confidence = domain.ConfidenceLow
		out = append(out, fs)
	}
	return out, nil
}

// StatcastMetricsAnalyzer scores underlying contact quality: hard-hit rate,
// barrel rate and expected wOBA against league baselines.
type StatcastMetricsAnalyzer struct{}

func (a *StatcastMetricsAnalyzer) Name() string               { return StatcastMetrics }
func (a *StatcastMetricsAnalyzer) Bounds() (float64, float64) { return -2.0, 2.0 }

func (a *StatcastMetricsAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		line, ok := slate.Batting[p.ID]
		if !ok || line.HardHitPct == 0 {
			out = append(out, Neutral(StatcastMetrics, p, slate))
			continue
		}
		// League baselines: 35% hard hit, 8% barrels, .320 xwOBA.
		value := (line.HardHitPct-0.35)*4.0 +
			(line.BarrelPct-0.08)*8.0 +
			(line.XWOBA-0.320)*6.0
		fs := Neutral(StatcastMetrics, p, slate)
		fs.Value = value
		fs.Confidence = confidenceFromGames(line.GamesPlayed)
		out = append(out, fs)
	}
	return out, nil
}
