package factor

import (
	"context"
	"math"

	"benchcoach/internal/domain"
)

// Pitcher-mound-to-home-plate bearing per stadium, in degrees. Used to
// decompose the forecast wind into a tailwind/headwind component relative to
// ball flight.
var stadiumOrientations = map[string]float64{
	"Chase Field":                    20,
	"Truist Park":                    15,
	"Oriole Park at Camden Yards":    54,
	"Fenway Park":                    287,
	"Wrigley Field":                  190,
	"Guaranteed Rate Field":          18,
	"Great American Ball Park":       235,
	"Progressive Field":              95,
	"Coors Field":                    5,
	"Comerica Park":                  55,
	"Minute Maid Park":               350,
	"Kauffman Stadium":               80,
	"Angel Stadium":                  210,
	"Dodger Stadium":                 330,
	"LoanDepot Park":                 235,
	"American Family Field":          205,
	"Target Field":                   235,
	"Citi Field":                     45,
	"Yankee Stadium":                 282,
	"Oakland Coliseum":               325,
	"Citizens Bank Park":             5,
	"PNC Park":                       325,
	"Petco Park":                     320,
	"Oracle Park":                    310,
	"T-Mobile Park":                  47,
	"Busch Stadium":                  240,
	"Tropicana Field":                5,
	"Globe Life Field":               355,
	"Rogers Centre":                  198,
	"Nationals Park":                 325,
	"Sutter Health Park":             45,
}

// WindAnalyzer scores the tailwind/headwind component at the player's venue.
// A strong outward wind carries fly balls and favors hitters.
type WindAnalyzer struct{}

func (a *WindAnalyzer) Name() string               { return Wind }
func (a *WindAnalyzer) Bounds() (float64, float64) { return -2.0, 2.0 }

func (a *WindAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		game, ok := slate.GameFor(p)
		if !ok {
			out = append(out, Neutral(Wind, p, slate))
			continue
		}
		wx, ok := slate.Weather[game.Venue]
		orientation, known := stadiumOrientations[game.Venue]
		if !ok || !known {
			out = append(out, Neutral(Wind, p, slate))
			continue
		}

		relative := math.Mod(wx.WindDirectionDeg-orientation, 360)
		if relative > 180 {
			relative -= 360
		}
		component := math.Cos(relative*math.Pi/180) * wx.WindSpeedKPH

		var value float64
		switch {
		case component > 10:
			value = 2.0
		case component > 5:
			value = 1.0
		case component > -5:
			value = 0.0
		case component > -10:
			value = -1.0
		default:
			value = -2.0
		}

		fs := Neutral(Wind, p, slate)
		fs.Value = value
		fs.Confidence = domain.ConfidenceHigh
		out = append(out, fs)
	}
	return out, nil
}

// TemperatureAnalyzer scores air temperature: warm air is thinner and the
// ball carries farther.
type TemperatureAnalyzer struct{}

func (a *TemperatureAnalyzer) Name() string               { return Temperature }
func (a *TemperatureAnalyzer) Bounds() (float64, float64) { return -2.0, 2.0 }

func (a *TemperatureAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		game, ok := slate.GameFor(p)
		if !ok {
			out = append(out, Neutral(Temperature, p, slate))
			continue
		}
		wx, ok := slate.Weather[game.Venue]
		if !ok {
			out = append(out, Neutral(Temperature, p, slate))
			continue
		}
		// 21C is roughly the league-average game-time temperature.
		fs := Neutral(Temperature, p, slate)
		fs.Value = (wx.TemperatureC - 21.0) / 10.0
		fs.Confidence = domain.ConfidenceMedium
		out = append(out, fs)
	}
	return out, nil
}

// HumidityElevationAnalyzer scores air density effects: altitude helps carry,
// heavy humid air suppresses it slightly.
type HumidityElevationAnalyzer struct{}

func (a *HumidityElevationAnalyzer) Name() string               { return HumidityElevation }
func (a *HumidityElevationAnalyzer) Bounds() (float64, float64) { return -2.0, 2.0 }

func (a *HumidityElevationAnalyzer) Analyze(_ context.Context, slate *domain.Slate) ([]domain.FactorScore, error) {
	out := make([]domain.FactorScore, 0, len(slate.Roster))
	for _, p := range slate.Roster {
		game, ok := slate.GameFor(p)
		if !ok {
			out = append(out, Neutral(HumidityElevation, p, slate))
			continue
		}
		wx, ok := slate.Weather[game.Venue]
		if !ok {
			out = append(out, Neutral(HumidityElevation, p, slate))
			continue
		}
		fs := Neutral(HumidityElevation, p, slate)
		fs.Value = wx.ElevationM/1000.0*0.8 - (wx.HumidityPct-50.0)/100.0*0.4
		fs.Confidence = domain.ConfidenceLow
		out = append(out, fs)
	}
	return out, nil
}
