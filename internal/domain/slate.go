package domain

import "time"

type Player struct {
	ID       string `json:"player_id"`
	Name     string `json:"player_name"`
	Team     string `json:"team"`
	Position string `json:"position"`
	Bats     string `json:"bats"` // L, R or S
}

type Pitcher struct {
	Name   string             `json:"name"`
	Throws string             `json:"throws"`
	ERA    float64            `json:"era"`
	// Share of each pitch type thrown, e.g. {"fastball": 0.55, "slider": 0.25}.
	PitchMix map[string]float64 `json:"pitch_mix,omitempty"`
}

type Game struct {
	GameDate  time.Time `json:"game_date"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	Venue     string    `json:"venue"`
	StartHour int       `json:"start_hour"` // local start hour, 0-23
	HomePitcher Pitcher `json:"home_pitcher"`
	AwayPitcher Pitcher `json:"away_pitcher"`
}

type Weather struct {
	WindSpeedKPH     float64 `json:"wind_speed_kph"`
	WindDirectionDeg float64 `json:"wind_direction_deg"`
	TemperatureC     float64 `json:"temperature_c"`
	HumidityPct      float64 `json:"humidity_pct"`
	ElevationM       float64 `json:"elevation_m"`
}

// Odds is the betting market's view of one team's game.
type Odds struct {
	OverUnder float64 `json:"over_under"`
	MoneyLine float64 `json:"money_line"` // American odds for the player's team
	RunLine   float64 `json:"run_line"`
}

// BattingLine carries the season-to-date numbers the analyzers read.
type BattingLine struct {
	SeasonAvg   float64 `json:"season_avg"`
	AvgVsLHP    float64 `json:"avg_vs_lhp"`
	AvgVsRHP    float64 `json:"avg_vs_rhp"`
	Last7Avg    float64 `json:"last7_avg"`
	MonthAvg    float64 `json:"month_avg"`
	HardHitPct  float64 `json:"hard_hit_pct"`
	BarrelPct   float64 `json:"barrel_pct"`
	XWOBA       float64 `json:"xwoba"`
	HomeAvg     float64 `json:"home_avg"`
	AwayAvg     float64 `json:"away_avg"`
	DayAvg      float64 `json:"day_avg"`
	NightAvg    float64 `json:"night_avg"`
	VsFastball  float64 `json:"vs_fastball"`
	VsBreaking  float64 `json:"vs_breaking"`
	HomeRuns    int     `json:"home_runs"`
	LineupSlot  int     `json:"lineup_slot"` // 0 when not in the posted lineup
	GamesPlayed int     `json:"games_played"`
}

// MatchupLine is a batter's career numbers against today's opposing starter.
type MatchupLine struct {
	AtBats     int     `json:"at_bats"`
	BattingAvg float64 `json:"batting_avg"`
	HomeRuns   int     `json:"home_runs"`
}

type TeamStatus struct {
	Last10Wins          int     `json:"last10_wins"`
	BullpenPitchesLast3 float64 `json:"bullpen_pitches_last3"`
}

type UmpireStats struct {
	Name           string  `json:"name"`
	StrikeZoneSize float64 `json:"strike_zone_size"` // 1.0 = league average
}

type InjuryStatus struct {
	Listed     bool   `json:"listed"`
	Designation string `json:"designation"` // DTD, IL10, IL60
	DaysSinceReturn int `json:"days_since_return"`
}

// Slate is the full context for one target date: the roster to score plus
// every data set the factor analyzers may consult. Maps are optional;
// analyzers must degrade to a neutral score when a key is absent.
type Slate struct {
	Date     time.Time               `json:"date"`
	Roster   []Player                `json:"roster"`
	Games    map[string]Game         `json:"games"`   // team -> game
	Weather  map[string]Weather      `json:"weather"` // venue -> conditions
	Odds     map[string]Odds         `json:"odds"`    // team -> market
	Batting  map[string]BattingLine  `json:"batting"` // player id -> line
	Matchups map[string]MatchupLine  `json:"matchups"`
	Teams    map[string]TeamStatus   `json:"teams"`
	Umpires  map[string]UmpireStats  `json:"umpires"` // venue -> umpire
	Injuries map[string]InjuryStatus `json:"injuries"`
	RestDays map[string]int          `json:"rest_days"` // player id -> days since last game
}

// GameFor returns the game a player's team is scheduled in, if any.
func (s *Slate) GameFor(p Player) (Game, bool) {
	if s == nil || s.Games == nil {
		return Game{}, false
	}
	g, ok := s.Games[p.Team]
	return g, ok
}

// Opposing returns the starting pitcher the player will face.
func (g Game) Opposing(team string) Pitcher {
	if team == g.HomeTeam {
		return g.AwayPitcher
	}
	return g.HomePitcher
}

// IsHome reports whether team bats at home in this game.
func (g Game) IsHome(team string) bool { return team == g.HomeTeam }
