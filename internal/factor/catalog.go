package factor

// Factor names. These are the join keys used everywhere downstream: weight
// vectors, score history, feature projection and the recommendation record.
const (
	Wind               = "wind"
	Matchup            = "matchup"
	HomeAway           = "home_away"
	Platoon            = "platoon"
	ParkFactors        = "park_factors"
	RestDay            = "rest_day"
	Injury             = "injury"
	Umpire             = "umpire"
	Temperature        = "temperature"
	PitchMix           = "pitch_mix"
	LineupPosition     = "lineup_position"
	TimeOfDay          = "time_of_day"
	DefensivePositions = "defensive_positions"
	RecentForm         = "recent_form"
	BullpenFatigue     = "bullpen_fatigue"
	HumidityElevation  = "humidity_elevation"
	MonthlySplits      = "monthly_splits"
	TeamMomentum       = "team_momentum"
	StatcastMetrics    = "statcast_metrics"
	VegasOdds          = "vegas_odds"
)

// Catalog is the fixed, ordered factor enumeration. The order is load-bearing
// for the ensemble feature projection and must not be reshuffled without
// bumping the feature spec version.
var Catalog = []string{
	Wind,
	Matchup,
	HomeAway,
	Platoon,
	ParkFactors,
	RestDay,
	Injury,
	Umpire,
	Temperature,
	PitchMix,
	LineupPosition,
	TimeOfDay,
	DefensivePositions,
	RecentForm,
	BullpenFatigue,
	HumidityElevation,
	MonthlySplits,
	TeamMomentum,
	StatcastMetrics,
	VegasOdds,
}

var catalogSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Catalog))
	for _, name := range Catalog {
		m[name] = struct{}{}
	}
	return m
}()

// Known reports whether name is part of the factor catalog.
func Known(name string) bool {
	_, ok := catalogSet[name]
	return ok
}
