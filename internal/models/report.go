package models

import "time"

// EngineeredRow is a game log row augmented with trailing rolling means.
// Rolling keys follow the "<COLUMN>_rolling_<window>" convention, one per
// stat column per configured window.
type EngineeredRow struct {
	Game    GameLogRow         `json:"game"`
	Rolling map[string]float64 `json:"rolling"`
}

// ModelResult holds one candidate's held-out evaluation.
// Predictions and Actuals are aligned index-by-index.
type ModelResult struct {
	Model       string    `json:"model"`
	Score       float64   `json:"score"`
	Predictions []float64 `json:"predictions"`
	Actuals     []float64 `json:"actuals"`
}

// TrainingOutcome is the winning candidate plus every candidate's result.
type TrainingOutcome struct {
	BestModel string                 `json:"best_model"`
	Best      ModelResult            `json:"best"`
	Results   map[string]ModelResult `json:"results"`
}

// RecentGame is one row of the dashboard's recent-performance table.
type RecentGame struct {
	GameDate string  `json:"game_date"`
	Matchup  string  `json:"matchup"`
	Minutes  float64 `json:"min"`
	Points   float64 `json:"pts"`
	Assists  float64 `json:"ast"`
	Rebounds float64 `json:"reb"`
}

// AggregateStats are the season-to-date summary metrics. Every ratio is
// guarded against a zero denominator and reports 0 instead.
type AggregateStats struct {
	PointsPerGame   float64 `json:"points_per_game"`
	AssistsPerGame  float64 `json:"assists_per_game"`
	ReboundsPerGame float64 `json:"rebounds_per_game"`
	FieldGoalPct    float64 `json:"field_goal_pct"`
	ThreePointPct   float64 `json:"three_point_pct"`
	UsageRate       float64 `json:"usage_rate"`
	OffensiveRating float64 `json:"offensive_rating"`
	DefensiveImpact float64 `json:"defensive_impact"`
	Efficiency      float64 `json:"efficiency"`
}

// PredictionSeries is the winning model's held-out predicted-vs-actual
// points, ordered for charting.
type PredictionSeries struct {
	Actual    []float64 `json:"actual"`
	Predicted []float64 `json:"predicted"`
}

// Report packages everything the dashboard renders for one player.
type Report struct {
	ID          string             `json:"id"`
	Player      string             `json:"player"`
	Seasons     []string           `json:"seasons"`
	Games       int                `json:"games"`
	RecentGames []RecentGame       `json:"recent_games"`
	Aggregates  AggregateStats     `json:"aggregates"`
	BestModel   string             `json:"best_model"`
	ModelScores map[string]float64 `json:"model_scores"`
	Series      PredictionSeries   `json:"series"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// RosterReport is the roster-wide analysis result: one report per player
// that produced usable data, plus a warning per player that did not.
type RosterReport struct {
	Team     string            `json:"team"`
	Reports  map[string]Report `json:"reports"`
	Warnings []string          `json:"warnings"`
}
