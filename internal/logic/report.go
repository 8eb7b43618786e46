package logic

import (
	"time"

	"github.com/google/uuid"

	"github.com/hoopsight/points-api/internal/models"
)

// recentGameCount is the length of the dashboard's recent-performance table.
const recentGameCount = 5

// Summarize packages the engineered table and training outcome into the
// Report the presentation layer renders. Aggregates are deterministic for
// identical inputs; only the id and timestamp vary between calls.
func Summarize(player string, seasons []string, rows []models.EngineeredRow, outcome models.TrainingOutcome) models.Report {
	report := models.Report{
		ID:          uuid.NewString(),
		Player:      player,
		Seasons:     seasons,
		Games:       len(rows),
		Aggregates:  aggregate(rows),
		BestModel:   outcome.BestModel,
		ModelScores: make(map[string]float64, len(outcome.Results)),
		Series: models.PredictionSeries{
			Actual:    outcome.Best.Actuals,
			Predicted: outcome.Best.Predictions,
		},
		GeneratedAt: time.Now().UTC(),
	}

	for name, result := range outcome.Results {
		report.ModelScores[name] = result.Score
	}

	limit := recentGameCount
	if limit > len(rows) {
		limit = len(rows)
	}
	report.RecentGames = make([]models.RecentGame, 0, limit)
	for _, row := range rows[:limit] {
		report.RecentGames = append(report.RecentGames, models.RecentGame{
			GameDate: row.Game.GameDate,
			Matchup:  row.Game.Matchup,
			Minutes:  row.Game.Minutes,
			Points:   row.Game.Points,
			Assists:  row.Game.AST,
			Rebounds: row.Game.REB,
		})
	}

	return report
}

func aggregate(rows []models.EngineeredRow) models.AggregateStats {
	if len(rows) == 0 {
		return models.AggregateStats{}
	}

	var sumPts, sumAst, sumReb, sumFGPct, sum3PPct float64
	var sumMin, sumFGM, sumFGA, sumStl, sumBlk float64
	for _, row := range rows {
		g := row.Game
		sumPts += g.Points
		sumAst += g.AST
		sumReb += g.REB
		sumFGPct += g.FGPct
		sum3PPct += g.FG3Pct
		sumMin += g.Minutes
		sumFGM += g.FGM
		sumFGA += g.FGA
		sumStl += g.STL
		sumBlk += g.BLK
	}
	n := float64(len(rows))

	return models.AggregateStats{
		PointsPerGame:   sumPts / n,
		AssistsPerGame:  sumAst / n,
		ReboundsPerGame: sumReb / n,
		FieldGoalPct:    sumFGPct / n * 100,
		ThreePointPct:   sum3PPct / n * 100,
		UsageRate:       sumMin / n,
		OffensiveRating: safeRatio(sumFGM, sumFGA) * 100,
		DefensiveImpact: sumStl/n + sumBlk/n,
		Efficiency:      safeRatio(sumPts, sumMin) * 48,
	}
}

// safeRatio reports 0 for a zero denominator instead of faulting.
func safeRatio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
