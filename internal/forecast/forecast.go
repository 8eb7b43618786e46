// Package forecast trains the candidate regressors on the engineered
// feature table and selects the best held-out performer.
package forecast

import (
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/hoopsight/points-api/internal/models"
)

// ErrTooFewRows is returned when the table cannot support a held-out
// split (fewer than two rows).
var ErrTooFewRows = errors.New("forecast: too few rows to train")

// Model is the uniform capability set every candidate implements. Fit is
// stateful; Predict may only be called after Fit.
type Model interface {
	Name() string
	Fit(x [][]float64, y []float64)
	Predict(x [][]float64) []float64
}

// Candidate builds a fresh model instance seeded for reproducibility.
type Candidate func(seed int64) Model

// defaultCandidates returns the fixed candidate list in selection order.
func defaultCandidates() []Candidate {
	return []Candidate{
		func(seed int64) Model { return NewRandomForest(seed) },
		func(seed int64) Model { return NewGradientBoosting(seed) },
		func(seed int64) Model { return NewXGBoost(seed) },
		func(seed int64) Model { return NewMLP(seed) },
	}
}

type Config struct {
	TestFraction float64
	Seed         int64
}

// Trainer fits every candidate on a single shared split and picks the
// winner by held-out R². Ties resolve to the earlier candidate.
type Trainer struct {
	cfg        Config
	candidates []Candidate
	logger     *zap.SugaredLogger
}

func NewTrainer(cfg Config, logger *zap.Logger) *Trainer {
	if cfg.TestFraction <= 0 || cfg.TestFraction >= 1 {
		cfg.TestFraction = 0.2
	}
	return &Trainer{
		cfg:        cfg,
		candidates: defaultCandidates(),
		logger:     logger.Sugar(),
	}
}

// Train draws one seeded 80/20 split, fits each candidate on the training
// partition, and scores it on the held-out partition. The same split is
// reused for every candidate so the comparison is fair.
func (t *Trainer) Train(x [][]float64, y []float64) (models.TrainingOutcome, error) {
	n := len(x)
	if n < 2 || len(y) != n {
		return models.TrainingOutcome{}, ErrTooFewRows
	}

	trainIdx, testIdx := t.split(n)

	xTrain, yTrain := subset(x, y, trainIdx)
	xTest, yTest := subset(x, y, testIdx)

	ordered := make([]models.ModelResult, 0, len(t.candidates))
	for _, build := range t.candidates {
		model := build(t.cfg.Seed)
		model.Fit(xTrain, yTrain)
		preds := model.Predict(xTest)
		score := rSquared(yTest, preds)

		ordered = append(ordered, models.ModelResult{
			Model:       model.Name(),
			Score:       score,
			Predictions: preds,
			Actuals:     yTest,
		})

		t.logger.Infow("Candidate scored",
			"model", model.Name(),
			"r2", score,
			"train_rows", len(trainIdx),
			"test_rows", len(testIdx),
		)
	}

	return pickBest(ordered), nil
}

// pickBest selects the strictly highest-scoring candidate; a tie goes to
// the earlier entry in candidate order.
func pickBest(ordered []models.ModelResult) models.TrainingOutcome {
	outcome := models.TrainingOutcome{
		Results: make(map[string]models.ModelResult, len(ordered)),
	}
	for i, result := range ordered {
		outcome.Results[result.Model] = result
		if i == 0 || result.Score > outcome.Best.Score {
			outcome.BestModel = result.Model
			outcome.Best = result
		}
	}
	return outcome
}

// split shuffles row indices with the configured seed and carves off the
// held-out fraction (at least one row on each side).
func (t *Trainer) split(n int) (train, test []int) {
	rng := rand.New(rand.NewSource(t.cfg.Seed))
	perm := rng.Perm(n)

	testSize := int(float64(n)*t.cfg.TestFraction + 0.5)
	if testSize < 1 {
		testSize = 1
	}
	if testSize >= n {
		testSize = n - 1
	}

	return perm[testSize:], perm[:testSize]
}

func subset(x [][]float64, y []float64, indices []int) ([][]float64, []float64) {
	xs := make([][]float64, len(indices))
	ys := make([]float64, len(indices))
	for i, idx := range indices {
		xs[i] = x[idx]
		ys[i] = y[idx]
	}
	return xs, ys
}

// rSquared is the coefficient of determination on the held-out rows.
// A constant target has no variance to explain; report 0 rather than
// dividing by zero.
func rSquared(actual, predicted []float64) float64 {
	if len(actual) == 0 {
		return 0
	}
	var meanY float64
	for _, v := range actual {
		meanY += v
	}
	meanY /= float64(len(actual))

	var ssRes, ssTot float64
	for i, v := range actual {
		ssRes += (v - predicted[i]) * (v - predicted[i])
		ssTot += (v - meanY) * (v - meanY)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// Summary renders the outcome's one-line form for logs.
func Summary(outcome models.TrainingOutcome) string {
	return fmt.Sprintf("best=%s r2=%.3f candidates=%d",
		outcome.BestModel, outcome.Best.Score, len(outcome.Results))
}
