// Package features turns raw game log rows into the model-ready table:
// every box-score stat (and the points target) gains one trailing rolling
// mean per configured window.
package features

import (
	"errors"
	"fmt"

	"github.com/hoopsight/points-api/internal/models"
)

// ErrEmptyInput is returned when there are no rows to engineer. The
// caller short-circuits instead of training on a degenerate table.
var ErrEmptyInput = errors.New("features: empty input")

type Engineer struct {
	windows []int
}

func NewEngineer(windows []int) *Engineer {
	if len(windows) == 0 {
		windows = []int{3, 5, 10}
	}
	return &Engineer{windows: windows}
}

// Columns returns the derived column names in canonical order: stat-major,
// window-minor. This is the feature order fed to the models.
func (e *Engineer) Columns() []string {
	cols := make([]string, 0, len(models.StatColumns)*len(e.windows))
	for _, stat := range models.StatColumns {
		for _, w := range e.windows {
			cols = append(cols, fmt.Sprintf("%s_rolling_%d", stat, w))
		}
	}
	return cols
}

// Engineer computes the trailing rolling means in the rows' existing
// order. A window covers the current row and up to window-1 rows before
// it; near the start of the table the mean is taken over however many
// rows exist (min-periods of 1), so no row is ever dropped for a missing
// rolling value.
func (e *Engineer) Engineer(rows []models.GameLogRow) ([]models.EngineeredRow, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}

	out := make([]models.EngineeredRow, len(rows))

	// Running prefix sums give each rolling mean in O(1) per row.
	prefix := make(map[string][]float64, len(models.StatColumns))
	for _, stat := range models.StatColumns {
		ps := make([]float64, len(rows)+1)
		for i, row := range rows {
			ps[i+1] = ps[i] + row.Stat(stat)
		}
		prefix[stat] = ps
	}

	for i, row := range rows {
		rolling := make(map[string]float64, len(models.StatColumns)*len(e.windows))
		for _, stat := range models.StatColumns {
			ps := prefix[stat]
			for _, w := range e.windows {
				lo := i + 1 - w
				if lo < 0 {
					lo = 0
				}
				n := i + 1 - lo
				rolling[fmt.Sprintf("%s_rolling_%d", stat, w)] = (ps[i+1] - ps[lo]) / float64(n)
			}
		}
		out[i] = models.EngineeredRow{Game: row, Rolling: rolling}
	}
	return out, nil
}

// Matrix extracts the feature matrix and points target from engineered
// rows, with feature columns in Columns() order.
func (e *Engineer) Matrix(rows []models.EngineeredRow) ([][]float64, []float64) {
	cols := e.Columns()
	x := make([][]float64, len(rows))
	y := make([]float64, len(rows))
	for i, row := range rows {
		vec := make([]float64, len(cols))
		for j, col := range cols {
			vec[j] = row.Rolling[col]
		}
		x[i] = vec
		y[i] = row.Game.Points
	}
	return x, y
}
