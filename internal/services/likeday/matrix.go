package likeday

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"GridPull/internal/domain/models"
)

// Matrix is the candidate feature matrix plus the target row, in a fixed
// feature-key order so that distances are reproducible.
type Matrix struct {
	Keys   []models.FeatureKey
	Dates  []time.Time // ascending, aligned with Rows
	Rows   [][]float64 // len(Dates) x len(Keys)
	Target []float64   // len(Keys)
}

// BuildMatrix lays the extraction out as dense rows ordered by spec.Keys().
func BuildMatrix(ex *Extraction, spec models.FeatureSpec) *Matrix {
	keys := spec.Keys()
	m := &Matrix{
		Keys:   keys,
		Dates:  ex.Dates,
		Rows:   make([][]float64, len(ex.Dates)),
		Target: make([]float64, len(keys)),
	}
	for j, k := range keys {
		m.Target[j] = ex.Target[k]
	}
	for i, d := range ex.Dates {
		row := make([]float64, len(keys))
		vec := ex.Candidates[d]
		for j, k := range keys {
			row[j] = vec[k]
		}
		m.Rows[i] = row
	}
	return m
}

// Normalize z-scores every column independently using mean and standard
// deviation of the candidate population only. The target is deliberately
// excluded from the statistics so the anchor cannot skew its own comparison
// baseline; it is then rescaled with the same per-column mean/std. A
// zero-variance column normalizes to 0 for every row, target included.
func (m *Matrix) Normalize() {
	if len(m.Rows) == 0 {
		for j := range m.Target {
			m.Target[j] = 0
		}
		return
	}
	col := make([]float64, len(m.Rows))
	for j := range m.Keys {
		for i := range m.Rows {
			col[i] = m.Rows[i][j]
		}
		mean := stat.Mean(col, nil)
		std := stat.StdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			for i := range m.Rows {
				m.Rows[i][j] = 0
			}
			m.Target[j] = 0
			continue
		}
		for i := range m.Rows {
			m.Rows[i][j] = (m.Rows[i][j] - mean) / std
		}
		m.Target[j] = (m.Target[j] - mean) / std
	}
}

// ApplyWeights scales each column by its feature weight. Weights modulate
// contribution after normalization; they are not part of the z-score.
func (m *Matrix) ApplyWeights(weights []float64) {
	for j, w := range weights {
		if j >= len(m.Keys) {
			break
		}
		for i := range m.Rows {
			m.Rows[i][j] *= w
		}
		m.Target[j] *= w
	}
}
