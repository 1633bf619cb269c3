package likeday

import (
	"math"
	"testing"
	"time"

	"GridPull/internal/domain/models"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func matrixFixture(t *testing.T, candidateValues []float64, targetValue float64) *Matrix {
	t.Helper()
	key := models.FeatureKey{Market: models.MarketDayAhead, Component: models.ComponentTotal}
	ex := &Extraction{
		Target:     FeatureVector{key: targetValue},
		Candidates: make(map[time.Time]FeatureVector, len(candidateValues)),
	}
	for i, v := range candidateValues {
		d := day(t, "2026-01-01").AddDate(0, 0, i)
		ex.Candidates[d] = FeatureVector{key: v}
		ex.Dates = append(ex.Dates, d)
	}
	return BuildMatrix(ex, daTotalSpec())
}

func TestNormalizeZScore(t *testing.T) {
	m := matrixFixture(t, []float64{1, 3}, 2)
	m.Normalize()

	// mean 2, sample std sqrt(2)
	want := 1.0 / math.Sqrt(2)
	if !approx(m.Rows[0][0], -want) || !approx(m.Rows[1][0], want) {
		t.Errorf("normalized rows = %v, %v; want ±%v", m.Rows[0][0], m.Rows[1][0], want)
	}
	if !approx(m.Target[0], 0) {
		t.Errorf("normalized target = %v, want 0", m.Target[0])
	}
}

func TestNormalizeConstantColumn(t *testing.T) {
	for _, magnitude := range []float64{0.001, 42, 1e9} {
		m := matrixFixture(t, []float64{magnitude, magnitude, magnitude}, magnitude*3)
		m.Normalize()
		for i := range m.Rows {
			if m.Rows[i][0] != 0 {
				t.Errorf("magnitude %v: row %d = %v, want 0", magnitude, i, m.Rows[i][0])
			}
		}
		if m.Target[0] != 0 {
			t.Errorf("magnitude %v: target = %v, want 0", magnitude, m.Target[0])
		}
	}
}

func TestNormalizeSingleCandidate(t *testing.T) {
	// Sample std of one value is undefined; the column must collapse to zero,
	// not NaN.
	m := matrixFixture(t, []float64{5}, 9)
	m.Normalize()
	if m.Rows[0][0] != 0 || m.Target[0] != 0 {
		t.Errorf("single-candidate column: row=%v target=%v, want zeros", m.Rows[0][0], m.Target[0])
	}
}

func TestNormalizeExcludesTargetFromStats(t *testing.T) {
	// With candidates {1,3} the column stats are mean=2, std=sqrt(2) no
	// matter how extreme the target is.
	m := matrixFixture(t, []float64{1, 3}, 1000)
	m.Normalize()
	want := (1000.0 - 2.0) / math.Sqrt(2)
	if !approx(m.Target[0], want) {
		t.Errorf("target z = %v, want %v (stats from candidates only)", m.Target[0], want)
	}
}

func TestApplyWeights(t *testing.T) {
	m := matrixFixture(t, []float64{1, 3}, 2)
	m.Normalize()
	before := m.Rows[1][0]
	m.ApplyWeights([]float64{2.5})
	if !approx(m.Rows[1][0], before*2.5) {
		t.Errorf("weighted row = %v, want %v", m.Rows[1][0], before*2.5)
	}
	if !approx(m.Target[0], 0) {
		t.Errorf("weighted zero target should stay 0, got %v", m.Target[0])
	}
}
