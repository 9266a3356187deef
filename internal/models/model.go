package models

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/mat"

	"ccanomaly/internal/data"
)

var (
	ErrNotFitted      = errors.New("model not fitted")
	ErrColumnMismatch = errors.New("column mismatch")
)

// Transformer is a fitted, stateless-after-fit projection of a feature matrix.
type Transformer interface {
	Fit(X *mat.Dense) error
	Transform(X *mat.Dense) (*mat.Dense, error)
	Name() string
}

// Detector scores rows for anomalousness. Lower scores are more anomalous and
// a negative decision value marks an anomaly.
type Detector interface {
	Fit(ctx context.Context, X [][]float64) error
	ScoreSamples(X [][]float64) ([]float64, error)
	DecisionFunction(X [][]float64) ([]float64, error)
	Predict(X [][]float64) ([]bool, error)
	Name() string
}

var (
	_ Transformer = (*StandardScaler)(nil)
	_ Transformer = (*PCA)(nil)
	_ Detector    = (*IsolationForest)(nil)
)

// TableMatrix copies the numeric columns of t into a rows x columns matrix.
func TableMatrix(t *data.Table) *mat.Dense {
	r, c := t.Len(), len(t.Cols)
	m := mat.NewDense(r, c, nil)
	for j, col := range t.Cols {
		for i, v := range col {
			m.Set(i, j, v)
		}
	}
	return m
}

// MatrixRows returns the rows of m as freshly allocated slices.
func MatrixRows(m *mat.Dense) [][]float64 {
	r, _ := m.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = mat.Row(nil, i, m)
	}
	return out
}
