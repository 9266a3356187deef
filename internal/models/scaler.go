package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// StandardScaler centres each column on its mean and divides by its
// population standard deviation. Constant columns keep a scale of 1.
type StandardScaler struct {
	Columns []string
	Mean    []float64
	Scale   []float64
}

func NewStandardScaler(columns []string) *StandardScaler {
	return &StandardScaler{Columns: append([]string(nil), columns...)}
}

func (s *StandardScaler) Name() string { return "StandardScaler" }

func (s *StandardScaler) Fit(X *mat.Dense) error {
	r, c := X.Dims()
	if r == 0 {
		return fmt.Errorf("scaler: empty input")
	}
	if len(s.Columns) > 0 && len(s.Columns) != c {
		return fmt.Errorf("%w: scaler has %d column names, matrix has %d columns", ErrColumnMismatch, len(s.Columns), c)
	}
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}
	return nil
}

func (s *StandardScaler) Transform(X *mat.Dense) (*mat.Dense, error) {
	if s.Mean == nil {
		return nil, ErrNotFitted
	}
	r, c := X.Dims()
	if c != len(s.Mean) {
		return nil, fmt.Errorf("%w: scaler fitted on %d columns, got %d", ErrColumnMismatch, len(s.Mean), c)
	}
	out := mat.NewDense(r, c, nil)
	out.Apply(func(i, j int, v float64) float64 {
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return out, nil
}

func (s *StandardScaler) FitTransform(X *mat.Dense) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}
