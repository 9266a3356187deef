package models

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA projects centred rows onto the top NComponents principal axes.
// Each component's sign is fixed so its largest-magnitude loading is positive.
type PCA struct {
	NComponents            int
	Mean                   []float64
	Components             [][]float64 // NComponents x features
	ExplainedVariance      []float64
	ExplainedVarianceRatio []float64
}

func NewPCA(k int) *PCA { return &PCA{NComponents: k} }

func (p *PCA) Name() string { return fmt.Sprintf("PCA(%d)", p.NComponents) }

func (p *PCA) Fit(X *mat.Dense) error {
	r, c := X.Dims()
	if p.NComponents < 1 || p.NComponents > min(r, c) {
		return fmt.Errorf("pca: %d components requested for a %dx%d matrix", p.NComponents, r, c)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(X, nil); !ok {
		return errors.New("pca: decomposition failed")
	}
	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	vars := pc.VarsTo(nil)
	total := floats.Sum(vars)

	p.Mean = make([]float64, c)
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		p.Mean[j] = stat.Mean(col, nil)
	}

	p.Components = make([][]float64, p.NComponents)
	p.ExplainedVariance = make([]float64, p.NComponents)
	p.ExplainedVarianceRatio = make([]float64, p.NComponents)
	for k := 0; k < p.NComponents; k++ {
		comp := mat.Col(nil, k, &vecs)
		if comp[floats.MaxIdx(absAll(comp))] < 0 {
			floats.Scale(-1, comp)
		}
		p.Components[k] = comp
		p.ExplainedVariance[k] = vars[k]
		if total > 0 {
			p.ExplainedVarianceRatio[k] = vars[k] / total
		}
	}
	return nil
}

func absAll(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, v := range xs {
		out[i] = math.Abs(v)
	}
	return out
}

func (p *PCA) Transform(X *mat.Dense) (*mat.Dense, error) {
	if p.Components == nil {
		return nil, ErrNotFitted
	}
	r, c := X.Dims()
	if c != len(p.Mean) {
		return nil, fmt.Errorf("%w: pca fitted on %d columns, got %d", ErrColumnMismatch, len(p.Mean), c)
	}
	centred := mat.NewDense(r, c, nil)
	centred.Apply(func(i, j int, v float64) float64 { return v - p.Mean[j] }, X)

	w := mat.NewDense(c, p.NComponents, nil)
	for k, comp := range p.Components {
		w.SetCol(k, comp)
	}
	var out mat.Dense
	out.Mul(centred, w)
	return &out, nil
}

func (p *PCA) FitTransform(X *mat.Dense) (*mat.Dense, error) {
	if err := p.Fit(X); err != nil {
		return nil, err
	}
	return p.Transform(X)
}

// CumulativeVarianceRatio returns the running sum of ExplainedVarianceRatio.
func (p *PCA) CumulativeVarianceRatio() []float64 {
	out := make([]float64, len(p.ExplainedVarianceRatio))
	floats.CumSum(out, p.ExplainedVarianceRatio)
	return out
}
