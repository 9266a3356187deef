package models

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"ccanomaly/pkg/utils"
)

const eulerGamma = 0.5772156649015329

// INode is a node of an isolation tree. Leaves have nil children and record
// how many training samples reached them.
type INode struct {
	Feature   int
	Threshold float64
	Left      *INode
	Right     *INode
	Size      int
}

type ITree struct {
	Root *INode
}

// IsolationForest isolates rows with randomized axis-aligned splits. Rows that
// isolate in fewer splits score lower. Offset is chosen at fit time so that a
// Contamination fraction of the training rows gets a negative decision value.
type IsolationForest struct {
	NEstimators   int
	MaxSamples    int
	Contamination float64
	Seed          int64

	SampleSize int
	MaxDepth   int
	Offset     float64
	Trees      []*ITree
}

func NewIsolationForest() *IsolationForest {
	return &IsolationForest{NEstimators: 200, MaxSamples: 256, Contamination: 0.05, Seed: 42}
}

func (f *IsolationForest) Name() string { return "IsolationForest" }

// Fit builds the trees concurrently. Per-tree seeds are drawn from Seed before
// any tree starts, so the result does not depend on scheduling.
func (f *IsolationForest) Fit(ctx context.Context, X [][]float64) error {
	n := len(X)
	if n == 0 {
		return errors.New("isolation forest: empty training data")
	}
	if f.NEstimators <= 0 {
		f.NEstimators = 200
	}
	if f.MaxSamples <= 0 {
		f.MaxSamples = 256
	}
	nFeats := len(X[0])

	f.SampleSize = min(f.MaxSamples, n)
	f.MaxDepth = int(math.Ceil(math.Log2(math.Max(float64(f.SampleSize), 2))))

	rng := rand.New(rand.NewSource(f.Seed))
	seeds := make([]int64, f.NEstimators)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}

	trees := make([]*ITree, f.NEstimators)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range trees {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := rand.New(rand.NewSource(seeds[i]))
			idx := r.Perm(n)[:f.SampleSize]
			trees[i] = &ITree{Root: f.build(r, X, idx, nFeats, 0)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("isolation forest: %w", err)
	}
	f.Trees = trees

	scores, err := f.ScoreSamples(X)
	if err != nil {
		return err
	}
	f.Offset = utils.Quantile(scores, f.Contamination)
	return nil
}

func (f *IsolationForest) build(r *rand.Rand, X [][]float64, idx []int, nFeats, depth int) *INode {
	if depth >= f.MaxDepth || len(idx) <= 1 {
		return &INode{Size: len(idx)}
	}

	// Try features in random order and split on the first non-constant one.
	for _, feat := range r.Perm(nFeats) {
		lo, hi := X[idx[0]][feat], X[idx[0]][feat]
		for _, i := range idx[1:] {
			v := X[i][feat]
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		if lo == hi {
			continue
		}

		thr := lo + r.Float64()*(hi-lo)
		left := make([]int, 0, len(idx))
		right := make([]int, 0, len(idx))
		for _, i := range idx {
			if X[i][feat] < thr {
				left = append(left, i)
			} else {
				right = append(right, i)
			}
		}
		return &INode{
			Feature:   feat,
			Threshold: thr,
			Left:      f.build(r, X, left, nFeats, depth+1),
			Right:     f.build(r, X, right, nFeats, depth+1),
		}
	}
	return &INode{Size: len(idx)}
}

// ScoreSamples returns -2^(-E[h(x)]/c(SampleSize)) per row, in [-1, 0).
func (f *IsolationForest) ScoreSamples(X [][]float64) ([]float64, error) {
	if len(f.Trees) == 0 {
		return nil, ErrNotFitted
	}
	norm := averagePathLength(f.SampleSize)
	if norm == 0 {
		norm = 1
	}
	out := make([]float64, len(X))
	for i, x := range X {
		var total float64
		for _, t := range f.Trees {
			total += pathLength(x, t.Root, 0)
		}
		mean := total / float64(len(f.Trees))
		out[i] = -math.Pow(2, -mean/norm)
	}
	return out, nil
}

// DecisionFunction shifts ScoreSamples by Offset so zero is the decision
// boundary and negative values are anomalies.
func (f *IsolationForest) DecisionFunction(X [][]float64) ([]float64, error) {
	scores, err := f.ScoreSamples(X)
	if err != nil {
		return nil, err
	}
	for i := range scores {
		scores[i] -= f.Offset
	}
	return scores, nil
}

// Predict flags rows whose decision value is below zero.
func (f *IsolationForest) Predict(X [][]float64) ([]bool, error) {
	dec, err := f.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(dec))
	for i, d := range dec {
		out[i] = d < 0
	}
	return out, nil
}

func pathLength(x []float64, n *INode, depth int) float64 {
	for n.Left != nil {
		if x[n.Feature] < n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
		depth++
	}
	return float64(depth) + averagePathLength(n.Size)
}

// averagePathLength is c(n), the mean depth of an unsuccessful search in a
// binary search tree of n keys.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
}
