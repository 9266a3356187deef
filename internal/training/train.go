// Package training fits the scaler, PCA and isolation forest on the processed
// table and persists the run: artifacts, metrics and figures.
package training

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"ccanomaly/internal/config"
	"ccanomaly/internal/data"
	"ccanomaly/internal/models"
	"ccanomaly/internal/report"
)

// VarianceReference is the cumulative variance level marked on the variance plot.
const VarianceReference = 0.80

// Result holds everything a training run produced.
type Result struct {
	Scaler *models.StandardScaler
	PCA    *models.PCA
	// PCA2D is refitted on the standardized matrix for plotting only. Its axes
	// are not guaranteed to match the first two axes of PCA.
	PCA2D     *models.PCA
	Forest    *models.IsolationForest
	Projected [][]float64
	Viz       [][]float64
	Scores    []float64
	Anomalies []bool
	Metrics   *report.Metrics
}

type Trainer struct {
	cfg    config.TrainConfig
	store  models.Store
	logger *zap.Logger
}

func NewTrainer(cfg config.TrainConfig, store models.Store, logger *zap.Logger) *Trainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trainer{cfg: cfg, store: store, logger: logger}
}

// Fit runs standardization, both projections, the forest fit and the summary.
func (tr *Trainer) Fit(ctx context.Context, t *data.Table) (*Result, error) {
	if t.Len() == 0 {
		return nil, fmt.Errorf("train: empty table")
	}
	res := &Result{}
	X := models.TableMatrix(t)

	res.Scaler = models.NewStandardScaler(t.Names)
	Z, err := res.Scaler.FitTransform(X)
	if err != nil {
		return nil, fmt.Errorf("standardize: %w", err)
	}

	tr.logger.Info("Applying PCA", zap.Int("components", tr.cfg.Components))
	res.PCA = models.NewPCA(tr.cfg.Components)
	P, err := res.PCA.FitTransform(Z)
	if err != nil {
		return nil, fmt.Errorf("pca: %w", err)
	}
	cum := res.PCA.CumulativeVarianceRatio()
	tr.logger.Info("Variance explained", zap.Float64("cumulative", cum[len(cum)-1]))

	res.PCA2D = models.NewPCA(tr.cfg.VizComponents)
	V, err := res.PCA2D.FitTransform(Z)
	if err != nil {
		return nil, fmt.Errorf("pca 2d: %w", err)
	}
	if !sharesLeadingAxes(res.PCA, res.PCA2D) {
		tr.logger.Warn("2D projection axes differ from the leading model components")
	}
	res.Projected = models.MatrixRows(P)
	res.Viz = models.MatrixRows(V)

	tr.logger.Info("Training isolation forest",
		zap.Int("trees", tr.cfg.Trees),
		zap.Float64("contamination", tr.cfg.Contamination),
	)
	res.Forest = &models.IsolationForest{
		NEstimators:   tr.cfg.Trees,
		MaxSamples:    tr.cfg.MaxSamples,
		Contamination: tr.cfg.Contamination,
		Seed:          tr.cfg.Seed,
	}
	if err := res.Forest.Fit(ctx, res.Projected); err != nil {
		return nil, err
	}
	if res.Scores, err = res.Forest.DecisionFunction(res.Projected); err != nil {
		return nil, err
	}
	res.Anomalies = make([]bool, len(res.Scores))
	for i, s := range res.Scores {
		res.Anomalies[i] = s < 0
	}

	res.Metrics, err = report.Summarize(res.Scores, cum[len(cum)-1], tr.cfg.Components, tr.cfg.Contamination)
	if err != nil {
		return nil, err
	}
	m := res.Metrics
	tr.logger.Info("Model metrics",
		zap.Int("total", m.NSamples),
		zap.Int("normal", m.NNormal),
		zap.Int("anomalies", m.NAnomalies),
		zap.Float64("anomaly_pct", m.AnomalyPercentage),
		zap.Float64("score_mean", m.AnomalyScoreMean),
		zap.Float64("score_min", m.AnomalyScoreMin),
		zap.Float64("score_max", m.AnomalyScoreMax),
	)
	return res, nil
}

// sharesLeadingAxes reports whether b's components equal a's leading ones up
// to a small tolerance.
func sharesLeadingAxes(a, b *models.PCA) bool {
	for k, comp := range b.Components {
		if k >= len(a.Components) {
			return false
		}
		if !mat.EqualApprox(mat.NewVecDense(len(comp), comp), mat.NewVecDense(len(a.Components[k]), a.Components[k]), 1e-8) {
			return false
		}
	}
	return true
}

// Persist writes the metrics, the three figures and the fitted artifacts.
func (tr *Trainer) Persist(res *Result, paths config.PathConfig, figurePath func(string) string) error {
	if err := report.WriteMetrics(paths.Metrics, res.Metrics); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	tr.logger.Info("Metrics saved", zap.String("path", paths.Metrics))

	figures := []struct {
		name string
		draw func(string) error
	}{
		{report.FigureVariance, func(p string) error {
			return report.PlotVariance(p, res.PCA.CumulativeVarianceRatio(), VarianceReference)
		}},
		{report.FigureScatter, func(p string) error {
			ratio := [2]float64{res.PCA2D.ExplainedVarianceRatio[0], res.PCA2D.ExplainedVarianceRatio[1]}
			return report.PlotScatter(p, res.Viz, res.Anomalies, ratio)
		}},
		{report.FigureScores, func(p string) error {
			return report.PlotScores(p, res.Scores, res.Anomalies)
		}},
	}
	for _, f := range figures {
		path := figurePath(f.name)
		if err := f.draw(path); err != nil {
			return fmt.Errorf("plot %s: %w", f.name, err)
		}
		tr.logger.Info("Figure saved", zap.String("path", path))
	}

	artifacts := []struct {
		name string
		v    any
	}{
		{models.ArtifactForest, res.Forest},
		{models.ArtifactScaler, res.Scaler},
		{models.ArtifactPCA, res.PCA},
	}
	for _, a := range artifacts {
		if err := tr.store.Save(a.name, a.v); err != nil {
			return fmt.Errorf("save %s: %w", a.name, err)
		}
		tr.logger.Info("Artifact saved", zap.String("name", a.name))
	}
	return nil
}

// Run loads the processed table named by cfg, fits, and persists the run.
func Run(ctx context.Context, cfg *config.Config, store models.Store, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Loading processed data", zap.String("path", cfg.Paths.Processed))
	t, err := data.ReadCSV(cfg.Paths.Processed)
	if err != nil {
		return nil, fmt.Errorf("load processed data: %w", err)
	}
	rows, cols := t.Shape()
	logger.Info("Processed data loaded", zap.Int("rows", rows), zap.Int("cols", cols))

	tr := NewTrainer(cfg.Train, store, logger)
	res, err := tr.Fit(ctx, t)
	if err != nil {
		return nil, err
	}
	if err := tr.Persist(res, cfg.Paths, cfg.FigurePath); err != nil {
		return nil, err
	}
	return res, nil
}
