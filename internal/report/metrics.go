// Package report summarises a training run as a metrics file and diagnostic
// figures.
package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const ModelName = "IsolationForest + PCA"

type Metrics struct {
	Model             string  `json:"model"`
	NSamples          int     `json:"n_samples"`
	NComponentsPCA    int     `json:"n_components_pca"`
	VarianceExplained float64 `json:"variance_explained"`
	Contamination     float64 `json:"contamination"`
	NAnomalies        int     `json:"n_anomalies"`
	NNormal           int     `json:"n_normal"`
	AnomalyPercentage float64 `json:"anomaly_percentage"`
	AnomalyScoreMean  float64 `json:"anomaly_score_mean"`
	AnomalyScoreMin   float64 `json:"anomaly_score_min"`
	AnomalyScoreMax   float64 `json:"anomaly_score_max"`
}

// Summarize derives the run metrics from decision scores. A row counts as an
// anomaly when its score is below zero.
func Summarize(scores []float64, varianceExplained float64, components int, contamination float64) (*Metrics, error) {
	if len(scores) == 0 {
		return nil, fmt.Errorf("summarize: no scores")
	}
	anomalies := 0
	for _, s := range scores {
		if s < 0 {
			anomalies++
		}
	}
	total := len(scores)
	pct := float64(anomalies) / float64(total) * 100

	return &Metrics{
		Model:             ModelName,
		NSamples:          total,
		NComponentsPCA:    components,
		VarianceExplained: round(varianceExplained, 4),
		Contamination:     contamination,
		NAnomalies:        anomalies,
		NNormal:           total - anomalies,
		AnomalyPercentage: round(pct, 2),
		AnomalyScoreMean:  round(stat.Mean(scores, nil), 4),
		AnomalyScoreMin:   round(floats.Min(scores), 4),
		AnomalyScoreMax:   round(floats.Max(scores), 4),
	}, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// WriteMetrics overwrites path with m as indented JSON.
func WriteMetrics(path string, m *Metrics) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// ReadMetrics loads the metrics of a finished training run.
func ReadMetrics(path string) (*Metrics, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Metrics
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}
