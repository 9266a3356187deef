package training

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"ccanomaly/internal/data"
	"ccanomaly/internal/models"
)

// Score columns written by the scorer.
const (
	ColScore     = "ANOMALY_SCORE"
	ColIsAnomaly = "IS_ANOMALY"
)

// Scorer replays saved artifacts over a processed table.
type Scorer struct {
	Scaler models.StandardScaler
	PCA    models.PCA
	Forest models.IsolationForest
}

// LoadScorer reads the scaler, PCA and forest written by Trainer.Persist.
func LoadScorer(store models.Store) (*Scorer, error) {
	s := &Scorer{}
	for _, a := range []struct {
		name string
		v    any
	}{
		{models.ArtifactScaler, &s.Scaler},
		{models.ArtifactPCA, &s.PCA},
		{models.ArtifactForest, &s.Forest},
	} {
		if err := store.Load(a.name, a.v); err != nil {
			return nil, fmt.Errorf("load %s: %w", a.name, err)
		}
	}
	return s, nil
}

// Score returns decision values and anomaly flags for each row of t. The
// table must have exactly the columns the scaler was fitted on.
func (s *Scorer) Score(t *data.Table) ([]float64, []bool, error) {
	if !slices.Equal(t.Names, s.Scaler.Columns) {
		return nil, nil, fmt.Errorf("%w: table columns %v, scaler columns %v", models.ErrColumnMismatch, t.Names, s.Scaler.Columns)
	}
	Z, err := s.Scaler.Transform(models.TableMatrix(t))
	if err != nil {
		return nil, nil, err
	}
	P, err := s.PCA.Transform(Z)
	if err != nil {
		return nil, nil, err
	}
	scores, err := s.Forest.DecisionFunction(models.MatrixRows(P))
	if err != nil {
		return nil, nil, err
	}
	flags := make([]bool, len(scores))
	for i, v := range scores {
		flags[i] = v < 0
	}
	return scores, flags, nil
}

// ScoreFile scores the processed CSV at in with the artifacts in store and
// writes one row per input row to out.
func ScoreFile(in, out string, store models.Store, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s, err := LoadScorer(store)
	if err != nil {
		return 0, err
	}
	t, err := data.ReadCSV(in)
	if err != nil {
		return 0, fmt.Errorf("load processed data: %w", err)
	}
	scores, flags, err := s.Score(t)
	if err != nil {
		return 0, err
	}

	anomalies := 0
	isAnomaly := make([]float64, len(flags))
	for i, f := range flags {
		if f {
			isAnomaly[i] = 1
			anomalies++
		}
	}
	result := &data.Table{Names: []string{ColScore, ColIsAnomaly}, Cols: [][]float64{scores, isAnomaly}}
	if err := data.WriteCSV(out, result); err != nil {
		return 0, fmt.Errorf("write scores: %w", err)
	}
	logger.Info("Scores saved", zap.String("path", out), zap.Int("rows", len(scores)), zap.Int("anomalies", anomalies))
	return anomalies, nil
}
