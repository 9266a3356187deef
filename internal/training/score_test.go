package training

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"ccanomaly/internal/config"
	"ccanomaly/internal/models"
	"ccanomaly/internal/models/mocks"
)

func TestScorerMatchesTraining(t *testing.T) {
	cfg := config.Default().Train
	cfg.Trees = 30
	tbl := processedTable(t, mediumRows)

	res, err := NewTrainer(cfg, nil, nil).Fit(context.Background(), tbl)
	require.NoError(t, err)

	s := &Scorer{Scaler: *res.Scaler, PCA: *res.PCA, Forest: *res.Forest}
	scores, flags, err := s.Score(tbl)
	require.NoError(t, err)
	assert.InDeltaSlice(t, res.Scores, scores, 1e-12)
	assert.Equal(t, res.Anomalies, flags)
}

func TestScorerColumnMismatch(t *testing.T) {
	tbl := processedTable(t, smallRows)
	s := &Scorer{Scaler: models.StandardScaler{Columns: []string{"A"}}}
	_, _, err := s.Score(tbl)
	assert.ErrorIs(t, err, models.ErrColumnMismatch)
}

func TestLoadScorerPropagatesStoreErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Load(models.ArtifactScaler, gomock.Any()).Return(assert.AnError)

	_, err := LoadScorer(store)
	assert.ErrorIs(t, err, assert.AnError)
}
