package training

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"ccanomaly/internal/config"
	"ccanomaly/internal/data"
	"ccanomaly/internal/features"
	"ccanomaly/internal/models"
	"ccanomaly/internal/models/mocks"
	"ccanomaly/internal/report"
)

func testConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.Paths = config.PathConfig{
		Raw:        filepath.Join(dir, "data", "raw", "CC_GENERAL.csv"),
		Processed:  filepath.Join(dir, "data", "processed", "CC_PROCESSED.csv"),
		ModelsDir:  filepath.Join(dir, "models"),
		Metrics:    filepath.Join(dir, "reports", "metrics.json"),
		FiguresDir: filepath.Join(dir, "reports", "figures"),
		Scores:     filepath.Join(dir, "reports", "scores.csv"),
	}
	return cfg
}

// Fixture sizes stay above data.MinRows so preprocessing always has an
// observed value to impute from.
const (
	smallRows  = 400
	mediumRows = 800
	largeRows  = 1500
)

func processedTable(t *testing.T, n int) *data.Table {
	t.Helper()
	raw, err := data.GenerateCustomers(n, 42)
	require.NoError(t, err)
	tbl, _, err := features.Preprocess(raw, 0.99)
	require.NoError(t, err)
	return tbl
}

func TestTrainerFit(t *testing.T) {
	cfg := config.Default().Train
	cfg.Trees = 50
	tr := NewTrainer(cfg, nil, nil)

	res, err := tr.Fit(context.Background(), processedTable(t, largeRows))
	require.NoError(t, err)

	assert.Len(t, res.Projected, largeRows)
	assert.Len(t, res.Projected[0], 10)
	assert.Len(t, res.Viz[0], 2)
	assert.Len(t, res.Forest.Trees, 50)
	assert.Equal(t, 21, len(res.Scaler.Columns))

	anomalies := 0
	for i, s := range res.Scores {
		assert.Equal(t, s < 0, res.Anomalies[i])
		if s < 0 {
			anomalies++
		}
	}
	assert.Equal(t, anomalies, res.Metrics.NAnomalies)
	assert.Equal(t, largeRows, res.Metrics.NSamples)
	assert.InDelta(t, 75, res.Metrics.NAnomalies, 5)

	cum := res.PCA.CumulativeVarianceRatio()
	assert.InDelta(t, cum[len(cum)-1], res.Metrics.VarianceExplained, 5e-5)
}

func TestTrainerFitEmpty(t *testing.T) {
	tr := NewTrainer(config.Default().Train, nil, nil)
	_, err := tr.Fit(context.Background(), &data.Table{})
	assert.Error(t, err)
}

func TestPersistSavesArtifacts(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.Train.Trees = 20

	gomock.InOrder(
		store.EXPECT().Save(models.ArtifactForest, gomock.AssignableToTypeOf(&models.IsolationForest{})).Return(nil),
		store.EXPECT().Save(models.ArtifactScaler, gomock.AssignableToTypeOf(&models.StandardScaler{})).Return(nil),
		store.EXPECT().Save(models.ArtifactPCA, gomock.AssignableToTypeOf(&models.PCA{})).Return(nil),
	)

	tr := NewTrainer(cfg.Train, store, nil)
	res, err := tr.Fit(context.Background(), processedTable(t, mediumRows))
	require.NoError(t, err)
	require.NoError(t, tr.Persist(res, cfg.Paths, cfg.FigurePath))

	assert.FileExists(t, cfg.Paths.Metrics)
	for _, name := range []string{report.FigureVariance, report.FigureScatter, report.FigureScores} {
		assert.FileExists(t, cfg.FigurePath(name))
	}
}

func TestPersistStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	cfg := testConfig(t.TempDir())
	cfg.Train.Trees = 10

	boom := errors.New("disk full")
	store.EXPECT().Save(models.ArtifactForest, gomock.Any()).Return(boom)

	tr := NewTrainer(cfg.Train, store, nil)
	res, err := tr.Fit(context.Background(), processedTable(t, smallRows))
	require.NoError(t, err)
	err = tr.Persist(res, cfg.Paths, cfg.FigurePath)
	assert.ErrorIs(t, err, boom)
}

func TestRunMissingInput(t *testing.T) {
	cfg := testConfig(t.TempDir())
	_, err := Run(context.Background(), cfg, models.NewFileStore(cfg.Paths.ModelsDir), nil)
	assert.Error(t, err)
}

func TestPipelineEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("full-size pipeline")
	}
	cfg := testConfig(t.TempDir())

	raw, ver, err := data.GenerateVersion(1)
	require.NoError(t, err)
	require.Equal(t, int64(42), ver.Seed)
	require.NoError(t, data.WriteCSV(cfg.Paths.Raw, raw))

	rep, err := features.PreprocessFile(cfg.Paths.Raw, cfg.Paths.Processed, cfg.Preprocess.ClipQuantile)
	require.NoError(t, err)
	assert.Equal(t, 8950, rep.ProcessedRows)
	assert.Equal(t, 21, rep.ProcessedCols)

	store := models.NewFileStore(cfg.Paths.ModelsDir)
	res, err := Run(context.Background(), cfg, store, nil)
	require.NoError(t, err)

	m, err := report.ReadMetrics(cfg.Paths.Metrics)
	require.NoError(t, err)
	assert.Equal(t, 8950, m.NSamples)
	assert.Equal(t, 0.05, m.Contamination)
	assert.Equal(t, 10, m.NComponentsPCA)
	assert.InDelta(t, 448, m.NAnomalies, 10)
	assert.Equal(t, res.Metrics, m)

	for _, name := range []string{models.ArtifactForest, models.ArtifactScaler, models.ArtifactPCA} {
		assert.FileExists(t, store.Path(name))
	}

	anomalies, err := ScoreFile(cfg.Paths.Processed, cfg.Paths.Scores, store, nil)
	require.NoError(t, err)
	assert.Equal(t, m.NAnomalies, anomalies)

	scored, err := data.ReadCSV(cfg.Paths.Scores)
	require.NoError(t, err)
	assert.Equal(t, 8950, scored.Len())
	got, _ := scored.Column(ColScore)
	assert.InDeltaSlice(t, res.Scores, got, 1e-12)
}
