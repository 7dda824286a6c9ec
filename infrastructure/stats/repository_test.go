package stats

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/AzielCF/piebot/core/config"
	"github.com/AzielCF/piebot/core/database"
	domainStats "github.com/AzielCF/piebot/domains/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	cfg := &config.Config{}
	cfg.Database.Driver = "sqlite"
	cfg.Database.Name = filepath.Join(t.TempDir(), "stats.db")

	db, err := database.NewDatabase(cfg)
	require.NoError(t, err)

	repo, err := NewRepository(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepository_EmptySummary(t *testing.T) {
	repo := newTestRepository(t)

	summary, err := repo.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.Total)
	assert.Nil(t, summary.LastAt)
}

func TestRepository_RecordAndSummarize(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	records := []domainStats.ConversionRecord{
		{InputKind: "image", OutputBytes: 100, Attempts: 1, Outcome: domainStats.OutcomeSuccess},
		{Animated: true, InputKind: "video", OutputBytes: 2000, Attempts: 2, Oversized: true, Outcome: domainStats.OutcomeSuccess},
		{Animated: true, InputKind: "video", Outcome: domainStats.OutcomeFailure, Error: "ffmpeg exited 1"},
	}
	for _, r := range records {
		require.NoError(t, repo.Record(ctx, r))
	}

	summary, err := repo.Summary(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.Total)
	assert.Equal(t, int64(1), summary.Static)
	assert.Equal(t, int64(2), summary.Animated)
	assert.Equal(t, int64(1), summary.Failed)
	assert.Equal(t, int64(1), summary.Oversized)
	assert.Equal(t, int64(2100), summary.OutputBytes)
	require.NotNil(t, summary.LastAt)
}

func TestRepository_RecordIgnoresCallerID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	rec := domainStats.ConversionRecord{ID: 7, Outcome: domainStats.OutcomeSuccess}
	require.NoError(t, repo.Record(ctx, rec))
	require.NoError(t, repo.Record(ctx, rec))

	summary, err := repo.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Total)
}
