package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"rps_webapp/internal/domain"
	"rps_webapp/internal/game"
	"rps_webapp/internal/repository"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) repository.StatsStore {
	t.Helper()
	ctx := context.Background()
	s, err := repository.OpenSQLiteStatsRepository(ctx, filepath.Join(t.TempDir(), "game_stats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Initialize(ctx))
	return s
}

func TestPlayRockAgainstScissors(t *testing.T) {
	svc := NewGameServiceWithPicker(newTestStore(t), game.FixedPicker(domain.ChoiceScissors))
	before := testutil.ToFloat64(RoundsPlayed.WithLabelValues("player"))

	res, err := svc.Play(context.Background(), "rock")
	require.NoError(t, err)
	assert.Equal(t, domain.ChoiceRock, res.PlayerChoice)
	assert.Equal(t, domain.ChoiceScissors, res.ComputerChoice)
	assert.Equal(t, domain.ResultPlayer, res.Result)
	assert.NotEmpty(t, res.RoundID)
	assert.Equal(t, domain.Stats{PlayerWins: 1, TotalGames: 1}, withoutTime(res.Stats))

	assert.Equal(t, before+1, testutil.ToFloat64(RoundsPlayed.WithLabelValues("player")))
}

func TestPlayPaperAgainstPaperIsDraw(t *testing.T) {
	svc := NewGameServiceWithPicker(newTestStore(t), game.FixedPicker(domain.ChoicePaper))

	res, err := svc.Play(context.Background(), "PAPER")
	require.NoError(t, err)
	assert.Equal(t, domain.ResultDraw, res.Result)
	assert.Equal(t, domain.Stats{Draws: 1, TotalGames: 1}, withoutTime(res.Stats))
}

func TestPlayInvalidChoiceLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewGameServiceWithPicker(store, game.FixedPicker(domain.ChoiceRock))

	_, err := svc.Play(ctx, "rock")
	require.NoError(t, err)
	before, err := svc.CurrentStats(ctx)
	require.NoError(t, err)

	_, err = svc.Play(ctx, "lizard")
	require.ErrorIs(t, err, domain.ErrInvalidChoice)

	after, err := svc.CurrentStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	history, err := svc.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestResetAllReturnsZeroStats(t *testing.T) {
	ctx := context.Background()
	svc := NewGameService(newTestStore(t))

	for i := 0; i < 10; i++ {
		_, err := svc.Play(ctx, string(domain.Choices[i%3]))
		require.NoError(t, err)
	}
	stats, err := svc.CurrentStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stats.TotalGames)
	assert.True(t, stats.Consistent())

	stats, err = svc.ResetAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{}, withoutTime(stats))

	history, err := svc.History(ctx, 0)
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestHistoryLimits(t *testing.T) {
	ctx := context.Background()
	svc := NewGameServiceWithPicker(newTestStore(t), game.FixedPicker(domain.ChoiceRock))
	svc.SetHistoryLimits(HistoryLimits{Default: 2, Max: 3})

	for i := 0; i < 5; i++ {
		_, err := svc.Play(ctx, "paper")
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	history, err = svc.History(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestReadiness(t *testing.T) {
	svc := NewGameService(newTestStore(t))
	version, err := svc.Readiness(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, version)
}

func TestStoreFailuresPropagate(t *testing.T) {
	ctx := context.Background()
	svc := NewGameServiceWithPicker(brokenStore{}, game.FixedPicker(domain.ChoiceRock))
	before := testutil.ToFloat64(StoreErrors.WithLabelValues("record_round"))

	_, err := svc.Play(ctx, "rock")
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, before+1, testutil.ToFloat64(StoreErrors.WithLabelValues("record_round")))

	_, err = svc.CurrentStats(ctx)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	_, err = svc.ResetAll(ctx)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	_, err = svc.History(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	_, err = svc.Readiness(ctx)
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	// validation still wins over a broken store
	_, err = svc.Play(ctx, "spock")
	assert.ErrorIs(t, err, domain.ErrInvalidChoice)
}

func withoutTime(s domain.Stats) domain.Stats {
	return domain.Stats{PlayerWins: s.PlayerWins, ComputerWins: s.ComputerWins, Draws: s.Draws, TotalGames: s.TotalGames}
}

var errDisk = errors.New("disk I/O error")

type brokenStore struct{}

func (brokenStore) fail(op string) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, errDisk)
}

func (b brokenStore) Initialize(context.Context) error {
	return b.fail("initialize")
}
func (b brokenStore) GetStats(context.Context) (domain.Stats, error) {
	return domain.Stats{}, b.fail("get stats")
}
func (b brokenStore) RecordRound(context.Context, domain.Choice, domain.Choice, domain.Result) (domain.HistoryEntry, domain.Stats, error) {
	return domain.HistoryEntry{}, domain.Stats{}, b.fail("record round")
}
func (b brokenStore) Reset(context.Context) (domain.Stats, error) {
	return domain.Stats{}, b.fail("reset")
}
func (b brokenStore) ListHistory(context.Context, int) ([]domain.HistoryEntry, error) {
	return nil, b.fail("list history")
}
func (b brokenStore) SchemaVersion(context.Context) (int, error) {
	return 0, b.fail("schema version")
}
func (b brokenStore) Ping(context.Context) error {
	return b.fail("ping")
}
func (b brokenStore) Close() error {
	return nil
}
