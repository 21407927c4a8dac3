package repository

import (
	"context"
	"sync"
	"testing"

	"rps_webapp/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract exercises behaviour every StatsStore must share.
// newStore must return an initialized, empty store.
func runStoreContract(t *testing.T, newStore func(t *testing.T) StatsStore) {
	t.Run("starts at zero", func(t *testing.T) {
		s := newStore(t)
		stats, err := s.GetStats(context.Background())
		require.NoError(t, err)
		assertCounters(t, stats, 0, 0, 0, 0)
	})

	t.Run("record round bumps one counter and appends history", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		entry, stats, err := s.RecordRound(ctx, domain.ChoiceRock, domain.ChoiceScissors, domain.ResultPlayer)
		require.NoError(t, err)
		assertCounters(t, stats, 1, 0, 0, 1)
		assert.NotZero(t, entry.ID)
		assert.NotEmpty(t, entry.RoundID)
		assert.False(t, entry.CreatedAt.IsZero())

		got, err := s.GetStats(ctx)
		require.NoError(t, err)
		assertCounters(t, got, 1, 0, 0, 1)

		history, err := s.ListHistory(ctx, 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, entry.RoundID, history[0].RoundID)
		assert.Equal(t, domain.ChoiceRock, history[0].PlayerChoice)
		assert.Equal(t, domain.ChoiceScissors, history[0].ComputerChoice)
		assert.Equal(t, domain.ResultPlayer, history[0].Result)
	})

	t.Run("total always matches outcome counters", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		rounds := []domain.Result{
			domain.ResultDraw, domain.ResultPlayer, domain.ResultComputer,
			domain.ResultComputer, domain.ResultDraw, domain.ResultDraw,
		}
		for _, res := range rounds {
			_, stats, err := s.RecordRound(ctx, domain.ChoicePaper, domain.ChoicePaper, res)
			require.NoError(t, err)
			require.True(t, stats.Consistent(), "%+v", stats)
		}

		stats, err := s.GetStats(ctx)
		require.NoError(t, err)
		assertCounters(t, stats, 1, 2, 3, 6)
	})

	t.Run("initialize is idempotent", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, _, err := s.RecordRound(ctx, domain.ChoiceRock, domain.ChoicePaper, domain.ResultComputer)
		require.NoError(t, err)

		require.NoError(t, s.Initialize(ctx))
		require.NoError(t, s.Initialize(ctx))

		stats, err := s.GetStats(ctx)
		require.NoError(t, err)
		assertCounters(t, stats, 0, 1, 0, 1)

		version, err := s.SchemaVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, version)
	})

	t.Run("reset clears counters and history", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		for i := 0; i < 5; i++ {
			_, _, err := s.RecordRound(ctx, domain.ChoiceScissors, domain.ChoicePaper, domain.ResultPlayer)
			require.NoError(t, err)
		}

		stats, err := s.Reset(ctx)
		require.NoError(t, err)
		assertCounters(t, stats, 0, 0, 0, 0)

		stats, err = s.GetStats(ctx)
		require.NoError(t, err)
		assertCounters(t, stats, 0, 0, 0, 0)

		history, err := s.ListHistory(ctx, 100)
		require.NoError(t, err)
		assert.Empty(t, history)

		// the aggregate survives a reset
		_, stats, err = s.RecordRound(ctx, domain.ChoiceRock, domain.ChoiceRock, domain.ResultDraw)
		require.NoError(t, err)
		assertCounters(t, stats, 0, 0, 1, 1)
	})

	t.Run("invalid input writes nothing", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		_, _, err := s.RecordRound(ctx, "lizard", domain.ChoiceRock, domain.ResultPlayer)
		assert.ErrorIs(t, err, domain.ErrInvalidChoice)
		_, _, err = s.RecordRound(ctx, domain.ChoiceRock, domain.ChoiceRock, "nobody")
		assert.ErrorIs(t, err, domain.ErrInvalidResult)

		stats, err := s.GetStats(ctx)
		require.NoError(t, err)
		assertCounters(t, stats, 0, 0, 0, 0)
		history, err := s.ListHistory(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("history is newest first and limited", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		var ids []string
		for _, c := range domain.Choices {
			e, _, err := s.RecordRound(ctx, c, domain.ChoiceRock, mustResult(c, domain.ChoiceRock))
			require.NoError(t, err)
			ids = append(ids, e.RoundID)
		}

		history, err := s.ListHistory(ctx, 2)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, ids[2], history[0].RoundID)
		assert.Equal(t, ids[1], history[1].RoundID)
	})

	t.Run("concurrent rounds lose no updates", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		const n = 100
		results := []domain.Result{domain.ResultPlayer, domain.ResultComputer, domain.ResultDraw}

		var wg sync.WaitGroup
		errs := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _, err := s.RecordRound(ctx, domain.ChoiceRock, domain.ChoicePaper, results[i%3])
				errs <- err
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		stats, err := s.GetStats(ctx)
		require.NoError(t, err)
		assertCounters(t, stats, 34, 33, 33, n)

		history, err := s.ListHistory(ctx, 1000)
		require.NoError(t, err)
		assert.Len(t, history, n)
	})

	t.Run("closed store reports unavailable", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)
		require.NoError(t, s.Close())

		_, err := s.GetStats(ctx)
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		_, _, err = s.RecordRound(ctx, domain.ChoiceRock, domain.ChoiceRock, domain.ResultDraw)
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		_, err = s.Reset(ctx)
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
		assert.ErrorIs(t, s.Ping(ctx), domain.ErrStoreUnavailable)
	})
}

func assertCounters(t *testing.T, s domain.Stats, player, computer, draws, total int64) {
	t.Helper()
	assert.Equal(t, player, s.PlayerWins, "player_wins")
	assert.Equal(t, computer, s.ComputerWins, "computer_wins")
	assert.Equal(t, draws, s.Draws, "draws")
	assert.Equal(t, total, s.TotalGames, "total_games")
}

func mustResult(player, computer domain.Choice) domain.Result {
	if player == computer {
		return domain.ResultDraw
	}
	switch {
	case player == domain.ChoiceRock && computer == domain.ChoiceScissors,
		player == domain.ChoiceScissors && computer == domain.ChoicePaper,
		player == domain.ChoicePaper && computer == domain.ChoiceRock:
		return domain.ResultPlayer
	}
	return domain.ResultComputer
}
