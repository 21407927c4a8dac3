package repository

import (
	"context"
	"fmt"

	"rps_webapp/internal/domain"

	"github.com/google/uuid"
)

// StatsStore persists the singleton aggregate and the round history.
// Every failure it returns wraps domain.ErrStoreUnavailable, except for
// argument validation errors which are reported before any write.
type StatsStore interface {
	// Initialize runs pending migrations and creates the aggregate row when missing.
	Initialize(ctx context.Context) error
	GetStats(ctx context.Context) (domain.Stats, error)
	// RecordRound bumps one outcome counter and total_games and appends a
	// history entry in a single transaction. The returned stats are read
	// inside the same transaction.
	RecordRound(ctx context.Context, player, computer domain.Choice, result domain.Result) (domain.HistoryEntry, domain.Stats, error)
	Reset(ctx context.Context) (domain.Stats, error)
	// ListHistory returns up to limit entries, newest first.
	ListHistory(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	SchemaVersion(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

// statsID is the fixed key of the aggregate row.
const statsID = 1

// counterColumn maps a result to the counter it increments.
func counterColumn(result domain.Result) (string, error) {
	switch result {
	case domain.ResultPlayer:
		return "player_wins", nil
	case domain.ResultComputer:
		return "computer_wins", nil
	case domain.ResultDraw:
		return "draws", nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidResult, result)
}

func validateRound(player, computer domain.Choice, result domain.Result) (string, error) {
	if !player.Valid() {
		return "", fmt.Errorf("%w: player %q", domain.ErrInvalidChoice, player)
	}
	if !computer.Valid() {
		return "", fmt.Errorf("%w: computer %q", domain.ErrInvalidChoice, computer)
	}
	return counterColumn(result)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

func checkConsistent(op string, s domain.Stats) error {
	if !s.Consistent() {
		return fmt.Errorf("%s: %w: inconsistent aggregate %+v", op, domain.ErrStoreUnavailable, s)
	}
	return nil
}

func newRoundID() string {
	return uuid.NewString()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 1
	}
	return limit
}
