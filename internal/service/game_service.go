package service

import (
	"context"
	"errors"

	"rps_webapp/internal/domain"
	"rps_webapp/internal/game"
	"rps_webapp/internal/logger"
	"rps_webapp/internal/repository"
)

// HistoryLimits bounds the size of a history page
type HistoryLimits struct {
	Default int
	Max     int
}

// GameService plays rounds against the computer and keeps the score.
type GameService struct {
	store   repository.StatsStore
	picker  game.Picker
	history HistoryLimits
}

// NewGameService creates a game service with a uniform random opponent
func NewGameService(store repository.StatsStore) *GameService {
	return NewGameServiceWithPicker(store, game.NewRandomPicker())
}

func NewGameServiceWithPicker(store repository.StatsStore, picker game.Picker) *GameService {
	return &GameService{
		store:   store,
		picker:  picker,
		history: HistoryLimits{Default: 50, Max: 500}, // defaults
	}
}

// SetHistoryLimits overrides the paging defaults; non-positive values are ignored.
func (s *GameService) SetHistoryLimits(limits HistoryLimits) {
	if limits.Max > 0 {
		s.history.Max = limits.Max
	}
	if limits.Default > 0 {
		s.history.Default = limits.Default
	}
	if s.history.Default > s.history.Max {
		s.history.Default = s.history.Max
	}
}

// PlayResult contains the outcome of one round and the updated score
type PlayResult struct {
	RoundID        string        `json:"round_id"`
	PlayerChoice   domain.Choice `json:"player_choice"`
	ComputerChoice domain.Choice `json:"computer_choice"`
	Result         domain.Result `json:"result"`
	Stats          domain.Stats  `json:"stats"`
}

// Play validates the player's hand, draws the computer's and records the round.
// Validation happens before anything is written.
func (s *GameService) Play(ctx context.Context, rawChoice string) (*PlayResult, error) {
	player, err := game.ParseChoice(rawChoice)
	if err != nil {
		logger.FromContext(ctx).Debug("rejected choice", "choice", rawChoice)
		return nil, err
	}

	computer := s.picker.Pick()
	result, err := game.DetermineWinner(player, computer)
	if err != nil {
		return nil, err
	}

	entry, stats, err := s.store.RecordRound(ctx, player, computer, result)
	if err != nil {
		s.storeFailed(ctx, "record_round", err)
		return nil, err
	}
	RoundsPlayed.WithLabelValues(string(result)).Inc()

	logger.FromContext(ctx).Info("round played",
		"round_id", entry.RoundID,
		"player", player,
		"computer", computer,
		"result", result,
		"total_games", stats.TotalGames,
	)

	return &PlayResult{
		RoundID:        entry.RoundID,
		PlayerChoice:   player,
		ComputerChoice: computer,
		Result:         result,
		Stats:          stats,
	}, nil
}

// CurrentStats returns the aggregate score
func (s *GameService) CurrentStats(ctx context.Context) (domain.Stats, error) {
	stats, err := s.store.GetStats(ctx)
	if err != nil {
		s.storeFailed(ctx, "get_stats", err)
		return domain.Stats{}, err
	}
	return stats, nil
}

// ResetAll zeroes the score and drops the history. Irreversible.
func (s *GameService) ResetAll(ctx context.Context) (domain.Stats, error) {
	stats, err := s.store.Reset(ctx)
	if err != nil {
		s.storeFailed(ctx, "reset", err)
		return domain.Stats{}, err
	}
	logger.FromContext(ctx).Warn("statistics reset")
	return stats, nil
}

// History returns the latest rounds, newest first. limit <= 0 means the default page size.
func (s *GameService) History(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = s.history.Default
	}
	if limit > s.history.Max {
		limit = s.history.Max
	}

	entries, err := s.store.ListHistory(ctx, limit)
	if err != nil {
		s.storeFailed(ctx, "list_history", err)
		return nil, err
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return entries, nil
}

// Readiness reports the store's reachability and schema version.
func (s *GameService) Readiness(ctx context.Context) (int, error) {
	if err := s.store.Ping(ctx); err != nil {
		return 0, err
	}
	return s.store.SchemaVersion(ctx)
}

func (s *GameService) storeFailed(ctx context.Context, op string, err error) {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		StoreErrors.WithLabelValues(op).Inc()
	}
	logger.FromContext(ctx).Error("store operation failed", "op", op, "error", err)
}
