package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rps_webapp/internal/db"
	"rps_webapp/internal/domain"
	"rps_webapp/internal/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

// PostgresStatsRepository keeps stats and history in Postgres. The
// aggregate row is locked with FOR UPDATE for the length of each write.
type PostgresStatsRepository struct {
	pool  *pgxpool.Pool
	sqlDB *sql.DB // migrations only
	now   func() time.Time
}

func NewPostgresStatsRepository(pool *pgxpool.Pool) *PostgresStatsRepository {
	return &PostgresStatsRepository{
		pool:  pool,
		sqlDB: stdlib.OpenDBFromPool(pool),
		now:   time.Now,
	}
}

func OpenPostgresStatsRepository(ctx context.Context, dsn string) (*PostgresStatsRepository, error) {
	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		return nil, unavailable("open", err)
	}
	return NewPostgresStatsRepository(pool), nil
}

func (r *PostgresStatsRepository) Initialize(ctx context.Context) error {
	ms, err := db.LoadMigrations(migrations.FS, string(db.DialectPostgres))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMigrationFailed, err)
	}
	if _, err := db.Migrate(ctx, r.sqlDB, db.DialectPostgres, ms); err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO game_stats (id, player_wins, computer_wins, draws, total_games, last_updated)
		 VALUES ($1, 0, 0, 0, 0, $2)
		 ON CONFLICT (id) DO NOTHING`,
		statsID, r.now().UTC(),
	)
	if err != nil {
		return unavailable("initialize", err)
	}
	// keep BIGSERIAL ahead of the fixed id
	_, err = r.pool.Exec(ctx,
		`SELECT setval(pg_get_serial_sequence('game_stats', 'id'), GREATEST((SELECT MAX(id) FROM game_stats), 1))`)
	if err != nil {
		return unavailable("initialize", err)
	}
	return nil
}

func (r *PostgresStatsRepository) GetStats(ctx context.Context) (domain.Stats, error) {
	s, err := r.readStats(ctx, r.pool, false)
	if err != nil {
		return domain.Stats{}, unavailable("get stats", err)
	}
	if err := checkConsistent("get stats", s); err != nil {
		return domain.Stats{}, err
	}
	return s, nil
}

func (r *PostgresStatsRepository) RecordRound(ctx context.Context, player, computer domain.Choice, result domain.Result) (domain.HistoryEntry, domain.Stats, error) {
	column, err := validateRound(player, computer, result)
	if err != nil {
		return domain.HistoryEntry{}, domain.Stats{}, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.HistoryEntry{}, domain.Stats{}, unavailable("record round", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Lock the aggregate so concurrent rounds queue up here
	if _, err := r.readStats(ctx, tx, true); err != nil {
		return domain.HistoryEntry{}, domain.Stats{}, unavailable("record round", err)
	}

	now := r.now().UTC()
	var stats domain.Stats
	err = tx.QueryRow(ctx,
		`UPDATE game_stats
		 SET `+column+` = `+column+` + 1,
		     total_games = total_games + 1,
		     last_updated = $1
		 WHERE id = $2
		 RETURNING player_wins, computer_wins, draws, total_games, last_updated`,
		now, statsID,
	).Scan(&stats.PlayerWins, &stats.ComputerWins, &stats.Draws, &stats.TotalGames, &stats.UpdatedAt)
	if err != nil {
		return domain.HistoryEntry{}, domain.Stats{}, unavailable("record round", err)
	}
	if err := checkConsistent("record round", stats); err != nil {
		return domain.HistoryEntry{}, domain.Stats{}, err
	}

	entry := domain.HistoryEntry{
		RoundID:        newRoundID(),
		PlayerChoice:   player,
		ComputerChoice: computer,
		Result:         result,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO game_history (round_id, player_choice, computer_choice, result, timestamp)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, timestamp`,
		entry.RoundID, string(player), string(computer), string(result), now,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return domain.HistoryEntry{}, domain.Stats{}, unavailable("record round", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.HistoryEntry{}, domain.Stats{}, unavailable("record round", err)
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	stats.UpdatedAt = stats.UpdatedAt.UTC()
	return entry, stats, nil
}

func (r *PostgresStatsRepository) Reset(ctx context.Context) (domain.Stats, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Stats{}, unavailable("reset", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := r.now().UTC()
	tag, err := tx.Exec(ctx,
		`UPDATE game_stats
		 SET player_wins = 0, computer_wins = 0, draws = 0, total_games = 0, last_updated = $1
		 WHERE id = $2`,
		now, statsID,
	)
	if err != nil {
		return domain.Stats{}, unavailable("reset", err)
	}
	if tag.RowsAffected() != 1 {
		return domain.Stats{}, unavailable("reset", errors.New("stats row missing"))
	}
	if _, err := tx.Exec(ctx, `DELETE FROM game_history`); err != nil {
		return domain.Stats{}, unavailable("reset", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Stats{}, unavailable("reset", err)
	}
	return domain.Stats{UpdatedAt: now}, nil
}

func (r *PostgresStatsRepository) ListHistory(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, COALESCE(round_id, ''), player_choice, computer_choice, result, timestamp
		 FROM game_history
		 ORDER BY id DESC
		 LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, unavailable("list history", err)
	}
	defer rows.Close()

	var result []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.ID, &e.RoundID, &e.PlayerChoice, &e.ComputerChoice, &e.Result, &e.CreatedAt); err != nil {
			return nil, unavailable("list history", err)
		}
		e.CreatedAt = e.CreatedAt.UTC()
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list history", err)
	}
	return result, nil
}

func (r *PostgresStatsRepository) SchemaVersion(ctx context.Context) (int, error) {
	v, err := db.CurrentVersion(ctx, r.sqlDB)
	if err != nil {
		return 0, unavailable("schema version", err)
	}
	return v, nil
}

func (r *PostgresStatsRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (r *PostgresStatsRepository) Close() error {
	if r == nil || r.pool == nil {
		return nil
	}
	err := r.sqlDB.Close()
	r.pool.Close()
	return err
}

func (r *PostgresStatsRepository) readStats(ctx context.Context, q interface {
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}, forUpdate bool) (domain.Stats, error) {
	query := `SELECT player_wins, computer_wins, draws, total_games, last_updated
		 FROM game_stats
		 WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var (
		s         domain.Stats
		updatedAt *time.Time
	)
	err := q.QueryRow(ctx, query, statsID).
		Scan(&s.PlayerWins, &s.ComputerWins, &s.Draws, &s.TotalGames, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Stats{}, errors.New("stats row missing, store not initialized")
	}
	if err != nil {
		return domain.Stats{}, err
	}
	if updatedAt != nil {
		s.UpdatedAt = updatedAt.UTC()
	}
	return s, nil
}
