package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"rps_webapp/internal/db"
	"rps_webapp/internal/domain"
	"rps_webapp/internal/migrations"
)

// sqliteTimeLayout matches what CURRENT_TIMESTAMP and older writers produce.
const sqliteTimeLayout = "2006-01-02 15:04:05.999999"

var sqliteTimeLayouts = []string{
	sqliteTimeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
}

// SQLiteStatsRepository keeps stats and history in one SQLite file.
type SQLiteStatsRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStatsRepository(sqlDB *sql.DB) *SQLiteStatsRepository {
	return &SQLiteStatsRepository{db: sqlDB, now: time.Now}
}

// OpenSQLiteStatsRepository opens the file at path; call Initialize before use.
func OpenSQLiteStatsRepository(ctx context.Context, path string) (*SQLiteStatsRepository, error) {
	sqlDB, err := db.OpenSQLite(ctx, path)
	if err != nil {
		return nil, unavailable("open", err)
	}
	return NewSQLiteStatsRepository(sqlDB), nil
}

func (r *SQLiteStatsRepository) Initialize(ctx context.Context) error {
	ms, err := db.LoadMigrations(migrations.FS, string(db.DialectSQLite))
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrMigrationFailed, err)
	}
	if _, err := db.Migrate(ctx, r.db, db.DialectSQLite, ms); err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO game_stats (id, player_wins, computer_wins, draws, total_games, last_updated)
		 VALUES (?, 0, 0, 0, 0, ?)
		 ON CONFLICT (id) DO NOTHING`,
		statsID, r.timestamp(),
	)
	if err != nil {
		return unavailable("initialize", err)
	}
	return nil
}

func (r *SQLiteStatsRepository) GetStats(ctx context.Context) (domain.Stats, error) {
	s, err := r.readStats(ctx, r.db)
	if err != nil {
		return domain.Stats{}, unavailable("get stats", err)
	}
	if err := checkConsistent("get stats", s); err != nil {
		return domain.Stats{}, err
	}
	return s, nil
}

func (r *SQLiteStatsRepository) RecordRound(ctx context.Context, player, computer domain.Choice, result domain.Result) (domain.HistoryEntry, domain.Stats, error) {
	column, err := validateRound(player, computer, result)
	if err != nil {
		return domain.HistoryEntry{}, domain.Stats{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.HistoryEntry{}, domain.Stats{}, unavailable("record round", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := r.now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE game_stats
		 SET `+column+` = `+column+` + 1,
		     total_games = total_games + 1,
		     last_updated = ?
		 WHERE id = ?`,
		now.Format(sqliteTimeLayout), statsID,
	)
	if err != nil {
		return domain.HistoryEntry{}, domain.Stats{}, unavailable("record round", err)
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		return domain.HistoryEntry{}, domain.Stats{}, unavailable("record round", fmt.Errorf("stats row missing (affected=%d, err=%v)", n, err))
	}

	entry := domain.HistoryEntry{
		RoundID:        newRoundID(),
		PlayerChoice:   player,
		ComputerChoice: computer,
		Result:         result,
		CreatedAt:      now,
	}
	res, err = tx.ExecContext(ctx,
		`INSERT INTO game_history (round_id, player_choice, computer_choice, result, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.RoundID, string(player), string(computer), string(result), now.Format(sqliteTimeLayout),
	)
	if err != nil {
		return domain.HistoryEntry{}, domain.Stats{}, unavailable("record round", err)
	}
	if entry.ID, err = res.LastInsertId(); err != nil {
		return domain.HistoryEntry{}, domain.Stats{}, unavailable("record round", err)
	}

	stats, err := r.readStats(ctx, tx)
	if err != nil {
		return domain.HistoryEntry{}, domain.Stats{}, unavailable("record round", err)
	}
	if err := checkConsistent("record round", stats); err != nil {
		return domain.HistoryEntry{}, domain.Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.HistoryEntry{}, domain.Stats{}, unavailable("record round", err)
	}
	return entry, stats, nil
}

func (r *SQLiteStatsRepository) Reset(ctx context.Context) (domain.Stats, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Stats{}, unavailable("reset", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := r.now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE game_stats
		 SET player_wins = 0, computer_wins = 0, draws = 0, total_games = 0, last_updated = ?
		 WHERE id = ?`,
		now.Format(sqliteTimeLayout), statsID,
	)
	if err != nil {
		return domain.Stats{}, unavailable("reset", err)
	}
	if n, err := res.RowsAffected(); err != nil || n != 1 {
		return domain.Stats{}, unavailable("reset", fmt.Errorf("stats row missing (affected=%d, err=%v)", n, err))
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM game_history`); err != nil {
		return domain.Stats{}, unavailable("reset", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Stats{}, unavailable("reset", err)
	}
	return domain.Stats{UpdatedAt: now}, nil
}

func (r *SQLiteStatsRepository) ListHistory(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, COALESCE(round_id, ''), player_choice, computer_choice, result, timestamp
		 FROM game_history
		 ORDER BY id DESC
		 LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, unavailable("list history", err)
	}
	defer rows.Close()

	var result []domain.HistoryEntry
	for rows.Next() {
		var (
			e         domain.HistoryEntry
			player    sql.NullString
			computer  sql.NullString
			outcome   sql.NullString
			createdAt sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.RoundID, &player, &computer, &outcome, &createdAt); err != nil {
			return nil, unavailable("list history", err)
		}
		e.PlayerChoice = domain.Choice(player.String)
		e.ComputerChoice = domain.Choice(computer.String)
		e.Result = domain.Result(outcome.String)
		e.CreatedAt = parseSQLiteTime(createdAt)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list history", err)
	}
	return result, nil
}

func (r *SQLiteStatsRepository) SchemaVersion(ctx context.Context) (int, error) {
	v, err := db.CurrentVersion(ctx, r.db)
	if err != nil {
		return 0, unavailable("schema version", err)
	}
	return v, nil
}

func (r *SQLiteStatsRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (r *SQLiteStatsRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLiteStatsRepository) timestamp() string {
	return r.now().UTC().Format(sqliteTimeLayout)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLiteStatsRepository) readStats(ctx context.Context, q rowQuerier) (domain.Stats, error) {
	var (
		s         domain.Stats
		updatedAt sql.NullString
	)
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(player_wins, 0), COALESCE(computer_wins, 0), COALESCE(draws, 0),
		        COALESCE(total_games, 0), last_updated
		 FROM game_stats
		 WHERE id = ?`,
		statsID,
	).Scan(&s.PlayerWins, &s.ComputerWins, &s.Draws, &s.TotalGames, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Stats{}, errors.New("stats row missing, store not initialized")
	}
	if err != nil {
		return domain.Stats{}, err
	}
	s.UpdatedAt = parseSQLiteTime(updatedAt)
	return s, nil
}

func parseSQLiteTime(v sql.NullString) time.Time {
	if !v.Valid {
		return time.Time{}
	}
	raw := strings.TrimSpace(v.String)
	for _, layout := range sqliteTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
