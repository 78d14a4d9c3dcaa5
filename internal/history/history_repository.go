package history

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"

	"benchcoach/internal/domain"
)

const createHistoryTables = `
CREATE TABLE IF NOT EXISTS factor_history (
    player_id   TEXT             NOT NULL,
    player_name TEXT             NOT NULL,
    game_date   DATE             NOT NULL,
    factor      TEXT             NOT NULL,
    score       DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (player_id, game_date, factor)
);

CREATE INDEX IF NOT EXISTS idx_factor_history_game_date
    ON factor_history (game_date DESC);

CREATE TABLE IF NOT EXISTS game_outcomes (
    player_id      TEXT             NOT NULL,
    game_date      DATE             NOT NULL,
    fantasy_points DOUBLE PRECISION NOT NULL,
    PRIMARY KEY (player_id, game_date)
);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository persists per-player factor-score vectors and the realized
// fantasy points that later label them for calibration and training.
type Repository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewRepository(pool PgxPool, tracer trace.Tracer) *Repository {
	return &Repository{pool: pool, tracer: tracer}
}

func (r *Repository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "history-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createHistoryTables)
	return err
}

// UpsertScores stores one history row per player-game, fanned out to a row
// per factor so partial vectors from degraded runs still land.
func (r *Repository) UpsertScores(ctx context.Context, rows []domain.HistoryRow) error {
	if len(rows) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "history-repo.upsert-scores")
	defer span.End()

	batch := &pgx.Batch{}
	queued := 0
	for _, row := range rows {
		for factor, score := range row.Scores {
			batch.Queue(
				`INSERT INTO factor_history (player_id, player_name, game_date, factor, score)
				 VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (player_id, game_date, factor) DO UPDATE SET
				     player_name = EXCLUDED.player_name,
				     score = EXCLUDED.score`,
				row.PlayerID, row.PlayerName, row.GameDate, factor, score,
			)
			queued++
		}
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < queued; i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertOutcomes records realized fantasy points for finished games.
func (r *Repository) UpsertOutcomes(ctx context.Context, logs []domain.GameLog) error {
	if len(logs) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "history-repo.upsert-outcomes")
	defer span.End()

	batch := &pgx.Batch{}
	for _, g := range logs {
		batch.Queue(
			`INSERT INTO game_outcomes (player_id, game_date, fantasy_points)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (player_id, game_date) DO UPDATE SET
			     fantasy_points = EXCLUDED.fantasy_points`,
			g.PlayerID, g.GameDate, g.FantasyPoints(),
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range logs {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// ListLabeled returns the rows in [from, to] whose outcomes have resolved,
// ordered by game date so downstream splits stay chronological.
func (r *Repository) ListLabeled(ctx context.Context, from, to time.Time) ([]domain.HistoryRow, error) {
	_, span := r.tracer.Start(ctx, "history-repo.list-labeled")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT h.player_id, h.player_name, h.game_date, h.factor, h.score, o.fantasy_points
		 FROM factor_history h
		 JOIN game_outcomes o ON o.player_id = h.player_id AND o.game_date = h.game_date
		 WHERE h.game_date >= $1 AND h.game_date <= $2
		 ORDER BY h.game_date ASC, h.player_id ASC`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRows(rows)
}

// ListLabeledForPlayer is ListLabeled scoped to one player.
func (r *Repository) ListLabeledForPlayer(ctx context.Context, playerID string, from, to time.Time) ([]domain.HistoryRow, error) {
	_, span := r.tracer.Start(ctx, "history-repo.list-labeled-for-player")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT h.player_id, h.player_name, h.game_date, h.factor, h.score, o.fantasy_points
		 FROM factor_history h
		 JOIN game_outcomes o ON o.player_id = h.player_id AND o.game_date = h.game_date
		 WHERE h.player_id = $1 AND h.game_date >= $2 AND h.game_date <= $3
		 ORDER BY h.game_date ASC`,
		playerID, from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRows(rows)
}

// ListUnresolvedDates returns game dates that have scores but no outcomes
// yet, so the resolver knows which box scores to go looking for.
func (r *Repository) ListUnresolvedDates(ctx context.Context, before time.Time) ([]time.Time, error) {
	_, span := r.tracer.Start(ctx, "history-repo.list-unresolved-dates")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT h.game_date
		 FROM factor_history h
		 WHERE h.game_date < $1
		   AND NOT EXISTS (
		       SELECT 1 FROM game_outcomes o
		       WHERE o.player_id = h.player_id AND o.game_date = h.game_date
		   )
		 ORDER BY h.game_date ASC`,
		before,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// collectRows folds the factor-per-row result set back into one HistoryRow
// per player-game. The query orders by date then player, so rows for the
// same key are contiguous.
func collectRows(rows pgx.Rows) ([]domain.HistoryRow, error) {
	var out []domain.HistoryRow
	var cur *domain.HistoryRow
	for rows.Next() {
		var (
			playerID, playerName, factor string
			gameDate                     time.Time
			score, points                float64
		)
		if err := rows.Scan(&playerID, &playerName, &gameDate, &factor, &score, &points); err != nil {
			return nil, err
		}
		if cur == nil || cur.PlayerID != playerID || !cur.GameDate.Equal(gameDate) {
			pts := points
			out = append(out, domain.HistoryRow{
				PlayerID:      playerID,
				PlayerName:    playerName,
				GameDate:      gameDate,
				Scores:        make(map[string]float64),
				FantasyPoints: &pts,
			})
			cur = &out[len(out)-1]
		}
		cur.Scores[factor] = score
	}
	return out, rows.Err()
}
