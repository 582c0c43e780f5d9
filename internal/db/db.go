// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kicktrack/transferdata/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all fixed statements used by the API
// handlers and the transfer resolution core. Listing queries with dynamic
// filters are built per request and are not registered here.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Entity resolution: exact match wins over any number of partials
		"player_exact":    "SELECT player_id, name, COALESCE(market_value, 0) FROM players WHERE name = $1 LIMIT 1",
		"club_exact":      "SELECT club_id, name, 0::double precision FROM clubs WHERE name = $1 LIMIT 1",
		"player_partials": "SELECT COUNT(*) FROM players WHERE name ILIKE $1",
		"club_partials":   "SELECT COUNT(*) FROM clubs WHERE name ILIKE $1",
		"player_partial":  "SELECT player_id, name, COALESCE(market_value, 0) FROM players WHERE name ILIKE $1 LIMIT 1",
		"club_partial":    "SELECT club_id, name, 0::double precision FROM clubs WHERE name ILIKE $1 LIMIT 1",
		"player_examples": "SELECT name FROM players WHERE name ILIKE $1 ORDER BY name ASC LIMIT 3",
		"club_examples":   "SELECT name FROM clubs WHERE name ILIKE $1 ORDER BY name ASC LIMIT 3",
		"player_by_pk":    "SELECT player_id, name, COALESCE(market_value, 0) FROM players WHERE player_id = $1",
		"club_by_pk":      "SELECT club_id, name, 0::double precision FROM clubs WHERE club_id = $1",

		// Transfer write pipeline
		"insert_transfer": `INSERT INTO transfers (
				player_id, from_club_id, to_club_id, transfer_date, transfer_season,
				transfer_fee, market_value_in_eur, player_name, from_club_name, to_club_name
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING transfer_id`,
		"update_transfer": `UPDATE transfers SET
				from_club_id = $1, to_club_id = $2,
				transfer_date = $3, transfer_season = $4, transfer_fee = $5,
				from_club_name = $6, to_club_name = $7
			WHERE transfer_id = $8`,
		"transfer_player_id": "SELECT player_id FROM transfers WHERE transfer_id = $1",
		"sync_player_club":   "UPDATE players SET current_club_id = $1 WHERE player_id = $2",

		// Dropdowns
		"players_dropdown":  "SELECT player_id, name FROM players ORDER BY name",
		"clubs_dropdown":    "SELECT club_id, name FROM clubs ORDER BY name",
		"competitions_list": "SELECT competition_id, competition_name, country_name FROM competitions ORDER BY country_name ASC, competition_name ASC",

		// Autocomplete: prefix matches sort before substring matches
		"player_autocomplete": `SELECT name FROM players WHERE name ILIKE $1
			ORDER BY CASE WHEN name ILIKE $2 THEN 0 ELSE 1 END, name ASC LIMIT 10`,

		// Single-row fetches
		"transfer_by_id":   "SELECT transfer_id, player_id, from_club_id, to_club_id, player_name, from_club_name, to_club_name, transfer_date, transfer_season, transfer_fee, market_value_in_eur FROM transfers WHERE transfer_id = $1",
		"game_by_id":       "SELECT game_id, home_club_id, away_club_id, season, date, home_club_goals, away_club_goals, stadium, attendance, competition_id FROM games WHERE game_id = $1",
		"player_image_url": "SELECT image_url FROM players WHERE player_id = $1",

		// Deletes
		"delete_transfer": "DELETE FROM transfers WHERE transfer_id = $1",
		"delete_player":   "DELETE FROM players WHERE player_id = $1",
		"delete_club":     "DELETE FROM clubs WHERE club_id = $1",
		"delete_game":     "DELETE FROM games WHERE game_id = $1",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
