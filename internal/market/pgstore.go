package market

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx satisfied by both *pgxpool.Pool and
// pgx.Tx. Statement names refer to the prepared statements registered
// in internal/db.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// stmtName maps a table to its prepared-statement family. The enum is
// the only path from caller input to table identity.
func (t Table) stmtName(suffix string) string {
	switch t {
	case TablePlayers:
		return "player_" + suffix
	default:
		return "club_" + suffix
	}
}

type pgStore struct {
	q Querier
}

func (s *pgStore) EntityByName(ctx context.Context, table Table, name string) (*Entity, error) {
	var e Entity
	err := s.q.QueryRow(ctx, table.stmtName("exact"), name).Scan(&e.ID, &e.Name, &e.MarketValue)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("exact lookup in %s: %w", table, err)
	}
	return &e, nil
}

func (s *pgStore) CountMatches(ctx context.Context, table Table, fragment string) (int, error) {
	var n int
	err := s.q.QueryRow(ctx, table.stmtName("partials"), contains(fragment)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count matches in %s: %w", table, err)
	}
	return n, nil
}

func (s *pgStore) MatchOne(ctx context.Context, table Table, fragment string) (*Entity, error) {
	var e Entity
	err := s.q.QueryRow(ctx, table.stmtName("partial"), contains(fragment)).Scan(&e.ID, &e.Name, &e.MarketValue)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("partial lookup in %s: %w", table, err)
	}
	return &e, nil
}

func (s *pgStore) MatchExamples(ctx context.Context, table Table, fragment string) ([]string, error) {
	rows, err := s.q.Query(ctx, table.stmtName("examples"), contains(fragment))
	if err != nil {
		return nil, fmt.Errorf("example lookup in %s: %w", table, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *pgStore) EntityByID(ctx context.Context, table Table, id int64) (*Entity, error) {
	var e Entity
	err := s.q.QueryRow(ctx, table.stmtName("by_pk"), id).Scan(&e.ID, &e.Name, &e.MarketValue)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("id lookup in %s: %w", table, err)
	}
	return &e, nil
}

func (s *pgStore) InsertTransfer(ctx context.Context, rec TransferRecord) (int64, error) {
	var id int64
	err := s.q.QueryRow(ctx, "insert_transfer",
		rec.PlayerID, rec.FromClubID, rec.ToClubID,
		rec.Date, nilEmpty(rec.Season), rec.Fee, rec.MarketValue,
		rec.PlayerName, rec.FromClub, rec.ToClub,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transfer: %w", err)
	}
	return id, nil
}

func (s *pgStore) UpdateTransfer(ctx context.Context, transferID int64, upd TransferUpdate) error {
	tag, err := s.q.Exec(ctx, "update_transfer",
		upd.FromClubID, upd.ToClubID,
		upd.Date, nilEmpty(upd.Season), upd.Fee,
		nilEmpty(upd.FromClub), nilEmpty(upd.ToClub),
		transferID,
	)
	if err != nil {
		return fmt.Errorf("update transfer %d: %w", transferID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTransferNotFound
	}
	return nil
}

func (s *pgStore) TransferPlayerID(ctx context.Context, transferID int64) (*int64, error) {
	var playerID *int64
	err := s.q.QueryRow(ctx, "transfer_player_id", transferID).Scan(&playerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read transfer %d player: %w", transferID, err)
	}
	return playerID, nil
}

func (s *pgStore) SetPlayerCurrentClub(ctx context.Context, playerID, clubID int64) error {
	if _, err := s.q.Exec(ctx, "sync_player_club", clubID, playerID); err != nil {
		return fmt.Errorf("sync player %d current club: %w", playerID, err)
	}
	return nil
}

// PGDB runs unit-of-work functions inside pgx transactions.
type PGDB struct {
	pool *pgxpool.Pool
}

func NewPGDB(pool *pgxpool.Pool) *PGDB {
	return &PGDB{pool: pool}
}

// WithTx begins a transaction, hands fn a Store bound to it, and commits
// on success. Any error, including resolution and validation failures,
// rolls back every statement since the transaction began.
func (db *PGDB) WithTx(ctx context.Context, fn func(Store) error) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgStore{q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func contains(fragment string) string {
	return "%" + fragment + "%"
}

func nilEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
