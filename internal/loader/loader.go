package loader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Importer loads CSV exports into the transfer-market schema. Rows are
// committed in batches; tables with explicit primary keys recover from
// id collisions by allocating above the current maximum and retrying.
type Importer struct {
	pool *pgxpool.Pool
	log  *slog.Logger

	// Batch is the number of inserted rows per commit.
	Batch int
}

func New(pool *pgxpool.Pool, logger *slog.Logger) *Importer {
	return &Importer{pool: pool, log: logger, Batch: 100}
}

// Files holds the CSV paths for a full load.
type Files struct {
	Clubs        string
	Competitions string
	Players      string
	Games        string
	Transfers    string
}

// ImportAll loads every table in FK-safe order:
// clubs -> competitions -> players -> games -> transfers.
func (im *Importer) ImportAll(ctx context.Context, files Files) ([]*Result, error) {
	var results []*Result
	steps := []struct {
		path string
		fn   func(context.Context, string) (*Result, error)
	}{
		{files.Clubs, im.ImportClubs},
		{files.Competitions, im.ImportCompetitions},
		{files.Players, im.ImportPlayers},
		{files.Games, im.ImportGames},
		{files.Transfers, im.ImportTransfers},
	}
	for _, step := range steps {
		res, err := step.fn(ctx, step.path)
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// ImportClubs loads clubs.csv. club_id and name are required.
func (im *Importer) ImportClubs(ctx context.Context, path string) (*Result, error) {
	return im.runImport(ctx, "clubs", path, func(ctx context.Context, tx pgx.Tx, h header, fields []string, res *Result) {
		clubID := parseInt(h.get(fields, "club_id"))
		name := parseStr(h.get(fields, "name"), 255)
		if clubID == nil || name == nil {
			res.Skipped++
			return
		}
		rows, err := execRow(ctx, tx, `
			INSERT INTO clubs (
				club_id, club_code, name, domestic_competition_id, squad_size,
				average_age, stadium_name, stadium_seats, url
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			ON CONFLICT (club_id) DO NOTHING`,
			*clubID,
			parseStr(h.get(fields, "club_code"), 100),
			*name,
			parseStr(h.get(fields, "domestic_competition_id"), 10),
			orZero(parseInt(h.get(fields, "squad_size"))),
			parseFloat(h.get(fields, "average_age")),
			parseStr(h.get(fields, "stadium_name"), 255),
			parseInt(h.get(fields, "stadium_seats")),
			parseStr(h.get(fields, "url"), 500),
		)
		if err != nil {
			res.AddErrorf("club %d: %v", *clubID, err)
			return
		}
		if rows == 0 {
			res.Skipped++
		} else {
			res.Inserted++
		}
	})
}

// ImportCompetitions loads competitions.csv. competition_id is required.
func (im *Importer) ImportCompetitions(ctx context.Context, path string) (*Result, error) {
	return im.runImport(ctx, "competitions", path, func(ctx context.Context, tx pgx.Tx, h header, fields []string, res *Result) {
		compID := parseStr(h.get(fields, "competition_id"), 10)
		if compID == nil {
			res.Skipped++
			return
		}
		rows, err := execRow(ctx, tx, `
			INSERT INTO competitions (
				competition_id, competition_name, competition_sub_type,
				competition_type, country_name
			) VALUES ($1,$2,$3,$4,$5)
			ON CONFLICT (competition_id) DO NOTHING`,
			*compID,
			parseStr(h.get(fields, "name"), 50),
			parseStr(h.get(fields, "sub_type"), 50),
			parseStr(h.get(fields, "type"), 50),
			parseStr(h.get(fields, "country_name"), 50),
		)
		if err != nil {
			res.AddErrorf("competition %s: %v", *compID, err)
			return
		}
		if rows == 0 {
			res.Skipped++
		} else {
			res.Inserted++
		}
	})
}

// ImportPlayers loads players.csv. Rows without a name are skipped. CSV
// player ids are kept when fresh; missing, repeated, or colliding ids
// are reassigned above the table's current maximum.
func (im *Importer) ImportPlayers(ctx context.Context, path string) (*Result, error) {
	alloc, err := im.newAllocator(ctx, "players", "player_id")
	if err != nil {
		return nil, err
	}

	res, err := im.runImport(ctx, "players", path, func(ctx context.Context, tx pgx.Tx, h header, fields []string, res *Result) {
		name := parseStr(h.get(fields, "name"), 100)
		if name == nil {
			res.Skipped++
			return
		}

		// Transfermarkt exports carry market_value_in_eur; ours carry
		// market_value. Accept either.
		marketValue := parseFloat(h.get(fields, "market_value"))
		if marketValue == nil {
			marketValue = parseFloat(h.get(fields, "market_value_in_eur"))
		}

		id := alloc.claim(parseInt(h.get(fields, "player_id")))
		rest := []any{
			*name,
			parseInt(h.get(fields, "current_club_id")),
			parseInt(h.get(fields, "last_season")),
			parseStr(h.get(fields, "country_of_citizenship"), 50),
			parseDate(h.get(fields, "date_of_birth")),
			parseStr(h.get(fields, "position"), 50),
			parseStr(h.get(fields, "sub_position"), 50),
			parseStr(h.get(fields, "foot"), 10),
			marketValue,
			parseStr(h.get(fields, "image_url"), 500),
		}
		im.insertWithRetry(ctx, tx, alloc, res, *name, `
			INSERT INTO players (
				player_id, name, current_club_id, last_season,
				country_of_citizenship, date_of_birth, position, sub_position,
				foot, market_value, image_url
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (player_id) DO NOTHING`,
			id, rest)
	})
	if err != nil {
		return res, err
	}
	return res, im.bumpSequence(ctx, "players", "player_id", alloc.max)
}

// ImportGames loads games.csv. A game_id column is optional: with it,
// ids go through collision recovery; without it, the sequence assigns.
func (im *Importer) ImportGames(ctx context.Context, path string) (*Result, error) {
	hasID, err := csvHasColumn(path, "game_id")
	if err != nil {
		return nil, err
	}

	var alloc *idAllocator
	if hasID {
		alloc, err = im.newAllocator(ctx, "games", "game_id")
		if err != nil {
			return nil, err
		}
	}

	res, err := im.runImport(ctx, "games", path, func(ctx context.Context, tx pgx.Tx, h header, fields []string, res *Result) {
		rest := []any{
			parseInt(h.get(fields, "home_club_id")),
			parseInt(h.get(fields, "away_club_id")),
			parseInt(h.get(fields, "season")),
			parseDate(h.get(fields, "date")),
			parseInt(h.get(fields, "home_club_goals")),
			parseInt(h.get(fields, "away_club_goals")),
			parseStr(h.get(fields, "stadium"), 100),
			parseInt(h.get(fields, "attendance")),
			parseStr(h.get(fields, "competition_id"), 10),
		}

		if !hasID {
			rows, err := execRow(ctx, tx, `
				INSERT INTO games (
					home_club_id, away_club_id, season, date, home_club_goals,
					away_club_goals, stadium, attendance, competition_id
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
				rest...)
			if err != nil {
				res.AddErrorf("game row: %v", err)
				return
			}
			res.Inserted += int(rows)
			return
		}

		id := alloc.claim(parseInt(h.get(fields, "game_id")))
		im.insertWithRetry(ctx, tx, alloc, res, fmt.Sprintf("game %d", id), `
			INSERT INTO games (
				game_id, home_club_id, away_club_id, season, date,
				home_club_goals, away_club_goals, stadium, attendance, competition_id
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			ON CONFLICT (game_id) DO NOTHING`,
			id, rest)
	})
	if err != nil || !hasID {
		return res, err
	}
	return res, im.bumpSequence(ctx, "games", "game_id", alloc.max)
}

// ImportTransfers loads transfers.csv. transfer_season and player_name
// are NOT NULL in the schema, so rows missing either are skipped.
func (im *Importer) ImportTransfers(ctx context.Context, path string) (*Result, error) {
	hasID, err := csvHasColumn(path, "transfer_id")
	if err != nil {
		return nil, err
	}

	var alloc *idAllocator
	if hasID {
		alloc, err = im.newAllocator(ctx, "transfers", "transfer_id")
		if err != nil {
			return nil, err
		}
	}

	res, err := im.runImport(ctx, "transfers", path, func(ctx context.Context, tx pgx.Tx, h header, fields []string, res *Result) {
		season := parseStr(h.get(fields, "transfer_season"), 50)
		playerName := parseStr(h.get(fields, "player_name"), 100)
		if season == nil || playerName == nil {
			res.Skipped++
			return
		}

		rest := []any{
			parseInt(h.get(fields, "player_id")),
			parseDate(h.get(fields, "transfer_date")),
			*season,
			parseInt(h.get(fields, "from_club_id")),
			parseInt(h.get(fields, "to_club_id")),
			parseStr(h.get(fields, "from_club_name"), 100),
			parseStr(h.get(fields, "to_club_name"), 100),
			parseFloat(h.get(fields, "transfer_fee")),
			parseFloat(h.get(fields, "market_value_in_eur")),
			*playerName,
		}

		if !hasID {
			rows, err := execRow(ctx, tx, `
				INSERT INTO transfers (
					player_id, transfer_date, transfer_season, from_club_id,
					to_club_id, from_club_name, to_club_name, transfer_fee,
					market_value_in_eur, player_name
				) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
				rest...)
			if err != nil {
				res.AddErrorf("transfer for %s: %v", *playerName, err)
				return
			}
			res.Inserted += int(rows)
			return
		}

		id := alloc.claim(parseInt(h.get(fields, "transfer_id")))
		im.insertWithRetry(ctx, tx, alloc, res, fmt.Sprintf("transfer %d", id), `
			INSERT INTO transfers (
				transfer_id, player_id, transfer_date, transfer_season,
				from_club_id, to_club_id, from_club_name, to_club_name,
				transfer_fee, market_value_in_eur, player_name
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (transfer_id) DO NOTHING`,
			id, rest)
	})
	if err != nil || !hasID {
		return res, err
	}
	return res, im.bumpSequence(ctx, "transfers", "transfer_id", alloc.max)
}

// --------------------------------------------------------------------------
// Shared plumbing
// --------------------------------------------------------------------------

type rowFunc func(ctx context.Context, tx pgx.Tx, h header, fields []string, res *Result)

// runImport streams the CSV through fn inside batched transactions,
// committing every Batch inserted rows.
func (im *Importer) runImport(ctx context.Context, table, path string, fn rowFunc) (*Result, error) {
	res := &Result{Table: table}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	cols, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read %s header: %w", path, err)
	}
	h := newHeader(cols)

	tx, err := im.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lastCommit := 0
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.AddErrorf("read row: %v", err)
			continue
		}

		fn(ctx, tx, h, fields, res)

		if res.Inserted-lastCommit >= im.Batch {
			if err := tx.Commit(ctx); err != nil {
				return res, fmt.Errorf("commit batch: %w", err)
			}
			lastCommit = res.Inserted
			im.log.Info("import progress", "table", table, "inserted", res.Inserted)
			tx, err = im.pool.Begin(ctx)
			if err != nil {
				return res, fmt.Errorf("begin import transaction: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("commit: %w", err)
	}
	im.log.Info("import finished", "summary", res.Summary())
	return res, nil
}

// execRow runs one insert under a savepoint so a bad row (usually an FK
// violation) does not poison the surrounding batch transaction.
func execRow(ctx context.Context, tx pgx.Tx, sql string, args ...any) (int64, error) {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := sp.Exec(ctx, sql, args...)
	if err != nil {
		_ = sp.Rollback(ctx)
		return 0, err
	}
	if err := sp.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// insertWithRetry inserts a row carrying an explicit id. A duplicate id
// already present in the database surfaces as zero affected rows; the
// row is retried once under a freshly allocated id.
func (im *Importer) insertWithRetry(ctx context.Context, tx pgx.Tx, alloc *idAllocator, res *Result, label, sql string, id int64, rest []any) {
	args := append([]any{id}, rest...)
	rows, err := execRow(ctx, tx, sql, args...)
	if err != nil {
		res.AddErrorf("%s: %v", label, err)
		return
	}
	if rows > 0 {
		res.Inserted++
		return
	}

	fresh := alloc.next()
	im.log.Info("id collision, reassigning", "row", label, "new_id", fresh)
	args[0] = fresh
	rows, err = execRow(ctx, tx, sql, args...)
	if err != nil || rows == 0 {
		res.AddErrorf("%s: retry with id %d failed: %v", label, fresh, err)
		return
	}
	res.Inserted++
}

func (im *Importer) newAllocator(ctx context.Context, table, idCol string) (*idAllocator, error) {
	var max int64
	sql := fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) FROM %s", idCol, table)
	if err := im.pool.QueryRow(ctx, sql).Scan(&max); err != nil {
		return nil, fmt.Errorf("read max %s: %w", idCol, err)
	}
	im.log.Info("current max id", "table", table, "max", max)
	return newIDAllocator(max), nil
}

// bumpSequence aligns the table's id sequence past the highest explicit
// id so subsequent inserts through the API do not collide.
func (im *Importer) bumpSequence(ctx context.Context, table, idCol string, max int64) error {
	if max <= 0 {
		return nil
	}
	_, err := im.pool.Exec(ctx,
		"SELECT setval(pg_get_serial_sequence($1, $2), $3)", table, idCol, max)
	if err != nil {
		return fmt.Errorf("bump %s sequence: %w", table, err)
	}
	return nil
}

// csvHasColumn reports whether the CSV header contains the column.
func csvHasColumn(path, col string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	cols, err := csv.NewReader(f).Read()
	if err != nil {
		return false, fmt.Errorf("read %s header: %w", path, err)
	}
	return newHeader(cols).has(col), nil
}

func orZero(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}
