package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/kicktrack/transferdata/internal/api/respond"
)

type gameRow struct {
	GameID        int64   `json:"game_id"`
	HomeClubID    *int64  `json:"home_club_id"`
	AwayClubID    *int64  `json:"away_club_id"`
	HomeClubName  *string `json:"home_club_name"`
	AwayClubName  *string `json:"away_club_name"`
	Season        *int64  `json:"season"`
	Date          *string `json:"date"`
	HomeGoals     *int64  `json:"home_club_goals"`
	AwayGoals     *int64  `json:"away_club_goals"`
	Stadium       *string `json:"stadium"`
	Attendance    *int64  `json:"attendance"`
	CompetitionID *string `json:"competition_id"`
}

var gameSortColumns = map[string]string{
	"date":       "g.date",
	"season":     "g.season",
	"attendance": "g.attendance",
	"goals":      "COALESCE(g.home_club_goals, 0) + COALESCE(g.away_club_goals, 0)",
	"home_club":  "hc.name",
	"away_club":  "ac.name",
}

const gameSelect = `
	SELECT g.game_id, g.home_club_id, g.away_club_id, hc.name, ac.name,
	       g.season, g.date, g.home_club_goals, g.away_club_goals,
	       g.stadium, g.attendance, g.competition_id
	FROM games g
	LEFT JOIN clubs hc ON hc.club_id = g.home_club_id
	LEFT JOIN clubs ac ON ac.club_id = g.away_club_id`

func scanGame(row pgx.Row) (gameRow, error) {
	var g gameRow
	var date *time.Time
	err := row.Scan(&g.GameID, &g.HomeClubID, &g.AwayClubID, &g.HomeClubName,
		&g.AwayClubName, &g.Season, &date, &g.HomeGoals, &g.AwayGoals,
		&g.Stadium, &g.Attendance, &g.CompetitionID)
	if err == nil && date != nil {
		s := date.Format("2006-01-02")
		g.Date = &s
	}
	return g, err
}

// ListGames returns a filtered, sorted, paginated game list.
// @Summary List games
// @Tags games
// @Produce json
// @Param home query string false "Home club name substring"
// @Param away query string false "Away club name substring"
// @Param season query int false "Season"
// @Param competition query string false "Competition id"
// @Param date_from query string false "Earliest date (YYYY-MM-DD)"
// @Param date_to query string false "Latest date (YYYY-MM-DD)"
// @Param sort_by query string false "date|season|attendance|goals|home_club|away_club"
// @Param sort_dir query string false "asc|desc"
// @Param page query int false "Page number"
// @Param per_page query int false "Rows per page"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} respond.ErrorResponse
// @Router /games [get]
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r, h.cfg.GamesPerPage)
	q := r.URL.Query()

	var b whereBuilder
	if v := q.Get("home"); v != "" {
		b.add("hc.name ILIKE ?", contains(v))
	}
	if v := q.Get("away"); v != "" {
		b.add("ac.name ILIKE ?", contains(v))
	}
	if v, ok := queryInt(r, "season"); ok {
		b.add("g.season = ?", v)
	}
	if v := q.Get("competition"); v != "" {
		b.add("g.competition_id = ?", v)
	}
	if v := q.Get("date_from"); v != "" {
		b.add("g.date >= ?", v)
	}
	if v := q.Get("date_to"); v != "" {
		b.add("g.date <= ?", v)
	}

	joins := " FROM games g LEFT JOIN clubs hc ON hc.club_id = g.home_club_id LEFT JOIN clubs ac ON ac.club_id = g.away_club_id"

	var total int
	if err := h.pool.QueryRow(r.Context(), "SELECT COUNT(*)"+joins+b.clause(), b.args...).Scan(&total); err != nil {
		h.log.Error("count games", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	p.setTotal(total)

	sql := fmt.Sprintf("%s%s ORDER BY %s NULLS LAST LIMIT $%d OFFSET $%d",
		gameSelect, b.clause(), sortOrder(r, gameSortColumns, "date"), b.next(), b.next()+1)

	rows, err := h.pool.Query(r.Context(), sql, append(b.args, p.PerPage, p.offset())...)
	if err != nil {
		h.log.Error("list games", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	defer rows.Close()

	games := []gameRow{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
			return
		}
		games = append(games, g)
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"games":      games,
		"pagination": p,
	})
}

// GetGame returns one game with club names.
// @Summary Game detail
// @Tags games
// @Produce json
// @Param gameID path int true "Game ID"
// @Success 200 {object} gameRow
// @Failure 404 {object} respond.ErrorResponse
// @Router /games/{gameID} [get]
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "ID must be an integer")
		return
	}

	g, err := scanGame(h.pool.QueryRow(r.Context(), gameSelect+" WHERE g.game_id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Game not found")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, g)
}

type gameForm struct {
	HomeClubID    *int64  `json:"home_club_id"`
	AwayClubID    *int64  `json:"away_club_id"`
	Season        *int64  `json:"season"`
	Date          *string `json:"date"`
	HomeGoals     *int64  `json:"home_club_goals"`
	AwayGoals     *int64  `json:"away_club_goals"`
	Stadium       *string `json:"stadium"`
	Attendance    *int64  `json:"attendance"`
	CompetitionID *string `json:"competition_id"`
}

// CreateGame inserts a game; the id comes from the sequence.
// @Summary Create game
// @Tags games
// @Accept json
// @Produce json
// @Param game body gameForm true "Game fields"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /games [post]
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var form gameForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	if form.HomeClubID == nil || form.AwayClubID == nil {
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION", "home_club_id and away_club_id are required")
		return
	}

	var id int64
	err := h.pool.QueryRow(r.Context(), `
		INSERT INTO games (home_club_id, away_club_id, season, date,
			home_club_goals, away_club_goals, stadium, attendance, competition_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING game_id`,
		form.HomeClubID, form.AwayClubID, form.Season, form.Date, form.HomeGoals,
		form.AwayGoals, form.Stadium, form.Attendance, form.CompetitionID).Scan(&id)
	if err != nil {
		h.log.Error("create game", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}

	respond.WriteJSONObject(w, http.StatusCreated, map[string]interface{}{
		"game_id": id,
		"message": "Game added successfully!",
	})
}

// UpdateGame edits a game row.
// @Summary Update game
// @Tags games
// @Accept json
// @Produce json
// @Param gameID path int true "Game ID"
// @Param game body gameForm true "Game fields"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /games/{gameID} [put]
func (h *Handler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "ID must be an integer")
		return
	}

	var form gameForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}

	tag, err := h.pool.Exec(r.Context(), `
		UPDATE games SET home_club_id = $1, away_club_id = $2, season = $3,
			date = $4, home_club_goals = $5, away_club_goals = $6, stadium = $7,
			attendance = $8, competition_id = $9
		WHERE game_id = $10`,
		form.HomeClubID, form.AwayClubID, form.Season, form.Date, form.HomeGoals,
		form.AwayGoals, form.Stadium, form.Attendance, form.CompetitionID, id)
	if err != nil {
		h.log.Error("update game", "id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	if tag.RowsAffected() == 0 {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Game not found")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"game_id": id,
		"message": "Game updated successfully!",
	})
}

// DeleteGame removes a game row.
// @Summary Delete game
// @Tags games
// @Produce json
// @Param gameID path int true "Game ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /games/{gameID} [delete]
func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "gameID"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "ID must be an integer")
		return
	}

	tag, err := h.pool.Exec(r.Context(), "delete_game", id)
	if err != nil {
		h.log.Error("delete game", "id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	if tag.RowsAffected() == 0 {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Game not found")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"message": "Game deleted successfully!",
	})
}

// HeadToHead compares two clubs.
// @Summary Head-to-head comparison
// @Description Club cards (squad size, total squad market value), the last five meetings, a win/draw/loss and goals summary, the biggest win, and the priciest transfer between the two clubs.
// @Tags games
// @Produce json
// @Param home_id query int true "First club ID"
// @Param away_id query int true "Second club ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /games/head2head [get]
func (h *Handler) HeadToHead(w http.ResponseWriter, r *http.Request) {
	homeID, okH := queryInt(r, "home_id")
	awayID, okA := queryInt(r, "away_id")
	if !okH || !okA {
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION", "home_id and away_id are required")
		return
	}

	home, err := h.clubCard(r, homeID)
	if errors.Is(err, pgx.ErrNoRows) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Home club not found")
		return
	}
	if err == nil {
		var away clubCard
		away, err = h.clubCard(r, awayID)
		if errors.Is(err, pgx.ErrNoRows) {
			respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Away club not found")
			return
		}
		if err == nil {
			h.writeHeadToHead(w, r, home, away)
			return
		}
	}

	h.log.Error("head2head", "error", err)
	respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
}

type clubCard struct {
	ClubID      int64    `json:"club_id"`
	Name        string   `json:"name"`
	SquadSize   int      `json:"squad_size"`
	SquadValue  float64  `json:"squad_market_value"`
	AverageAge  *float64 `json:"average_age"`
	StadiumName *string  `json:"stadium_name"`
}

func (h *Handler) clubCard(r *http.Request, id int) (clubCard, error) {
	var c clubCard
	err := h.pool.QueryRow(r.Context(), `
		SELECT c.club_id, c.name, c.squad_size, c.average_age, c.stadium_name,
		       COALESCE((SELECT SUM(market_value) FROM players WHERE current_club_id = c.club_id), 0)
		FROM clubs c WHERE c.club_id = $1`, id).
		Scan(&c.ClubID, &c.Name, &c.SquadSize, &c.AverageAge, &c.StadiumName, &c.SquadValue)
	return c, err
}

func (h *Handler) writeHeadToHead(w http.ResponseWriter, r *http.Request, home, away clubCard) {
	rows, err := h.pool.Query(r.Context(), gameSelect+`
		WHERE (g.home_club_id = $1 AND g.away_club_id = $2)
		   OR (g.home_club_id = $2 AND g.away_club_id = $1)
		ORDER BY g.date DESC NULLS LAST`, home.ClubID, away.ClubID)
	if err != nil {
		h.log.Error("head2head meetings", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	defer rows.Close()

	meetings := []gameRow{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
			return
		}
		meetings = append(meetings, g)
	}

	summary := map[string]int{"home_wins": 0, "away_wins": 0, "draws": 0, "home_goals": 0, "away_goals": 0}
	var biggest *gameRow
	biggestDiff := 0
	for i, g := range meetings {
		if g.HomeGoals == nil || g.AwayGoals == nil {
			continue
		}
		hg, ag := int(*g.HomeGoals), int(*g.AwayGoals)
		// Normalize to the requested home club's perspective.
		if g.HomeClubID != nil && *g.HomeClubID == away.ClubID {
			hg, ag = ag, hg
		}
		summary["home_goals"] += hg
		summary["away_goals"] += ag
		switch {
		case hg > ag:
			summary["home_wins"]++
		case ag > hg:
			summary["away_wins"]++
		default:
			summary["draws"]++
		}
		if diff := hg - ag; diff > biggestDiff || -diff > biggestDiff {
			if diff < 0 {
				diff = -diff
			}
			biggestDiff = diff
			biggest = &meetings[i]
		}
	}

	lastFive := meetings
	if len(lastFive) > 5 {
		lastFive = lastFive[:5]
	}

	priciest, err := h.priciestTransferBetween(r, home.ClubID, away.ClubID)
	if err != nil {
		h.log.Error("head2head priciest transfer", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"home":              home,
		"away":              away,
		"last_meetings":     lastFive,
		"summary":           summary,
		"biggest_win":       biggest,
		"priciest_transfer": priciest,
	})
}

func (h *Handler) priciestTransferBetween(r *http.Request, a, b int64) (*transferRow, error) {
	var t transferRow
	err := h.pool.QueryRow(r.Context(), `
		SELECT transfer_id, player_id, player_name, from_club_id, to_club_id,
		       from_club_name, to_club_name, transfer_date, transfer_season,
		       transfer_fee, market_value_in_eur
		FROM transfers
		WHERE (from_club_id = $1 AND to_club_id = $2)
		   OR (from_club_id = $2 AND to_club_id = $1)
		ORDER BY transfer_fee DESC NULLS LAST
		LIMIT 1`, a, b).
		Scan(&t.TransferID, &t.PlayerID, &t.PlayerName, &t.FromClubID, &t.ToClubID,
			&t.FromClubName, &t.ToClubName, &t.TransferDate, &t.TransferSeason,
			&t.TransferFee, &t.MarketValueInEUR)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.formatDates(nil)
	return &t, nil
}
