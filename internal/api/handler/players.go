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
	"github.com/kicktrack/transferdata/internal/cache"
)

type playerRow struct {
	PlayerID    int64    `json:"player_id"`
	Name        string   `json:"name"`
	ClubID      *int64   `json:"current_club_id"`
	ClubName    *string  `json:"club_name"`
	LastSeason  *int64   `json:"last_season,omitempty"`
	Citizenship *string  `json:"country_of_citizenship"`
	DateOfBirth *string  `json:"date_of_birth"`
	Age         *int     `json:"age"`
	Position    *string  `json:"position"`
	SubPosition *string  `json:"sub_position"`
	Foot        *string  `json:"foot"`
	MarketValue *float64 `json:"market_value"`
	ImageURL    *string  `json:"image_url"`
}

// playerSortColumns whitelists sortable expressions for the list view.
var playerSortColumns = map[string]string{
	"name":                   "p.name",
	"market_value":           "p.market_value",
	"date_of_birth":          "p.date_of_birth",
	"age":                    "DATE_PART('year', AGE(p.date_of_birth))",
	"position":               "p.position",
	"country_of_citizenship": "p.country_of_citizenship",
	"club_name":              "c.name",
}

const playerSelect = `
	SELECT p.player_id, p.name, p.current_club_id, c.name, p.last_season,
	       p.country_of_citizenship, p.date_of_birth,
	       DATE_PART('year', AGE(p.date_of_birth))::int,
	       p.position, p.sub_position, p.foot, p.market_value, p.image_url
	FROM players p
	LEFT JOIN clubs c ON c.club_id = p.current_club_id`

func scanPlayer(row pgx.Row) (playerRow, error) {
	var p playerRow
	var dob *time.Time
	err := row.Scan(&p.PlayerID, &p.Name, &p.ClubID, &p.ClubName, &p.LastSeason,
		&p.Citizenship, &dob, &p.Age, &p.Position, &p.SubPosition, &p.Foot,
		&p.MarketValue, &p.ImageURL)
	if err == nil && dob != nil {
		s := dob.Format("2006-01-02")
		p.DateOfBirth = &s
	}
	return p, err
}

// ListPlayers returns a filtered, sorted, paginated player list.
// @Summary List players
// @Description Search spans name, position, citizenship, and club name. Individual filters narrow further; sorting is limited to a fixed column set.
// @Tags players
// @Produce json
// @Param search query string false "Substring across name/position/country/club"
// @Param position query string false "Exact position"
// @Param sub_position query string false "Exact sub-position"
// @Param country query string false "Exact country of citizenship"
// @Param club_id query int false "Current club"
// @Param foot query string false "Preferred foot"
// @Param min_age query int false "Minimum age"
// @Param max_age query int false "Maximum age"
// @Param sort_by query string false "name|market_value|date_of_birth|age|position|country_of_citizenship|club_name"
// @Param sort_dir query string false "asc|desc"
// @Param page query int false "Page number"
// @Param per_page query int false "Rows per page"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} respond.ErrorResponse
// @Router /players [get]
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r, h.cfg.PlayersPerPage)
	q := r.URL.Query()

	var b whereBuilder
	if search := q.Get("search"); search != "" {
		pat := contains(search)
		b.add("(p.name ILIKE ? OR p.position ILIKE ? OR p.country_of_citizenship ILIKE ? OR c.name ILIKE ?)",
			pat, pat, pat, pat)
	}
	if v := q.Get("position"); v != "" {
		b.add("p.position = ?", v)
	}
	if v := q.Get("sub_position"); v != "" {
		b.add("p.sub_position = ?", v)
	}
	if v := q.Get("country"); v != "" {
		b.add("p.country_of_citizenship = ?", v)
	}
	if v, ok := queryInt(r, "club_id"); ok {
		b.add("p.current_club_id = ?", v)
	}
	if v := q.Get("foot"); v != "" {
		b.add("p.foot = ?", v)
	}
	if v, ok := queryInt(r, "min_age"); ok {
		b.add("DATE_PART('year', AGE(p.date_of_birth)) >= ?", v)
	}
	if v, ok := queryInt(r, "max_age"); ok {
		b.add("DATE_PART('year', AGE(p.date_of_birth)) <= ?", v)
	}

	var total int
	countSQL := "SELECT COUNT(*) FROM players p LEFT JOIN clubs c ON c.club_id = p.current_club_id" + b.clause()
	if err := h.pool.QueryRow(r.Context(), countSQL, b.args...).Scan(&total); err != nil {
		h.log.Error("count players", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	p.setTotal(total)

	sql := fmt.Sprintf("%s%s ORDER BY %s NULLS LAST LIMIT $%d OFFSET $%d",
		playerSelect, b.clause(), sortOrder(r, playerSortColumns, "name"), b.next(), b.next()+1)

	rows, err := h.pool.Query(r.Context(), sql, append(b.args, p.PerPage, p.offset())...)
	if err != nil {
		h.log.Error("list players", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	defer rows.Close()

	players := []playerRow{}
	for rows.Next() {
		pr, err := scanPlayer(rows)
		if err != nil {
			respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
			return
		}
		players = append(players, pr)
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"players":    players,
		"pagination": p,
	})
}

// GetPlayer returns a player profile with market comparisons and
// transfer history.
// @Summary Player detail
// @Description Player profile with age, averages for the player's club and league (age and market value), and the player's transfer history matched by id or name.
// @Tags players
// @Produce json
// @Param playerID path int true "Player ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /players/{playerID} [get]
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "playerID"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "ID must be an integer")
		return
	}

	pr, err := scanPlayer(h.pool.QueryRow(r.Context(), playerSelect+" WHERE p.player_id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Player not found")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}

	comparisons := h.playerComparisons(r, pr.ClubID)
	history, err := h.playerTransferHistory(r, id, pr.Name)
	if err != nil {
		h.log.Error("player transfer history", "player_id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"player":      pr,
		"comparisons": comparisons,
		"transfers":   history,
	})
}

// playerComparisons computes average age and market value for the
// player's club and for every club in the same league. Comparison
// failures degrade to nulls rather than failing the profile.
func (h *Handler) playerComparisons(r *http.Request, clubID *int64) map[string]interface{} {
	out := map[string]interface{}{
		"club_avg_age": nil, "club_avg_market_value": nil,
		"league_avg_age": nil, "league_avg_market_value": nil,
	}
	if clubID == nil {
		return out
	}

	var clubAge, clubMV *float64
	err := h.pool.QueryRow(r.Context(), `
		SELECT AVG(DATE_PART('year', AGE(date_of_birth))), AVG(market_value)
		FROM players WHERE current_club_id = $1`, *clubID).Scan(&clubAge, &clubMV)
	if err == nil {
		out["club_avg_age"] = clubAge
		out["club_avg_market_value"] = clubMV
	}

	var leagueAge, leagueMV *float64
	err = h.pool.QueryRow(r.Context(), `
		SELECT AVG(DATE_PART('year', AGE(p.date_of_birth))), AVG(p.market_value)
		FROM players p
		JOIN clubs c ON c.club_id = p.current_club_id
		WHERE c.domestic_competition_id = (
			SELECT domestic_competition_id FROM clubs WHERE club_id = $1)`,
		*clubID).Scan(&leagueAge, &leagueMV)
	if err == nil {
		out["league_avg_age"] = leagueAge
		out["league_avg_market_value"] = leagueMV
	}
	return out
}

// playerTransferHistory matches rows by FK or by denormalized name, so
// CSV-loaded transfers without a player_id still show up.
func (h *Handler) playerTransferHistory(r *http.Request, id int64, name string) ([]transferRow, error) {
	rows, err := h.pool.Query(r.Context(), `
		SELECT transfer_id, player_id, player_name, from_club_id, to_club_id,
		       from_club_name, to_club_name, transfer_date, transfer_season,
		       transfer_fee, market_value_in_eur
		FROM transfers
		WHERE player_id = $1 OR player_name ILIKE $2
		ORDER BY transfer_date DESC NULLS LAST, transfer_id DESC`,
		id, contains(name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []transferRow{}
	for rows.Next() {
		var t transferRow
		if err := rows.Scan(&t.TransferID, &t.PlayerID, &t.PlayerName,
			&t.FromClubID, &t.ToClubID, &t.FromClubName, &t.ToClubName,
			&t.TransferDate, &t.TransferSeason, &t.TransferFee,
			&t.MarketValueInEUR); err != nil {
			return nil, err
		}
		t.formatDates(nil)
		out = append(out, t)
	}
	return out, rows.Err()
}

// playerForm is the writable subset for create and edit.
type playerForm struct {
	Name        string   `json:"name"`
	ClubID      *int64   `json:"current_club_id"`
	Citizenship *string  `json:"country_of_citizenship"`
	DateOfBirth *string  `json:"date_of_birth"`
	Position    *string  `json:"position"`
	SubPosition *string  `json:"sub_position"`
	Foot        *string  `json:"foot"`
	MarketValue *float64 `json:"market_value"`
	ImageURL    *string  `json:"image_url"`
}

// CreatePlayer inserts a player; the id comes from the sequence.
// @Summary Create player
// @Tags players
// @Accept json
// @Produce json
// @Param player body playerForm true "Player fields"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /players [post]
func (h *Handler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var form playerForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	if form.Name == "" {
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION", "Name is required")
		return
	}

	var id int64
	err := h.pool.QueryRow(r.Context(), `
		INSERT INTO players (name, current_club_id, country_of_citizenship,
			date_of_birth, position, sub_position, foot, market_value, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING player_id`,
		form.Name, form.ClubID, form.Citizenship, form.DateOfBirth, form.Position,
		form.SubPosition, form.Foot, form.MarketValue, form.ImageURL).Scan(&id)
	if err != nil {
		h.log.Error("create player", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}

	h.cache.Invalidate("players:")
	respond.WriteJSONObject(w, http.StatusCreated, map[string]interface{}{
		"player_id": id,
		"message":   "Player added successfully!",
	})
}

// UpdatePlayer edits the writable subset of a player row.
// @Summary Update player
// @Tags players
// @Accept json
// @Produce json
// @Param playerID path int true "Player ID"
// @Param player body playerForm true "Player fields"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /players/{playerID} [put]
func (h *Handler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "playerID"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "ID must be an integer")
		return
	}

	var form playerForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	if form.Name == "" {
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION", "Name is required")
		return
	}

	tag, err := h.pool.Exec(r.Context(), `
		UPDATE players SET name = $1, current_club_id = $2,
			country_of_citizenship = $3, date_of_birth = $4, position = $5,
			sub_position = $6, foot = $7, market_value = $8, image_url = $9
		WHERE player_id = $10`,
		form.Name, form.ClubID, form.Citizenship, form.DateOfBirth, form.Position,
		form.SubPosition, form.Foot, form.MarketValue, form.ImageURL, id)
	if err != nil {
		h.log.Error("update player", "id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	if tag.RowsAffected() == 0 {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Player not found")
		return
	}

	h.cache.Invalidate("players:")
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"player_id": id,
		"message":   "Player updated successfully!",
	})
}

// DeletePlayer removes a player row.
// @Summary Delete player
// @Tags players
// @Produce json
// @Param playerID path int true "Player ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /players/{playerID} [delete]
func (h *Handler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "playerID"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "ID must be an integer")
		return
	}

	tag, err := h.pool.Exec(r.Context(), "delete_player", id)
	if err != nil {
		h.log.Error("delete player", "id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	if tag.RowsAffected() == 0 {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Player not found")
		return
	}

	h.cache.Invalidate("players:")
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"message": "Player deleted successfully!",
	})
}

// PlayerFilters returns distinct values for the list filter dropdowns.
// @Summary Player filter values
// @Tags players
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /players/filters [get]
func (h *Handler) PlayerFilters(w http.ResponseWriter, r *http.Request) {
	cacheKey := "players:filters"
	ttl := cache.TTLReference
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	filters := map[string][]string{}
	for key, column := range map[string]string{
		"positions":     "position",
		"sub_positions": "sub_position",
		"countries":     "country_of_citizenship",
		"feet":          "foot",
	} {
		values, err := h.distinctColumn(r, column)
		if err != nil {
			h.log.Error("player filters", "column", column, "error", err)
			respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
			return
		}
		filters[key] = values
	}

	data, _ := json.Marshal(filters)
	etag := h.cache.Set(cacheKey, data, ttl)
	respond.WriteJSON(w, data, etag, ttl, false)
}

func (h *Handler) distinctColumn(r *http.Request, column string) ([]string, error) {
	// column comes from the fixed map above, never from the client
	rows, err := h.pool.Query(r.Context(), fmt.Sprintf(
		"SELECT DISTINCT %s FROM players WHERE %s IS NOT NULL ORDER BY %s",
		column, column, column))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// PlayerSubPositions returns the sub-positions recorded for a position.
// @Summary Sub-positions for a position
// @Tags players
// @Produce json
// @Param position query string true "Position"
// @Success 200 {array} string
// @Router /players/sub-positions [get]
func (h *Handler) PlayerSubPositions(w http.ResponseWriter, r *http.Request) {
	position := r.URL.Query().Get("position")
	if position == "" {
		respond.WriteJSONObject(w, http.StatusOK, []string{})
		return
	}

	rows, err := h.pool.Query(r.Context(), `
		SELECT DISTINCT sub_position FROM players
		WHERE position = $1 AND sub_position IS NOT NULL
		ORDER BY sub_position`, position)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
			return
		}
		out = append(out, v)
	}
	respond.WriteJSONObject(w, http.StatusOK, out)
}
