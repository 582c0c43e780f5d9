package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/kicktrack/transferdata/internal/api/respond"
	"github.com/kicktrack/transferdata/internal/cache"
)

type clubRow struct {
	ClubID          int64    `json:"club_id"`
	ClubCode        *string  `json:"club_code"`
	Name            string   `json:"name"`
	CompetitionID   *string  `json:"domestic_competition_id"`
	CompetitionName *string  `json:"competition_name"`
	CountryName     *string  `json:"country_name"`
	SquadSize       int      `json:"squad_size"`
	AverageAge      *float64 `json:"average_age"`
	StadiumName     *string  `json:"stadium_name"`
	StadiumSeats    *int64   `json:"stadium_seats"`
	URL             *string  `json:"url"`
}

const clubSelect = `
	SELECT c.club_id, c.club_code, c.name, c.domestic_competition_id,
	       comp.competition_name, comp.country_name, c.squad_size,
	       c.average_age, c.stadium_name, c.stadium_seats, c.url
	FROM clubs c
	LEFT JOIN competitions comp ON comp.competition_id = c.domestic_competition_id`

func scanClub(row pgx.Row) (clubRow, error) {
	var c clubRow
	err := row.Scan(&c.ClubID, &c.ClubCode, &c.Name, &c.CompetitionID,
		&c.CompetitionName, &c.CountryName, &c.SquadSize, &c.AverageAge,
		&c.StadiumName, &c.StadiumSeats, &c.URL)
	return c, err
}

// ListClubs returns every club with its competition, ordered by name.
// @Summary List clubs
// @Tags clubs
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} respond.ErrorResponse
// @Router /clubs [get]
func (h *Handler) ListClubs(w http.ResponseWriter, r *http.Request) {
	cacheKey := "clubs:list"
	ttl := cache.TTLList
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	rows, err := h.pool.Query(r.Context(), clubSelect+" ORDER BY c.name")
	if err != nil {
		h.log.Error("list clubs", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	defer rows.Close()

	clubs := []clubRow{}
	for rows.Next() {
		c, err := scanClub(rows)
		if err != nil {
			respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
			return
		}
		clubs = append(clubs, c)
	}

	data, _ := json.Marshal(map[string]interface{}{"clubs": clubs})
	etag := h.cache.Set(cacheKey, data, ttl)
	respond.WriteJSON(w, data, etag, ttl, false)
}

// GetClub returns club details with league rivals and per-season
// transfer aggregates.
// @Summary Club detail
// @Description Club profile with competition info, other clubs in the same league, and transfer activity grouped by season (incoming/outgoing counts, spent/earned totals).
// @Tags clubs
// @Produce json
// @Param clubID path int true "Club ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /clubs/{clubID} [get]
func (h *Handler) GetClub(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "clubID"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "ID must be an integer")
		return
	}

	c, err := scanClub(h.pool.QueryRow(r.Context(), clubSelect+" WHERE c.club_id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Club not found")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}

	rivals, err := h.leagueRivals(r, id, c.CompetitionID)
	if err != nil {
		h.log.Error("club rivals", "club_id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	seasons, err := h.clubSeasonActivity(r, id, c.Name)
	if err != nil {
		h.log.Error("club season activity", "club_id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"club":      c,
		"rivals":    rivals,
		"transfers": seasons,
	})
}

type rivalClub struct {
	ClubID int64  `json:"club_id"`
	Name   string `json:"name"`
}

func (h *Handler) leagueRivals(r *http.Request, clubID int64, compID *string) ([]rivalClub, error) {
	if compID == nil {
		return []rivalClub{}, nil
	}
	rows, err := h.pool.Query(r.Context(), `
		SELECT club_id, name FROM clubs
		WHERE domestic_competition_id = $1 AND club_id <> $2
		ORDER BY name`, *compID, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []rivalClub{}
	for rows.Next() {
		var c rivalClub
		if err := rows.Scan(&c.ClubID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type seasonActivity struct {
	Season   string  `json:"season"`
	Incoming int     `json:"incoming"`
	Outgoing int     `json:"outgoing"`
	Spent    float64 `json:"spent"`
	Earned   float64 `json:"earned"`
}

// clubSeasonActivity matches transfers by FK or denormalized club name,
// newest season first.
func (h *Handler) clubSeasonActivity(r *http.Request, clubID int64, name string) ([]seasonActivity, error) {
	rows, err := h.pool.Query(r.Context(), `
		SELECT transfer_season,
		       COUNT(*) FILTER (WHERE to_club_id = $1 OR to_club_name = $2),
		       COUNT(*) FILTER (WHERE from_club_id = $1 OR from_club_name = $2),
		       COALESCE(SUM(transfer_fee) FILTER (WHERE to_club_id = $1 OR to_club_name = $2), 0),
		       COALESCE(SUM(transfer_fee) FILTER (WHERE from_club_id = $1 OR from_club_name = $2), 0)
		FROM transfers
		WHERE to_club_id = $1 OR from_club_id = $1
		   OR to_club_name = $2 OR from_club_name = $2
		GROUP BY transfer_season
		ORDER BY transfer_season DESC`, clubID, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []seasonActivity{}
	for rows.Next() {
		var s seasonActivity
		if err := rows.Scan(&s.Season, &s.Incoming, &s.Outgoing, &s.Spent, &s.Earned); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// clubForm is the writable shape for clubs. The id is explicit because
// the dataset carries external club ids.
type clubForm struct {
	ClubID        int64    `json:"club_id"`
	ClubCode      *string  `json:"club_code"`
	Name          string   `json:"name"`
	CompetitionID *string  `json:"domestic_competition_id"`
	SquadSize     int      `json:"squad_size"`
	AverageAge    *float64 `json:"average_age"`
	StadiumName   *string  `json:"stadium_name"`
	StadiumSeats  *int64   `json:"stadium_seats"`
	URL           *string  `json:"url"`
}

// CreateClub inserts a club with an explicit id.
// @Summary Create club
// @Tags clubs
// @Accept json
// @Produce json
// @Param club body clubForm true "Club fields (club_id required)"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Router /clubs [post]
func (h *Handler) CreateClub(w http.ResponseWriter, r *http.Request) {
	var form clubForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	if form.ClubID <= 0 || form.Name == "" {
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION", "club_id and name are required")
		return
	}

	tag, err := h.pool.Exec(r.Context(), `
		INSERT INTO clubs (club_id, club_code, name, domestic_competition_id,
			squad_size, average_age, stadium_name, stadium_seats, url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (club_id) DO NOTHING`,
		form.ClubID, form.ClubCode, form.Name, form.CompetitionID, form.SquadSize,
		form.AverageAge, form.StadiumName, form.StadiumSeats, form.URL)
	if err != nil {
		h.log.Error("create club", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	if tag.RowsAffected() == 0 {
		respond.WriteError(w, http.StatusConflict, "ALREADY_EXISTS", "A club with this id already exists")
		return
	}

	h.cache.Invalidate("clubs:")
	respond.WriteJSONObject(w, http.StatusCreated, map[string]interface{}{
		"club_id": form.ClubID,
		"message": "Club added successfully!",
	})
}

// UpdateClub edits a club row.
// @Summary Update club
// @Tags clubs
// @Accept json
// @Produce json
// @Param clubID path int true "Club ID"
// @Param club body clubForm true "Club fields"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /clubs/{clubID} [put]
func (h *Handler) UpdateClub(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "clubID"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "ID must be an integer")
		return
	}

	var form clubForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}
	if form.Name == "" {
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION", "Name is required")
		return
	}

	tag, err := h.pool.Exec(r.Context(), `
		UPDATE clubs SET club_code = $1, name = $2, domestic_competition_id = $3,
			squad_size = $4, average_age = $5, stadium_name = $6,
			stadium_seats = $7, url = $8
		WHERE club_id = $9`,
		form.ClubCode, form.Name, form.CompetitionID, form.SquadSize,
		form.AverageAge, form.StadiumName, form.StadiumSeats, form.URL, id)
	if err != nil {
		h.log.Error("update club", "id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	if tag.RowsAffected() == 0 {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Club not found")
		return
	}

	h.cache.Invalidate("clubs:")
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"club_id": id,
		"message": "Club updated successfully!",
	})
}

// DeleteClub removes a club row.
// @Summary Delete club
// @Tags clubs
// @Produce json
// @Param clubID path int true "Club ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /clubs/{clubID} [delete]
func (h *Handler) DeleteClub(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "clubID"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "ID must be an integer")
		return
	}

	tag, err := h.pool.Exec(r.Context(), "delete_club", id)
	if err != nil {
		h.log.Error("delete club", "id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	if tag.RowsAffected() == 0 {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Club not found")
		return
	}

	h.cache.Invalidate("clubs:")
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"message": "Club deleted successfully!",
	})
}

// ListCompetitions returns the competition dropdown.
// @Summary List competitions
// @Tags clubs
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /competitions [get]
func (h *Handler) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	cacheKey := "clubs:competitions"
	ttl := cache.TTLReference
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	rows, err := h.pool.Query(r.Context(), "competitions_list")
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	defer rows.Close()

	type competition struct {
		CompetitionID string  `json:"competition_id"`
		Name          *string `json:"competition_name"`
		CountryName   *string `json:"country_name"`
	}
	competitions := []competition{}
	for rows.Next() {
		var c competition
		if err := rows.Scan(&c.CompetitionID, &c.Name, &c.CountryName); err != nil {
			respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
			return
		}
		competitions = append(competitions, c)
	}

	data, _ := json.Marshal(map[string]interface{}{"competitions": competitions})
	etag := h.cache.Set(cacheKey, data, ttl)
	respond.WriteJSON(w, data, etag, ttl, false)
}
