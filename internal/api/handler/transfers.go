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
	"github.com/kicktrack/transferdata/internal/market"
)

// transferRow is the list/detail shape for transfers, joined with the
// player's citizenship, birth date, and position when the FK is set.
type transferRow struct {
	TransferID       int64      `json:"transfer_id"`
	PlayerID         *int64     `json:"player_id"`
	PlayerName       string     `json:"player_name"`
	FromClubID       *int64     `json:"from_club_id,omitempty"`
	ToClubID         *int64     `json:"to_club_id,omitempty"`
	FromClubName     *string    `json:"from_club_name"`
	ToClubName       *string    `json:"to_club_name"`
	TransferDate     *time.Time `json:"-"`
	TransferDateStr  *string    `json:"transfer_date"`
	TransferSeason   string     `json:"transfer_season"`
	TransferFee      *float64   `json:"transfer_fee"`
	MarketValueInEUR *float64   `json:"market_value_in_eur"`
	Citizenship      *string    `json:"country_of_citizenship,omitempty"`
	DateOfBirth      *string    `json:"date_of_birth,omitempty"`
	Position         *string    `json:"position,omitempty"`
}

func (t *transferRow) formatDates(dob *time.Time) {
	if t.TransferDate != nil {
		s := t.TransferDate.Format("2006-01-02")
		t.TransferDateStr = &s
	}
	if dob != nil {
		s := dob.Format("2006-01-02")
		t.DateOfBirth = &s
	}
}

// writeMarketError translates the market error taxonomy to HTTP. All
// validation and resolution failures are client errors with the
// original user-facing message; anything else is a 500.
func (h *Handler) writeMarketError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, market.ErrTransferNotFound):
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Transfer not found")
	case market.IsValidation(err):
		respond.WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error())
	default:
		h.log.Error("transfer write failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
	}
}

// ListTransfers returns a paginated transfer list.
// @Summary List transfers
// @Description Returns transfers joined with player info, newest first. Supports player-name search and pagination.
// @Tags transfers
// @Produce json
// @Param search query string false "Player name substring"
// @Param page query int false "Page number (default 1)"
// @Param per_page query int false "Rows per page (default 20, max 100)"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} respond.ErrorResponse
// @Router /transfers [get]
func (h *Handler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r, h.cfg.TransfersPerPage)

	var b whereBuilder
	if search := r.URL.Query().Get("search"); search != "" {
		b.add("t.player_name ILIKE ?", contains(search))
	}

	var total int
	countSQL := "SELECT COUNT(*) FROM transfers t" + b.clause()
	if err := h.pool.QueryRow(r.Context(), countSQL, b.args...).Scan(&total); err != nil {
		h.log.Error("count transfers", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	p.setTotal(total)

	sql := fmt.Sprintf(`
		SELECT t.transfer_id, t.player_id, t.player_name, t.from_club_id, t.to_club_id,
		       t.from_club_name, t.to_club_name, t.transfer_date, t.transfer_season,
		       t.transfer_fee, t.market_value_in_eur,
		       p.country_of_citizenship, p.date_of_birth, p.position
		FROM transfers t
		LEFT JOIN players p ON p.player_id = t.player_id
		%s
		ORDER BY t.transfer_date DESC NULLS LAST, t.transfer_id DESC
		LIMIT $%d OFFSET $%d`, b.clause(), b.next(), b.next()+1)

	rows, err := h.pool.Query(r.Context(), sql, append(b.args, p.PerPage, p.offset())...)
	if err != nil {
		h.log.Error("list transfers", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	defer rows.Close()

	transfers := []transferRow{}
	for rows.Next() {
		var t transferRow
		var dob *time.Time
		if err := rows.Scan(&t.TransferID, &t.PlayerID, &t.PlayerName, &t.FromClubID,
			&t.ToClubID, &t.FromClubName, &t.ToClubName, &t.TransferDate,
			&t.TransferSeason, &t.TransferFee, &t.MarketValueInEUR,
			&t.Citizenship, &dob, &t.Position); err != nil {
			respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
			return
		}
		t.formatDates(dob)
		transfers = append(transfers, t)
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"transfers":  transfers,
		"pagination": p,
	})
}

// CreateTransfer records a new transfer.
// @Summary Create transfer
// @Description Resolves player and clubs (dropdown id or free text), validates, inserts the transfer, and updates the player's current club when the transfer date is today or later. All in one transaction.
// @Tags transfers
// @Accept json
// @Produce json
// @Param transfer body market.TransferForm true "Transfer form"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /transfers [post]
func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var form market.TransferForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}

	id, err := h.market.CreateTransfer(r.Context(), form)
	if err != nil {
		h.writeMarketError(w, err)
		return
	}

	h.cache.Invalidate("transfers:")
	respond.WriteJSONObject(w, http.StatusCreated, map[string]interface{}{
		"transfer_id": id,
		"message":     "Transfer added successfully!",
	})
}

// UpdateTransfer edits an existing transfer.
// @Summary Update transfer
// @Description Re-resolves both clubs, validates, updates the row, and re-runs the current-club sync against the stored player. The player on a transfer is immutable.
// @Tags transfers
// @Accept json
// @Produce json
// @Param transferID path int true "Transfer ID"
// @Param transfer body market.TransferForm true "Transfer form (player fields ignored)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Router /transfers/{transferID} [put]
func (h *Handler) UpdateTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "transferID"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "ID must be an integer")
		return
	}

	var form market.TransferForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be valid JSON")
		return
	}

	if err := h.market.UpdateTransfer(r.Context(), id, form); err != nil {
		h.writeMarketError(w, err)
		return
	}

	h.cache.Invalidate("transfers:")
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"transfer_id": id,
		"message":     "Transfer updated successfully!",
	})
}

// DeleteTransfer removes a transfer row.
// @Summary Delete transfer
// @Tags transfers
// @Produce json
// @Param transferID path int true "Transfer ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /transfers/{transferID} [delete]
func (h *Handler) DeleteTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "transferID"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "ID must be an integer")
		return
	}

	tag, err := h.pool.Exec(r.Context(), "delete_transfer", id)
	if err != nil {
		h.log.Error("delete transfer", "id", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	if tag.RowsAffected() == 0 {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Transfer not found")
		return
	}

	h.cache.Invalidate("transfers:")
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"message": "Transfer deleted successfully!",
	})
}

// GetTransfer returns one transfer, used to prefill the edit form.
// @Summary Get transfer
// @Tags transfers
// @Produce json
// @Param transferID path int true "Transfer ID"
// @Success 200 {object} transferRow
// @Failure 404 {object} respond.ErrorResponse
// @Router /transfers/{transferID} [get]
func (h *Handler) GetTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "transferID"), 10, 64)
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "ID must be an integer")
		return
	}

	var t transferRow
	err = h.pool.QueryRow(r.Context(), "transfer_by_id", id).Scan(
		&t.TransferID, &t.PlayerID, &t.FromClubID, &t.ToClubID, &t.PlayerName,
		&t.FromClubName, &t.ToClubName, &t.TransferDate, &t.TransferSeason,
		&t.TransferFee, &t.MarketValueInEUR)
	if errors.Is(err, pgx.ErrNoRows) {
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Transfer not found")
		return
	}
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}

	t.formatDates(nil)
	respond.WriteJSONObject(w, http.StatusOK, t)
}

// TransferAutocomplete suggests player names for the transfer form.
// @Summary Player name autocomplete
// @Description Returns up to 10 player names matching the term, names starting with the term first. Terms shorter than 2 characters return an empty list.
// @Tags transfers
// @Produce json
// @Param term query string true "Search term"
// @Success 200 {array} string
// @Router /transfers/autocomplete [get]
func (h *Handler) TransferAutocomplete(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("term")
	if len(term) < 2 {
		respond.WriteJSONObject(w, http.StatusOK, []string{})
		return
	}

	cacheKey := "transfers:autocomplete:" + term
	ttl := cache.TTLReference
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	rows, err := h.pool.Query(r.Context(), "player_autocomplete", contains(term), term+"%")
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
			return
		}
		names = append(names, name)
	}

	data, _ := json.Marshal(names)
	etag := h.cache.Set(cacheKey, data, ttl)
	respond.WriteJSON(w, data, etag, ttl, false)
}

// TransferFormData returns the dropdown options for the transfer form.
// @Summary Transfer form dropdowns
// @Description Players and clubs ordered by name, for the add/edit transfer form selects.
// @Tags transfers
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /transfers/form-data [get]
func (h *Handler) TransferFormData(w http.ResponseWriter, r *http.Request) {
	cacheKey := "transfers:form-data"
	ttl := cache.TTLList
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	players, err := h.dropdown(r, "players_dropdown")
	if err != nil {
		h.log.Error("players dropdown", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	clubs, err := h.dropdown(r, "clubs_dropdown")
	if err != nil {
		h.log.Error("clubs dropdown", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}

	data, _ := json.Marshal(map[string]interface{}{
		"players": players,
		"clubs":   clubs,
	})
	etag := h.cache.Set(cacheKey, data, ttl)
	respond.WriteJSON(w, data, etag, ttl, false)
}

type dropdownOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) dropdown(r *http.Request, stmt string) ([]dropdownOption, error) {
	rows, err := h.pool.Query(r.Context(), stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []dropdownOption{}
	for rows.Next() {
		var o dropdownOption
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// TransferStats returns market aggregates for the stats page.
// @Summary Transfer statistics
// @Description Latest 50 transfers with fee vs market-value diff, top 10 spending clubs, and clubs spending over 20% of the average club total.
// @Tags transfers
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} respond.ErrorResponse
// @Router /transfers/stats [get]
func (h *Handler) TransferStats(w http.ResponseWriter, r *http.Request) {
	cacheKey := "transfers:stats"
	ttl := cache.TTLStats
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, ttl, true)
		return
	}

	latest, err := h.latestTransfers(r)
	if err != nil {
		h.log.Error("transfer stats latest", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	spenders, err := h.topSpenders(r)
	if err != nil {
		h.log.Error("transfer stats spenders", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}
	highRollers, err := h.highRollers(r)
	if err != nil {
		h.log.Error("transfer stats high rollers", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL", "Database error")
		return
	}

	data, _ := json.Marshal(map[string]interface{}{
		"latest_transfers": latest,
		"top_spenders":     spenders,
		"high_rollers":     highRollers,
	})
	etag := h.cache.Set(cacheKey, data, ttl)
	respond.WriteJSON(w, data, etag, ttl, false)
}

type statTransfer struct {
	TransferID       int64    `json:"transfer_id"`
	PlayerName       string   `json:"player_name"`
	FromClubName     *string  `json:"from_club_name"`
	ToClubName       *string  `json:"to_club_name"`
	TransferDate     *string  `json:"transfer_date"`
	TransferSeason   string   `json:"transfer_season"`
	TransferFee      *float64 `json:"transfer_fee"`
	MarketValueInEUR *float64 `json:"market_value_in_eur"`
	ValueDiff        float64  `json:"value_diff"`
}

func (h *Handler) latestTransfers(r *http.Request) ([]statTransfer, error) {
	rows, err := h.pool.Query(r.Context(), `
		SELECT transfer_id, player_name, from_club_name, to_club_name,
		       transfer_date, transfer_season, transfer_fee, market_value_in_eur,
		       COALESCE(transfer_fee, 0) - COALESCE(market_value_in_eur, 0)
		FROM transfers
		ORDER BY transfer_date DESC NULLS LAST, transfer_id DESC
		LIMIT 50`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []statTransfer{}
	for rows.Next() {
		var t statTransfer
		var date *time.Time
		if err := rows.Scan(&t.TransferID, &t.PlayerName, &t.FromClubName,
			&t.ToClubName, &date, &t.TransferSeason, &t.TransferFee,
			&t.MarketValueInEUR, &t.ValueDiff); err != nil {
			return nil, err
		}
		if date != nil {
			s := date.Format("2006-01-02")
			t.TransferDate = &s
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type clubSpend struct {
	ClubName   string  `json:"club_name"`
	TotalSpent float64 `json:"total_spent"`
	Transfers  int     `json:"transfers"`
}

func (h *Handler) topSpenders(r *http.Request) ([]clubSpend, error) {
	rows, err := h.pool.Query(r.Context(), `
		SELECT to_club_name, SUM(COALESCE(transfer_fee, 0)), COUNT(*)
		FROM transfers
		WHERE to_club_name IS NOT NULL
		GROUP BY to_club_name
		ORDER BY 2 DESC
		LIMIT 10`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []clubSpend{}
	for rows.Next() {
		var c clubSpend
		if err := rows.Scan(&c.ClubName, &c.TotalSpent, &c.Transfers); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (h *Handler) highRollers(r *http.Request) ([]clubSpend, error) {
	rows, err := h.pool.Query(r.Context(), `
		SELECT to_club_name, SUM(COALESCE(transfer_fee, 0)), COUNT(*)
		FROM transfers
		WHERE to_club_name IS NOT NULL
		GROUP BY to_club_name
		HAVING SUM(COALESCE(transfer_fee, 0)) > 0.2 * (
			SELECT AVG(club_total) FROM (
				SELECT SUM(COALESCE(transfer_fee, 0)) AS club_total
				FROM transfers
				WHERE to_club_name IS NOT NULL
				GROUP BY to_club_name
			) totals)
		ORDER BY 2 DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []clubSpend{}
	for rows.Next() {
		var c clubSpend
		if err := rows.Scan(&c.ClubName, &c.TotalSpent, &c.Transfers); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
