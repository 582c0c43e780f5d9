package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest("GET", "/players?page=3&per_page=25", nil)
	p := parsePagination(r, 20)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 25, p.PerPage)
	assert.Equal(t, 50, p.offset())

	// Defaults and bad input.
	r = httptest.NewRequest("GET", "/players?page=-1&per_page=banana", nil)
	p = parsePagination(r, 20)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.offset())

	// per_page is capped at 100.
	r = httptest.NewRequest("GET", "/players?per_page=5000", nil)
	p = parsePagination(r, 20)
	assert.Equal(t, 20, p.PerPage)
}

func TestPaginationSetTotal(t *testing.T) {
	p := pagination{Page: 1, PerPage: 20}
	p.setTotal(41)
	assert.Equal(t, 41, p.Total)
	assert.Equal(t, 3, p.Pages)

	p.setTotal(0)
	assert.Equal(t, 1, p.Pages)
}

func TestSortOrderWhitelist(t *testing.T) {
	r := httptest.NewRequest("GET", "/players?sort_by=market_value&sort_dir=desc", nil)
	assert.Equal(t, "p.market_value DESC", sortOrder(r, playerSortColumns, "name"))

	// Unknown keys fall back to the default column.
	r = httptest.NewRequest("GET", "/players?sort_by=password;DROP+TABLE", nil)
	assert.Equal(t, "p.name ASC", sortOrder(r, playerSortColumns, "name"))

	// Direction defaults to ascending.
	r = httptest.NewRequest("GET", "/games?sort_by=goals", nil)
	assert.Equal(t,
		"COALESCE(g.home_club_goals, 0) + COALESCE(g.away_club_goals, 0) ASC",
		sortOrder(r, gameSortColumns, "date"))
}

func TestWhereBuilder(t *testing.T) {
	var b whereBuilder
	assert.Equal(t, "", b.clause())
	assert.Equal(t, 1, b.next())

	b.add("p.name ILIKE ?", "%silva%")
	b.add("p.current_club_id = ?", 42)
	assert.Equal(t, " WHERE p.name ILIKE $1 AND p.current_club_id = $2", b.clause())
	assert.Equal(t, []any{"%silva%", 42}, b.args)
	assert.Equal(t, 3, b.next())
}

func TestWhereBuilderMultipleArgsInOneCondition(t *testing.T) {
	var b whereBuilder
	b.add("(p.name ILIKE ? OR c.name ILIKE ?)", "%fc%", "%fc%")
	assert.Equal(t, " WHERE (p.name ILIKE $1 OR c.name ILIKE $2)", b.clause())
	assert.Len(t, b.args, 2)
}

func TestContains(t *testing.T) {
	assert.Equal(t, "%kane%", contains("kane"))
}
