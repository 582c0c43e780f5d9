package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// pagination carries the page window parsed from the query string.
type pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

func parsePagination(r *http.Request, defaultPerPage int) pagination {
	p := pagination{Page: 1, PerPage: defaultPerPage}
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && v > 0 && v <= 100 {
		p.PerPage = v
	}
	return p
}

func (p *pagination) setTotal(total int) {
	p.Total = total
	p.Pages = (total + p.PerPage - 1) / p.PerPage
	if p.Pages == 0 {
		p.Pages = 1
	}
}

func (p pagination) offset() int {
	return (p.Page - 1) * p.PerPage
}

// sortOrder picks an ORDER BY expression from a whitelist. Column names
// never come from the client; the client key only selects among fixed
// expressions.
func sortOrder(r *http.Request, whitelist map[string]string, defaultKey string) string {
	key := r.URL.Query().Get("sort_by")
	expr, ok := whitelist[key]
	if !ok {
		expr = whitelist[defaultKey]
	}
	dir := "ASC"
	if strings.EqualFold(r.URL.Query().Get("sort_dir"), "desc") {
		dir = "DESC"
	}
	return expr + " " + dir
}

// whereBuilder accumulates AND-ed conditions with positional args.
type whereBuilder struct {
	conds []string
	args  []any
}

// add appends a condition whose "?" placeholders are rewritten to the
// next positional parameters.
func (b *whereBuilder) add(cond string, args ...any) {
	for _, a := range args {
		b.args = append(b.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(b.args)), 1)
	}
	b.conds = append(b.conds, cond)
}

// clause renders " WHERE ..." or "" when no conditions were added.
func (b *whereBuilder) clause() string {
	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}

// next returns the next positional placeholder index, for clauses that
// are appended outside the builder (LIMIT/OFFSET).
func (b *whereBuilder) next() int {
	return len(b.args) + 1
}

func contains(fragment string) string {
	return "%" + fragment + "%"
}

func queryInt(r *http.Request, name string) (int, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
