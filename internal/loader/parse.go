package loader

import (
	"strconv"
	"strings"
	"time"
)

// CSV exports are messy: integers arrive as "12.0", dates in three
// formats, and empty cells as empty strings. All parsers return nil for
// anything unusable so the caller inserts NULL instead of failing.

func parseInt(v string) *int64 {
	s := strings.TrimSpace(v)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &n
	}
	// Handles "12.0" style exports.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		n := int64(f)
		return &n
	}
	return nil
}

func parseFloat(v string) *float64 {
	s := strings.TrimSpace(v)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return &f
	}
	return nil
}

func parseStr(v string, maxLen int) *string {
	s := strings.TrimSpace(v)
	if s == "" {
		return nil
	}
	if maxLen > 0 && len(s) > maxLen {
		s = s[:maxLen]
	}
	return &s
}

// parseDate accepts "YYYY-MM-DD", "YYYY-MM-DD HH:MM:SS", and
// "DD/MM/YYYY", normalizing to "YYYY-MM-DD".
func parseDate(v string) *string {
	s := strings.TrimSpace(v)
	if s == "" {
		return nil
	}
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	for _, layout := range []string{"2006-01-02", "02/01/2006"} {
		if d, err := time.Parse(layout, s); err == nil {
			out := d.Format("2006-01-02")
			return &out
		}
	}
	return nil
}

// idAllocator hands out explicit primary keys for CSV rows. Rows keep
// their CSV id when it is fresh; rows with a missing or already-used id
// get the next id above the table's running maximum.
type idAllocator struct {
	max  int64
	used map[int64]bool
}

func newIDAllocator(max int64) *idAllocator {
	return &idAllocator{max: max, used: make(map[int64]bool)}
}

func (a *idAllocator) claim(csvID *int64) int64 {
	var id int64
	if csvID == nil || a.used[*csvID] {
		a.max++
		id = a.max
	} else {
		id = *csvID
		if id > a.max {
			a.max = id
		}
	}
	a.used[id] = true
	return id
}

// next allocates a fresh id, used when an insert collides with a row
// already in the database.
func (a *idAllocator) next() int64 {
	a.max++
	a.used[a.max] = true
	return a.max
}

// header maps CSV column names to field positions.
type header map[string]int

func newHeader(cols []string) header {
	h := make(header, len(cols))
	for i, c := range cols {
		h[strings.TrimSpace(c)] = i
	}
	return h
}

func (h header) has(col string) bool {
	_, ok := h[col]
	return ok
}

func (h header) get(fields []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(fields) {
		return ""
	}
	return fields[i]
}
