package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt(t *testing.T) {
	require.Nil(t, parseInt(""))
	require.Nil(t, parseInt("  "))
	require.Nil(t, parseInt("abc"))

	n := parseInt("42")
	require.NotNil(t, n)
	assert.Equal(t, int64(42), *n)

	// Float-formatted exports are common in club and player dumps.
	n = parseInt("12.0")
	require.NotNil(t, n)
	assert.Equal(t, int64(12), *n)

	n = parseInt(" 7 ")
	require.NotNil(t, n)
	assert.Equal(t, int64(7), *n)
}

func TestParseStrTruncates(t *testing.T) {
	require.Nil(t, parseStr("   ", 10))

	s := parseStr("Borussia Dortmund", 8)
	require.NotNil(t, s)
	assert.Equal(t, "Borussia", *s)

	s = parseStr("FC Porto", 0)
	require.NotNil(t, s)
	assert.Equal(t, "FC Porto", *s)
}

func TestParseDateFormats(t *testing.T) {
	for _, in := range []string{
		"2024-07-01",
		"2024-07-01 00:00:00",
		"01/07/2024",
	} {
		d := parseDate(in)
		require.NotNil(t, d, "input %q", in)
		assert.Equal(t, "2024-07-01", *d, "input %q", in)
	}

	require.Nil(t, parseDate(""))
	require.Nil(t, parseDate("July 1st"))
}

func TestIDAllocatorKeepsFreshIDs(t *testing.T) {
	a := newIDAllocator(100)

	id := int64(50)
	assert.Equal(t, int64(50), a.claim(&id))

	// Same CSV id appearing twice gets moved above the maximum.
	assert.Equal(t, int64(101), a.claim(&id))

	// Missing id allocates the next slot.
	assert.Equal(t, int64(102), a.claim(nil))
}

func TestIDAllocatorTracksNewMaximum(t *testing.T) {
	a := newIDAllocator(10)

	high := int64(500)
	assert.Equal(t, int64(500), a.claim(&high))

	// Allocation continues above the highest id seen, not the seed.
	assert.Equal(t, int64(501), a.claim(nil))
	assert.Equal(t, int64(502), a.next())
}

func TestHeaderLookup(t *testing.T) {
	h := newHeader([]string{"club_id", " name ", "url"})

	assert.True(t, h.has("club_id"))
	assert.True(t, h.has("name"))
	assert.False(t, h.has("squad_size"))

	fields := []string{"985", "Manchester United"}
	assert.Equal(t, "Manchester United", h.get(fields, "name"))
	// Row shorter than the header reads as empty, not a panic.
	assert.Equal(t, "", h.get(fields, "url"))
	assert.Equal(t, "", h.get(fields, "missing"))
}

func TestResultSummary(t *testing.T) {
	r := Result{Table: "players", Inserted: 10, Skipped: 2}
	r.AddErrorf("player %d: bad row", 7)

	assert.Equal(t, "table=players inserted=10 skipped=2 errors=1", r.Summary())

	r.Add(Result{Inserted: 5, Errors: []string{"x"}})
	assert.Equal(t, 15, r.Inserted)
	assert.Len(t, r.Errors, 2)
}
