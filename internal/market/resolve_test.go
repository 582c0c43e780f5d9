package market_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kicktrack/transferdata/internal/market"
)

func TestParseSelection(t *testing.T) {
	assert.Equal(t, market.Absent, market.ParseSelection("  ").Kind)
	assert.Equal(t, market.ByText, market.ParseSelection("Arsenal").Kind)

	sel := market.ParseSelection(" 42 ")
	assert.Equal(t, market.ByID, sel.Kind)
	assert.Equal(t, int64(42), sel.ID)

	// Mixed digits and letters are text, not an id.
	assert.Equal(t, market.ByText, market.ParseSelection("42b").Kind)
}

func TestParseManualAlwaysText(t *testing.T) {
	assert.Equal(t, market.Absent, market.ParseManual("").Kind)
	assert.Equal(t, market.ByText, market.ParseManual("123").Kind)
}

func TestResolveConflictingInput(t *testing.T) {
	st := newFakeStore()
	st.clubs = []market.Entity{{ID: 5, Name: "Arsenal"}}

	_, err := market.Resolve(context.Background(), st, market.TableClubs,
		market.ParseSelection("5"), market.ParseManual("Arsenal"))
	var ci *market.ConflictingInputError
	require.ErrorAs(t, err, &ci)
	assert.Equal(t, market.TableClubs, ci.Table)
}

func TestResolveNonNumericSelectionFallsThroughToManual(t *testing.T) {
	st := newFakeStore()
	st.clubs = []market.Entity{{ID: 5, Name: "Arsenal"}}

	// Text in the selection box next to manual text is not a conflict;
	// manual input wins.
	res, err := market.Resolve(context.Background(), st, market.TableClubs,
		market.ParseSelection("Arsenal"), market.ParseManual("Arsenal"))
	require.NoError(t, err)
	assert.True(t, res.Resolved)
	assert.Equal(t, int64(5), res.ID)
	assert.Equal(t, "Arsenal", res.Name)
}

func TestResolveSelectionAsFreeText(t *testing.T) {
	st := newFakeStore()
	st.clubs = []market.Entity{{ID: 5, Name: "Arsenal"}}

	res, err := market.Resolve(context.Background(), st, market.TableClubs,
		market.ParseSelection("Arsenal"), market.ParseManual(""))
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.ID)
}

func TestResolveByID(t *testing.T) {
	st := newFakeStore()
	st.players = []market.Entity{{ID: 10, Name: "Bukayo Saka", MarketValue: 120000000}}

	res, err := market.Resolve(context.Background(), st, market.TablePlayers,
		market.ParseSelection("10"), market.ParseManual(""))
	require.NoError(t, err)
	assert.True(t, res.Resolved)
	assert.Equal(t, "Bukayo Saka", res.Name)
	assert.Equal(t, float64(120000000), res.MarketValue)
}

func TestResolveIDNotFound(t *testing.T) {
	st := newFakeStore()

	_, err := market.Resolve(context.Background(), st, market.TablePlayers,
		market.ParseSelection("999"), market.ParseManual(""))
	var inf *market.IDNotFoundError
	require.ErrorAs(t, err, &inf)
	assert.Equal(t, "999", inf.ID)
}

func TestResolveBothAbsent(t *testing.T) {
	st := newFakeStore()

	res, err := market.Resolve(context.Background(), st, market.TableClubs,
		market.ParseSelection(""), market.ParseManual(""))
	require.NoError(t, err)
	assert.False(t, res.Resolved)
	assert.Zero(t, res.ID)
	assert.Empty(t, res.Name)
}

func TestResolvePropagatesLookupErrors(t *testing.T) {
	st := newFakeStore()
	st.clubs = []market.Entity{
		{ID: 1, Name: "Real Madrid"},
		{ID: 2, Name: "Real Sociedad"},
	}

	_, err := market.Resolve(context.Background(), st, market.TableClubs,
		market.ParseSelection(""), market.ParseManual("Real"))
	var amb *market.AmbiguousError
	require.ErrorAs(t, err, &amb)
}
