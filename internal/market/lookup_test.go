package market_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kicktrack/transferdata/internal/market"
)

func TestLookupExactMatchWins(t *testing.T) {
	st := newFakeStore()
	st.clubs = []market.Entity{
		{ID: 1, Name: "Chelsea"},
		{ID: 2, Name: "Chelsea FC"},
	}

	e, err := market.Lookup(context.Background(), st, market.TableClubs, "Chelsea")
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.ID)
	assert.Equal(t, "Chelsea", e.Name)
}

func TestLookupSinglePartialMatch(t *testing.T) {
	st := newFakeStore()
	st.players = []market.Entity{
		{ID: 7, Name: "Erling Haaland", MarketValue: 180000000},
		{ID: 8, Name: "Jude Bellingham", MarketValue: 150000000},
	}

	e, err := market.Lookup(context.Background(), st, market.TablePlayers, "Haaland")
	require.NoError(t, err)
	assert.Equal(t, int64(7), e.ID)
	assert.Equal(t, float64(180000000), e.MarketValue)
}

func TestLookupAmbiguous(t *testing.T) {
	st := newFakeStore()
	st.clubs = []market.Entity{
		{ID: 1, Name: "Real Madrid"},
		{ID: 2, Name: "Real Sociedad"},
	}

	_, err := market.Lookup(context.Background(), st, market.TableClubs, "Real")
	var amb *market.AmbiguousError
	require.ErrorAs(t, err, &amb)
	assert.Equal(t, 2, amb.Count)
	assert.Contains(t, amb.Examples, "Real Madrid")
	assert.Contains(t, amb.Examples, "Real Sociedad")
}

func TestLookupNotFound(t *testing.T) {
	st := newFakeStore()
	st.clubs = []market.Entity{{ID: 1, Name: "Arsenal"}}

	_, err := market.Lookup(context.Background(), st, market.TableClubs, "Zzzzz")
	var nf *market.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Zzzzz", nf.Query)
	assert.Equal(t, market.TableClubs, nf.Table)
}
