package market_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kicktrack/transferdata/internal/market"
)

func newTestService(st *fakeStore) *market.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return market.NewService(&fakeDB{store: st}, logger)
}

func seededStore() *fakeStore {
	st := newFakeStore()
	st.players = []market.Entity{
		{ID: 1, Name: "Declan Rice", MarketValue: 90000000},
	}
	st.clubs = []market.Entity{
		{ID: 10, Name: "Arsenal"},
		{ID: 11, Name: "Chelsea"},
		{ID: 12, Name: "West Ham United"},
	}
	return st
}

func dateOffset(days int) string {
	return time.Now().AddDate(0, 0, days).Format("2006-01-02")
}

func validForm() market.TransferForm {
	return market.TransferForm{
		PlayerManual:   "Declan Rice",
		FromClubManual: "West Ham",
		ToClubManual:   "Arsenal",
		Date:           dateOffset(1),
		Season:         "25/26",
		Fee:            "105000000",
	}
}

func TestCreateTransfer(t *testing.T) {
	st := seededStore()
	svc := newTestService(st)

	id, err := svc.CreateTransfer(context.Background(), validForm())
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	rec := st.transfers[id]
	require.NotNil(t, rec.PlayerID)
	assert.Equal(t, int64(1), *rec.PlayerID)
	assert.Equal(t, "Declan Rice", rec.PlayerName)
	assert.Equal(t, "West Ham United", rec.FromClub)
	assert.Equal(t, "Arsenal", rec.ToClub)
	assert.Equal(t, float64(105000000), rec.Fee)
	// Market value snapshot comes from the resolved player.
	assert.Equal(t, float64(90000000), rec.MarketValue)
}

func TestCreateTransferRoleErrorAbortsBeforeWrite(t *testing.T) {
	st := seededStore()
	svc := newTestService(st)

	form := validForm()
	form.PlayerManual = "Nobody"
	_, err := svc.CreateTransfer(context.Background(), form)
	var re *market.RoleError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Player", re.Role)
	var nf *market.NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Empty(t, st.transfers)
}

func TestCreateTransferSameClub(t *testing.T) {
	st := seededStore()
	svc := newTestService(st)

	form := validForm()
	form.FromClubManual = "Chelsea"
	form.ToClubManual = "chelsea "
	_, err := svc.CreateTransfer(context.Background(), form)
	assert.ErrorIs(t, err, market.ErrSameClub)
	assert.Empty(t, st.transfers)
}

func TestCreateTransferMissingFields(t *testing.T) {
	st := seededStore()
	svc := newTestService(st)

	form := market.TransferForm{
		PlayerManual: "Declan Rice",
		ToClubManual: "Arsenal",
	}
	_, err := svc.CreateTransfer(context.Background(), form)
	var mf *market.MissingFieldsError
	require.ErrorAs(t, err, &mf)
	assert.Equal(t, []string{"From Club", "Date", "Fee"}, mf.Fields)
}

func TestCreateTransferFeeBoundary(t *testing.T) {
	st := seededStore()
	svc := newTestService(st)

	form := validForm()
	form.Fee = "0"
	_, err := svc.CreateTransfer(context.Background(), form)
	assert.NoError(t, err, "zero fee is a valid free transfer")

	form = validForm()
	form.Fee = "-1"
	_, err = svc.CreateTransfer(context.Background(), form)
	assert.ErrorIs(t, err, market.ErrInvalidFee)

	form = validForm()
	form.Fee = "a lot"
	_, err = svc.CreateTransfer(context.Background(), form)
	assert.ErrorIs(t, err, market.ErrInvalidFee)
}

func TestCreateTransferInvalidDate(t *testing.T) {
	st := seededStore()
	svc := newTestService(st)

	form := validForm()
	form.Date = "31/12/2025"
	_, err := svc.CreateTransfer(context.Background(), form)
	assert.ErrorIs(t, err, market.ErrInvalidDate)
}

func TestCreateTransferFutureDateSyncsCurrentClub(t *testing.T) {
	st := seededStore()
	svc := newTestService(st)

	form := validForm()
	form.Date = dateOffset(1)
	_, err := svc.CreateTransfer(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, int64(10), st.currentClub[1])
}

func TestCreateTransferTodaySyncsCurrentClub(t *testing.T) {
	st := seededStore()
	svc := newTestService(st)

	form := validForm()
	form.Date = dateOffset(0)
	_, err := svc.CreateTransfer(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, int64(10), st.currentClub[1])
}

func TestCreateTransferPastDateDoesNotSync(t *testing.T) {
	st := seededStore()
	svc := newTestService(st)

	form := validForm()
	form.Date = dateOffset(-365)
	_, err := svc.CreateTransfer(context.Background(), form)
	require.NoError(t, err)
	_, synced := st.currentClub[1]
	assert.False(t, synced, "past-dated transfers must not rewrite the current club")
	assert.Len(t, st.transfers, 1, "the transfer itself is still recorded")
}

func TestCreateTransferSyncFailureRollsBackInsert(t *testing.T) {
	st := seededStore()
	st.syncErr = errors.New("deadlock detected")
	svc := newTestService(st)

	_, err := svc.CreateTransfer(context.Background(), validForm())
	require.Error(t, err)
	assert.Empty(t, st.transfers, "insert must roll back with the failed sync")
	assert.Empty(t, st.currentClub)
}

func TestUpdateTransfer(t *testing.T) {
	st := seededStore()
	svc := newTestService(st)

	id, err := svc.CreateTransfer(context.Background(), validForm())
	require.NoError(t, err)

	form := market.TransferForm{
		FromClubID: "12",
		ToClubID:   "11",
		Date:       dateOffset(2),
		Season:     "25/26",
		Fee:        "99000000",
	}
	require.NoError(t, svc.UpdateTransfer(context.Background(), id, form))

	rec := st.transfers[id]
	require.NotNil(t, rec.ToClubID)
	assert.Equal(t, int64(11), *rec.ToClubID)
	assert.Equal(t, "Chelsea", rec.ToClub)
	// Player identity is immutable; the sync re-reads the stored id.
	assert.Equal(t, int64(11), st.currentClub[1])
}

func TestUpdateTransferSameClubByID(t *testing.T) {
	st := seededStore()
	svc := newTestService(st)

	id, err := svc.CreateTransfer(context.Background(), validForm())
	require.NoError(t, err)

	form := market.TransferForm{
		FromClubID: "10",
		ToClubID:   "10",
		Date:       dateOffset(1),
		Fee:        "0",
	}
	err = svc.UpdateTransfer(context.Background(), id, form)
	assert.ErrorIs(t, err, market.ErrSameClub)
}

func TestUpdateTransferPastDateLeavesClubAlone(t *testing.T) {
	st := seededStore()
	svc := newTestService(st)

	id, err := svc.CreateTransfer(context.Background(), validForm())
	require.NoError(t, err)
	require.Equal(t, int64(10), st.currentClub[1])

	form := market.TransferForm{
		FromClubID: "12",
		ToClubID:   "11",
		Date:       dateOffset(-30),
		Fee:        "99000000",
	}
	require.NoError(t, svc.UpdateTransfer(context.Background(), id, form))
	assert.Equal(t, int64(10), st.currentClub[1], "backdated edit must not move the player")
}

func TestUpdateTransferNotFound(t *testing.T) {
	st := seededStore()
	svc := newTestService(st)

	form := market.TransferForm{
		FromClubID: "12",
		ToClubID:   "11",
		Date:       dateOffset(1),
		Fee:        "0",
	}
	err := svc.UpdateTransfer(context.Background(), 404, form)
	assert.ErrorIs(t, err, market.ErrTransferNotFound)
}

func TestIsValidation(t *testing.T) {
	assert.True(t, market.IsValidation(market.ErrSameClub))
	assert.True(t, market.IsValidation(&market.RoleError{
		Role: "Player",
		Err:  &market.NotFoundError{Query: "x", Table: market.TablePlayers},
	}))
	assert.False(t, market.IsValidation(errors.New("connection refused")))
	assert.False(t, market.IsValidation(market.ErrTransferNotFound))
}
