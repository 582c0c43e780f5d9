package market_test

import (
	"context"
	"sort"
	"strings"

	"github.com/kicktrack/transferdata/internal/market"
)

// fakeStore is an in-memory Store. fakeDB snapshots it around WithTx so
// a failed pipeline restores the pre-transaction state, mirroring a
// rollback.
type fakeStore struct {
	players []market.Entity
	clubs   []market.Entity

	transfers      map[int64]market.TransferRecord
	nextTransferID int64
	currentClub    map[int64]int64

	syncErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		transfers:      make(map[int64]market.TransferRecord),
		nextTransferID: 1,
		currentClub:    make(map[int64]int64),
	}
}

func (f *fakeStore) rows(table market.Table) []market.Entity {
	if table == market.TablePlayers {
		return f.players
	}
	return f.clubs
}

func (f *fakeStore) EntityByName(_ context.Context, table market.Table, name string) (*market.Entity, error) {
	for _, e := range f.rows(table) {
		if e.Name == name {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) matches(table market.Table, fragment string) []market.Entity {
	var out []market.Entity
	for _, e := range f.rows(table) {
		if strings.Contains(strings.ToLower(e.Name), strings.ToLower(fragment)) {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeStore) CountMatches(_ context.Context, table market.Table, fragment string) (int, error) {
	return len(f.matches(table, fragment)), nil
}

func (f *fakeStore) MatchOne(_ context.Context, table market.Table, fragment string) (*market.Entity, error) {
	m := f.matches(table, fragment)
	if len(m) == 0 {
		return nil, nil
	}
	e := m[0]
	return &e, nil
}

func (f *fakeStore) MatchExamples(_ context.Context, table market.Table, fragment string) ([]string, error) {
	m := f.matches(table, fragment)
	names := make([]string, 0, 3)
	for _, e := range m {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	if len(names) > 3 {
		names = names[:3]
	}
	return names, nil
}

func (f *fakeStore) EntityByID(_ context.Context, table market.Table, id int64) (*market.Entity, error) {
	for _, e := range f.rows(table) {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) InsertTransfer(_ context.Context, rec market.TransferRecord) (int64, error) {
	id := f.nextTransferID
	f.nextTransferID++
	f.transfers[id] = rec
	return id, nil
}

func (f *fakeStore) UpdateTransfer(_ context.Context, transferID int64, upd market.TransferUpdate) error {
	rec, ok := f.transfers[transferID]
	if !ok {
		return market.ErrTransferNotFound
	}
	rec.FromClubID = upd.FromClubID
	rec.ToClubID = upd.ToClubID
	rec.Date = upd.Date
	rec.Season = upd.Season
	rec.Fee = upd.Fee
	rec.FromClub = upd.FromClub
	rec.ToClub = upd.ToClub
	f.transfers[transferID] = rec
	return nil
}

func (f *fakeStore) TransferPlayerID(_ context.Context, transferID int64) (*int64, error) {
	rec, ok := f.transfers[transferID]
	if !ok {
		return nil, nil
	}
	return rec.PlayerID, nil
}

func (f *fakeStore) SetPlayerCurrentClub(_ context.Context, playerID, clubID int64) error {
	if f.syncErr != nil {
		return f.syncErr
	}
	f.currentClub[playerID] = clubID
	return nil
}

func (f *fakeStore) snapshot() *fakeStore {
	cp := &fakeStore{
		players:        append([]market.Entity(nil), f.players...),
		clubs:          append([]market.Entity(nil), f.clubs...),
		transfers:      make(map[int64]market.TransferRecord, len(f.transfers)),
		nextTransferID: f.nextTransferID,
		currentClub:    make(map[int64]int64, len(f.currentClub)),
		syncErr:        f.syncErr,
	}
	for k, v := range f.transfers {
		cp.transfers[k] = v
	}
	for k, v := range f.currentClub {
		cp.currentClub[k] = v
	}
	return cp
}

type fakeDB struct {
	store *fakeStore
}

func (db *fakeDB) WithTx(_ context.Context, fn func(market.Store) error) error {
	before := db.store.snapshot()
	if err := fn(db.store); err != nil {
		*db.store = *before
		return err
	}
	return nil
}
