package market

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// TransferForm is the flat payload accepted by the write pipeline.
// All fields arrive as raw form strings.
type TransferForm struct {
	PlayerID       string `json:"player_id"`
	PlayerManual   string `json:"player_manual"`
	FromClubID     string `json:"from_club_id"`
	FromClubManual string `json:"from_club_manual"`
	ToClubID       string `json:"to_club_id"`
	ToClubManual   string `json:"to_club_manual"`
	Date           string `json:"transfer_date"`
	Season         string `json:"transfer_season"`
	Fee            string `json:"transfer_fee"`
}

// Service is the transfer write pipeline. Every operation runs as a
// single transaction: resolution reads, validation, the insert or
// update, and the current-club sync commit or roll back together.
type Service struct {
	db  DB
	log *slog.Logger
}

func NewService(db DB, logger *slog.Logger) *Service {
	return &Service{db: db, log: logger}
}

// CreateTransfer resolves the three roles, validates the assembled
// record, inserts it with denormalized name copies, and synchronizes the
// player's current club for today-or-future transfer dates.
func (s *Service) CreateTransfer(ctx context.Context, form TransferForm) (int64, error) {
	var transferID int64

	err := s.db.WithTx(ctx, func(st Store) error {
		player, err := Resolve(ctx, st, TablePlayers,
			ParseSelection(form.PlayerID), ParseManual(form.PlayerManual))
		if err != nil {
			return &RoleError{Role: "Player", Err: err}
		}
		from, err := Resolve(ctx, st, TableClubs,
			ParseSelection(form.FromClubID), ParseManual(form.FromClubManual))
		if err != nil {
			return &RoleError{Role: "From Club", Err: err}
		}
		to, err := Resolve(ctx, st, TableClubs,
			ParseSelection(form.ToClubID), ParseManual(form.ToClubManual))
		if err != nil {
			return &RoleError{Role: "To Club", Err: err}
		}

		if sameClub(from, to) {
			return ErrSameClub
		}

		var missing []string
		if !player.Resolved {
			missing = append(missing, "Player")
		}
		if !from.Resolved {
			missing = append(missing, "From Club")
		}
		if !to.Resolved {
			missing = append(missing, "To Club")
		}
		date := strings.TrimSpace(form.Date)
		if date == "" {
			missing = append(missing, "Date")
		}
		rawFee := strings.TrimSpace(form.Fee)
		if rawFee == "" {
			missing = append(missing, "Fee")
		}
		if len(missing) > 0 {
			return &MissingFieldsError{Fields: missing}
		}

		fee, err := strconv.ParseFloat(rawFee, 64)
		if err != nil || fee < 0 {
			return ErrInvalidFee
		}
		if _, err := time.Parse(dateLayout, date); err != nil {
			return ErrInvalidDate
		}

		transferID, err = st.InsertTransfer(ctx, TransferRecord{
			PlayerID:    idPtr(player),
			FromClubID:  idPtr(from),
			ToClubID:    idPtr(to),
			Date:        date,
			Season:      strings.TrimSpace(form.Season),
			Fee:         fee,
			MarketValue: player.MarketValue,
			PlayerName:  player.Name,
			FromClub:    from.Name,
			ToClub:      to.Name,
		})
		if err != nil {
			return err
		}

		return s.syncCurrentClub(ctx, st, idPtr(player), idPtr(to), date)
	})
	if err != nil {
		return 0, err
	}
	return transferID, nil
}

// UpdateTransfer edits the club, date, season, and fee fields of an
// existing transfer. Player identity is immutable, so the sync step
// re-reads the stored player id rather than trusting the form.
func (s *Service) UpdateTransfer(ctx context.Context, transferID int64, form TransferForm) error {
	return s.db.WithTx(ctx, func(st Store) error {
		from, err := Resolve(ctx, st, TableClubs,
			ParseSelection(form.FromClubID), ParseManual(form.FromClubManual))
		if err != nil {
			return &RoleError{Role: "From Club", Err: err}
		}
		to, err := Resolve(ctx, st, TableClubs,
			ParseSelection(form.ToClubID), ParseManual(form.ToClubManual))
		if err != nil {
			return &RoleError{Role: "To Club", Err: err}
		}

		if sameClub(from, to) {
			return ErrSameClub
		}

		fee, err := strconv.ParseFloat(strings.TrimSpace(form.Fee), 64)
		if err != nil || fee < 0 {
			return ErrInvalidFee
		}
		date := strings.TrimSpace(form.Date)
		if _, err := time.Parse(dateLayout, date); err != nil {
			return ErrInvalidDate
		}

		if err := st.UpdateTransfer(ctx, transferID, TransferUpdate{
			FromClubID: idPtr(from),
			ToClubID:   idPtr(to),
			Date:       date,
			Season:     strings.TrimSpace(form.Season),
			Fee:        fee,
			FromClub:   from.Name,
			ToClub:     to.Name,
		}); err != nil {
			return err
		}

		playerID, err := st.TransferPlayerID(ctx, transferID)
		if err != nil {
			return err
		}
		return s.syncCurrentClub(ctx, st, playerID, idPtr(to), date)
	})
}

// syncCurrentClub points the player at the destination club when the
// transfer takes effect today or later. Past-dated transfers are
// recorded without rewriting the player's current standing. The date was
// validated upstream; if it fails to parse here the sync is skipped
// rather than aborting the committed insert.
func (s *Service) syncCurrentClub(ctx context.Context, st Store, playerID, toClubID *int64, date string) error {
	if playerID == nil || toClubID == nil {
		return nil
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil
	}
	if beforeToday(d) {
		s.log.Info("current club left unchanged, transfer date is in the past",
			"player_id", *playerID, "transfer_date", date)
		return nil
	}
	return st.SetPlayerCurrentClub(ctx, *playerID, *toClubID)
}

// sameClub applies one identity rule on both the create and edit paths:
// compare resolved ids when both sides carry one, fall back to a trimmed
// case-insensitive name comparison otherwise. Unresolved roles never
// collide.
func sameClub(from, to Resolution) bool {
	if !from.Resolved || !to.Resolved {
		return false
	}
	if from.ID != 0 && to.ID != 0 {
		return from.ID == to.ID
	}
	return strings.EqualFold(strings.TrimSpace(from.Name), strings.TrimSpace(to.Name))
}

func beforeToday(d time.Time) bool {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, d.Location())
	return d.Before(today)
}

func idPtr(r Resolution) *int64 {
	if !r.Resolved {
		return nil
	}
	id := r.ID
	return &id
}
