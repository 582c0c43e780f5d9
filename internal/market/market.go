// Package market implements the transfer entity resolution and
// synchronization core: free-text lookup of players and clubs,
// dropdown-vs-manual input arbitration, and the transactional transfer
// write path that keeps a player's current club in step with new
// transfers.
package market

import (
	"context"
	"strconv"
	"strings"
)

// Table identifies which entity table a lookup or resolution targets.
// Keeping table identity as a closed enum means caller input never
// reaches the SQL layer as a table name.
type Table int

const (
	TablePlayers Table = iota
	TableClubs
)

func (t Table) String() string {
	switch t {
	case TablePlayers:
		return "players"
	case TableClubs:
		return "clubs"
	}
	return "unknown"
}

// Entity is a player or club row as seen by the resolution core.
// Clubs carry a zero market value.
type Entity struct {
	ID          int64
	Name        string
	MarketValue float64
}

// InputKind tags how a form field for one role was populated.
type InputKind int

const (
	// Absent means the field was empty after trimming.
	Absent InputKind = iota
	// ByID means the field held a purely numeric dropdown selection.
	ByID
	// ByText means the field held free text.
	ByText
)

// Input is one role's form field in tagged form. Parsing the raw strings
// up front makes the selection-vs-manual precedence rules explicit
// instead of inferred from string shape at each branch.
type Input struct {
	Kind InputKind
	ID   int64
	Text string
}

// ParseSelection classifies a dropdown field: empty, a numeric id, or
// free text typed into the selection box.
func ParseSelection(raw string) Input {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Input{Kind: Absent}
	}
	if isDigits(s) {
		if id, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Input{Kind: ByID, ID: id, Text: s}
		}
	}
	return Input{Kind: ByText, Text: s}
}

// ParseManual classifies a manual-name field. Manual input is always
// treated as text, even when it happens to be numeric.
func ParseManual(raw string) Input {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Input{Kind: Absent}
	}
	return Input{Kind: ByText, Text: s}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Resolution is the outcome of resolving one role. The zero value is the
// intentional "empty but not erroneous" result for an absent role;
// whether an absent role is fatal is decided by the write pipeline.
type Resolution struct {
	ID          int64
	Name        string
	MarketValue float64
	Resolved    bool
}

func resolved(e *Entity) Resolution {
	return Resolution{ID: e.ID, Name: e.Name, MarketValue: e.MarketValue, Resolved: true}
}

// TransferRecord is the row shape written on create. Display names are
// stored alongside the foreign keys so transfers stay readable after an
// entity row is deleted.
type TransferRecord struct {
	PlayerID    *int64
	FromClubID  *int64
	ToClubID    *int64
	Date        string
	Season      string
	Fee         float64
	MarketValue float64
	PlayerName  string
	FromClub    string
	ToClub      string
}

// TransferUpdate is the editable subset of a transfer. Player identity
// is immutable after creation.
type TransferUpdate struct {
	FromClubID *int64
	ToClubID   *int64
	Date       string
	Season     string
	Fee        float64
	FromClub   string
	ToClub     string
}

// Store is the unit-of-work surface the resolution core runs against.
// Within a write pipeline every method call shares one transaction.
type Store interface {
	// Entity reads
	EntityByName(ctx context.Context, table Table, name string) (*Entity, error)
	CountMatches(ctx context.Context, table Table, fragment string) (int, error)
	MatchOne(ctx context.Context, table Table, fragment string) (*Entity, error)
	MatchExamples(ctx context.Context, table Table, fragment string) ([]string, error)
	EntityByID(ctx context.Context, table Table, id int64) (*Entity, error)

	// Transfer writes
	InsertTransfer(ctx context.Context, rec TransferRecord) (int64, error)
	UpdateTransfer(ctx context.Context, transferID int64, upd TransferUpdate) error
	TransferPlayerID(ctx context.Context, transferID int64) (*int64, error)
	SetPlayerCurrentClub(ctx context.Context, playerID, clubID int64) error
}

// DB scopes a function to a single database transaction. A non-nil error
// from fn rolls back every statement issued through the Store.
type DB interface {
	WithTx(ctx context.Context, fn func(Store) error) error
}
