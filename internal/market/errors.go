package market

import (
	"errors"
	"fmt"
	"strings"
)

// Validation errors carry the user-facing messages surfaced by the form
// UI, so the phrasing below is deliberate.

// NotFoundError reports a free-text lookup with no match at all.
type NotFoundError struct {
	Query string
	Table Table
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No record found for '%s' in %s. Please create it first.", e.Query, e.Table)
}

// AmbiguousError reports a free-text lookup with several partial matches
// and no exact match. Examples holds up to three matching names for the
// disambiguation hint.
type AmbiguousError struct {
	Query    string
	Count    int
	Examples []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("'%s' is ambiguous. Found %d matches (e.g. %s...). Be specific.",
		e.Query, e.Count, strings.Join(e.Examples, ", "))
}

// ConflictingInputError reports a numeric dropdown selection supplied
// together with manual text for the same role.
type ConflictingInputError struct {
	Table Table
}

func (e *ConflictingInputError) Error() string {
	return fmt.Sprintf("Please select from the list OR type manually, not both for %s.", e.Table)
}

// IDNotFoundError reports a dropdown id with no matching row.
type IDNotFoundError struct {
	ID    string
	Table Table
}

func (e *IDNotFoundError) Error() string {
	return fmt.Sprintf("ID %s not found in %s.", e.ID, e.Table)
}

// MissingFieldsError lists the mandatory transfer fields left empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Missing fields: " + strings.Join(e.Fields, ", ")
}

var (
	ErrSameClub         = errors.New("From Club and To Club cannot be the same.")
	ErrInvalidFee       = errors.New("Fee must be a number greater than or equal to 0.")
	ErrInvalidDate      = errors.New("Invalid date format. Use YYYY-MM-DD.")
	ErrTransferNotFound = errors.New("Transfer not found.")
)

// RoleError tags a resolution failure with the role it occurred on, e.g.
// "Player Error: ID 7 not found in players."
type RoleError struct {
	Role string
	Err  error
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("%s Error: %v", e.Role, e.Err)
}

func (e *RoleError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err belongs to the validation taxonomy,
// as opposed to a database failure. Callers use this to pick the HTTP
// status; validation errors never require a rollback because they are
// raised before any write.
func IsValidation(err error) bool {
	var re *RoleError
	if errors.As(err, &re) {
		err = re.Err
	}
	var (
		nf  *NotFoundError
		amb *AmbiguousError
		ci  *ConflictingInputError
		inf *IDNotFoundError
		mf  *MissingFieldsError
	)
	switch {
	case errors.As(err, &nf), errors.As(err, &amb), errors.As(err, &ci),
		errors.As(err, &inf), errors.As(err, &mf):
		return true
	case errors.Is(err, ErrSameClub), errors.Is(err, ErrInvalidFee), errors.Is(err, ErrInvalidDate):
		return true
	}
	return false
}
