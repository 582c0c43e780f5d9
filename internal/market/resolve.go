package market

import "context"

// Resolve arbitrates between a dropdown selection and a manually typed
// name for one role of a transfer.
//
// A numeric selection alongside manual text is rejected as conflicting
// input. A non-numeric selection is free text, so manual text takes
// precedence over it without a conflict; the tagged Input kinds keep
// that branch visible. Both fields absent yields an empty Resolution
// rather than an error; the write pipeline decides whether an absent
// role is fatal.
func Resolve(ctx context.Context, s Store, table Table, selected, manual Input) (Resolution, error) {
	if manual.Kind != Absent && selected.Kind == ByID {
		return Resolution{}, &ConflictingInputError{Table: table}
	}

	if manual.Kind != Absent {
		e, err := Lookup(ctx, s, table, manual.Text)
		if err != nil {
			return Resolution{}, err
		}
		return resolved(e), nil
	}

	switch selected.Kind {
	case ByText:
		e, err := Lookup(ctx, s, table, selected.Text)
		if err != nil {
			return Resolution{}, err
		}
		return resolved(e), nil
	case ByID:
		e, err := s.EntityByID(ctx, table, selected.ID)
		if err != nil {
			return Resolution{}, err
		}
		if e == nil {
			return Resolution{}, &IDNotFoundError{ID: selected.Text, Table: table}
		}
		return resolved(e), nil
	}

	return Resolution{}, nil
}
