package market

import "context"

// Lookup resolves free text to a single entity. An exact name match wins
// outright, regardless of how many partial matches also exist. Otherwise
// substring matches are counted: a single hit is fetched and returned,
// zero hits fail as not found, and two or more fail as ambiguous with up
// to three example names. Pure read; no write side effects.
func Lookup(ctx context.Context, s Store, table Table, query string) (*Entity, error) {
	e, err := s.EntityByName(ctx, table, query)
	if err != nil {
		return nil, err
	}
	if e != nil {
		return e, nil
	}

	n, err := s.CountMatches(ctx, table, query)
	if err != nil {
		return nil, err
	}

	switch {
	case n == 0:
		return nil, &NotFoundError{Query: query, Table: table}
	case n == 1:
		e, err := s.MatchOne(ctx, table, query)
		if err != nil {
			return nil, err
		}
		if e == nil {
			// Row vanished between count and fetch.
			return nil, &NotFoundError{Query: query, Table: table}
		}
		return e, nil
	default:
		examples, err := s.MatchExamples(ctx, table, query)
		if err != nil {
			return nil, err
		}
		return nil, &AmbiguousError{Query: query, Count: n, Examples: examples}
	}
}
