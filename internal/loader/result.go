// Package loader provides CSV bulk import for the transfer-market
// schema, with explicit-ID collision recovery and batched commits.
package loader

import "fmt"

// Result tracks counts and errors from one table import.
type Result struct {
	Table    string
	Inserted int
	Skipped  int
	Errors   []string
}

// Add merges another Result into this one.
func (r *Result) Add(other Result) {
	r.Inserted += other.Inserted
	r.Skipped += other.Skipped
	r.Errors = append(r.Errors, other.Errors...)
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the import.
func (r *Result) Summary() string {
	return fmt.Sprintf("table=%s inserted=%d skipped=%d errors=%d",
		r.Table, r.Inserted, r.Skipped, len(r.Errors))
}
