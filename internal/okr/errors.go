package okr

import "errors"

var (
	// ErrNotFound is returned when a referenced person, objective or key result is absent.
	ErrNotFound = errors.New("not found")
	// ErrAdoptionDenied is returned when the adoption rules reject a request.
	ErrAdoptionDenied = errors.New("adoption denied")
	// ErrConfiguration flags a malformed reporting graph: self-managed
	// people, cycles, cross-organization managers or duplicate owners.
	ErrConfiguration = errors.New("configuration error")
)
