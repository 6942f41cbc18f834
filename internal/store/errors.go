// Package store is the validated entity layer over the relational schema:
// sponsors, donations, templates, users, sessions and admin requests.
// Handlers do no database work of their own; every mutation and read goes
// through here.
package store

import "errors"

var (
	// ErrNotFound is returned when the requested row does not exist or is
	// soft-deleted.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateYear is returned when a sponsor already has a live
	// donation for the given year.
	ErrDuplicateYear = errors.New("sponsor already has a donation for this year")
	// ErrNoDefaultTemplate is returned when PDF generation runs without a
	// default receipt template.
	ErrNoDefaultTemplate = errors.New("no default template configured")
	// ErrNameTaken is returned when a user name is already registered.
	ErrNameTaken = errors.New("name already taken")
	// ErrInvalidInput is wrapped around field-level validation failures.
	ErrInvalidInput = errors.New("invalid input")
)
