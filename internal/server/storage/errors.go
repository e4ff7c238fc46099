package storage

import "errors"

// Common storage errors
var (
	// ErrRowNotFound indicates that a resource row was not found
	ErrRowNotFound = errors.New("row not found")

	// ErrUnknownResource indicates that the resource name is not registered
	ErrUnknownResource = errors.New("unknown resource")

	// ErrBadColumn indicates a filter or order column the resource does not have
	ErrBadColumn = errors.New("unknown column")

	// ErrTenantNotFound indicates that tenant was not found in storage
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantAlreadyExists indicates that tenant with this id already exists
	ErrTenantAlreadyExists = errors.New("tenant already exists")
)
