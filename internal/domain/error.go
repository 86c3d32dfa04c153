package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrZeroCredits     = errors.New("plan has zero credits")
	ErrTerminalStatus  = errors.New("transaction is in a terminal status")
	ErrInvalidStatus   = errors.New("invalid status transition")
	ErrPlanReferenced  = errors.New("plan is referenced by transactions")
	ErrUnauthorized    = errors.New("unauthorized")

	// Infrastructure errors
	ErrInvalidExecContext = errors.New("invalid execution context")
)
