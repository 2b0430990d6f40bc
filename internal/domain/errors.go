package domain

import "errors"

// Sentinel errors shared by the resolver, the store and the report commands.
// Callers match them with errors.Is; producers wrap them with context.
var (
	// ErrInvalidPostalCode means the postal code has too few digits to resolve.
	// The record is skipped from geographic aggregation.
	ErrInvalidPostalCode = errors.New("invalid postal code")

	// ErrRegionNotFound means no table entry or external service matched.
	ErrRegionNotFound = errors.New("region not found")

	// ErrExternalService wraps network, timeout and non-2xx failures from
	// third-party lookups. The record is skipped and the batch continues.
	ErrExternalService = errors.New("external service failure")

	// ErrDatabaseConnection is fatal for every command.
	ErrDatabaseConnection = errors.New("database connection failure")

	// ErrDatabaseQuery is reported per report section; the run continues.
	ErrDatabaseQuery = errors.New("database query failure")

	// ErrSurveyNotFound means no stored response has the requested id.
	ErrSurveyNotFound = errors.New("survey not found")
)
