package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrMissingDSN    = fmt.Errorf("missing database connection string")

	// Source errors
	ErrSourceUnavailable = fmt.Errorf("source unavailable")
	ErrUnknownTable      = fmt.Errorf("unknown source table")
	ErrNoData            = fmt.Errorf("no data exported from source")

	// Destination errors
	ErrDestinationUnavailable = fmt.Errorf("destination unreachable")
	ErrDirectoryQuery         = fmt.Errorf("directory query failed")
	ErrBatchAborted           = fmt.Errorf("batch aborted")

	// Migration errors
	ErrDuplicateKey       = fmt.Errorf("duplicate source id")
	ErrDependencyMissing  = fmt.Errorf("foreign key unresolved")
	ErrIdentityUnresolved = fmt.Errorf("no directory entry for email")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
