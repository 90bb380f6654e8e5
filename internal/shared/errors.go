package shared

import "fmt"

var (
	// Remote operation errors
	ErrRemoteFetch  = fmt.Errorf("remote fetch failed")
	ErrRemoteCreate = fmt.Errorf("remote playlist creation failed")

	// Backup file errors
	ErrWriteBackup     = fmt.Errorf("backup write failed")
	ErrMalformedBackup = fmt.Errorf("malformed backup file")

	// Playlist reference errors, surfaced as-is to the user
	ErrAmbiguousReference  = fmt.Errorf("ambiguous playlist reference")
	ErrReferenceOutOfRange = fmt.Errorf("playlist reference out of range")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenNotFound    = fmt.Errorf("no cached token for account")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
