package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrModelNotConfigured = fmt.Errorf("extraction model not configured")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrInvalidToken     = fmt.Errorf("invalid access token")

	// Lyrics source errors
	ErrSongNotFound = fmt.Errorf("no matching song found")
	ErrLyricsFetch  = fmt.Errorf("lyrics could not be retrieved")

	// Extraction errors
	ErrInvalidModelOutput = fmt.Errorf("model output could not be parsed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrNotFound        = fmt.Errorf("record not found")
)
