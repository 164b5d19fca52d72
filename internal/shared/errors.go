package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig       = fmt.Errorf("configuration not found")
	ErrInvalidConfig       = fmt.Errorf("invalid configuration")
	ErrMissingProviderAuth = fmt.Errorf("no linked credentials for provider")

	// Provider and transport errors
	ErrProviderRequest  = fmt.Errorf("provider request failed")
	ErrRateLimited      = fmt.Errorf("provider rate limit exceeded")
	ErrCircuitOpen      = fmt.Errorf("provider circuit breaker open")
	ErrUnknownProvider  = fmt.Errorf("unknown provider")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")
	ErrEmptyPlaylist    = fmt.Errorf("playlist has no tracks")

	// Job errors
	ErrJobNotFound = fmt.Errorf("migration job not found")
	ErrJobTerminal = fmt.Errorf("migration job already in a terminal state")
	ErrInvalidJob  = fmt.Errorf("invalid migration job")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
