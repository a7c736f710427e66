package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Journal data-quality errors
	ErrOverExit     = errors.New("exit quantity exceeds entry quantity")
	ErrInvalidTrade = errors.New("invalid trade record")

	// Quote source errors
	ErrQuoteUnavailable = errors.New("quote source is unavailable")
	ErrRateLimited      = errors.New("API rate limit exceeded")
	ErrConnectionFailed = errors.New("failed to connect to the quote source")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
	ErrUpdateFailed = errors.New("database update failed")
	ErrDeleteFailed = errors.New("database delete failed")
)
