package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeFetch is a detail page network/HTTP failure; the listing is skipped
	ErrorTypeFetch ErrorType = "fetch"
	// ErrorTypeFatalFetch is a listings page failure; the whole run is aborted
	ErrorTypeFatalFetch ErrorType = "fatal_fetch"
	// ErrorTypeParsing represents malformed or missing markup
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeBudgetExhausted signals the request budget ran out. It is not a failure.
	ErrorTypeBudgetExhausted ErrorType = "budget_exhausted"
	// ErrorTypePersistenceConflict marks a duplicate job by URL or title+company
	ErrorTypePersistenceConflict ErrorType = "persistence_conflict"
	// ErrorTypeSummarize represents a summarizer failure
	ErrorTypeSummarize ErrorType = "summarize"
	// ErrorTypeStorage represents database errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeRateLimit represents rate limiting errors
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeConfiguration represents configuration errors
	ErrorTypeConfiguration ErrorType = "configuration"
)

// CrawlerError represents a crawler-specific error
type CrawlerError struct {
	Type     ErrorType
	Provider string
	Message  string
	Err      error
	Time     time.Time
}

// Error implements the error interface
func (e *CrawlerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Provider, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Provider, e.Message)
}

// Unwrap returns the underlying error
func (e *CrawlerError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *CrawlerError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeFetch, ErrorTypeFatalFetch, ErrorTypeStorage:
		return true
	default:
		return false
	}
}

// New creates a new CrawlerError
func New(errType ErrorType, provider, message string, err error) *CrawlerError {
	return &CrawlerError{
		Type:     errType,
		Provider: provider,
		Message:  message,
		Err:      err,
		Time:     time.Now(),
	}
}

// NewFetch creates a new detail page fetch error
func NewFetch(provider, message string, err error) *CrawlerError {
	return New(ErrorTypeFetch, provider, message, err)
}

// NewFatalFetch creates a new listings page fetch error
func NewFatalFetch(provider, message string, err error) *CrawlerError {
	return New(ErrorTypeFatalFetch, provider, message, err)
}

// NewParsing creates a new parsing error
func NewParsing(provider, message string, err error) *CrawlerError {
	return New(ErrorTypeParsing, provider, message, err)
}

// NewBudgetExhausted creates the early-stop signal for a spent budget
func NewBudgetExhausted(provider string, limit int) *CrawlerError {
	return New(ErrorTypeBudgetExhausted, provider, fmt.Sprintf("request budget of %d exhausted", limit), nil)
}

// NewPersistenceConflict creates a duplicate job error
func NewPersistenceConflict(provider, message string) *CrawlerError {
	return New(ErrorTypePersistenceConflict, provider, message, nil)
}

// NewSummarize creates a new summarizer error
func NewSummarize(provider, message string, err error) *CrawlerError {
	return New(ErrorTypeSummarize, provider, message, err)
}

// NewStorage creates a new storage error
func NewStorage(provider, message string, err error) *CrawlerError {
	return New(ErrorTypeStorage, provider, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(provider string, duration time.Duration) *CrawlerError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, provider, message, nil)
}

// NewConfiguration creates a new configuration error
func NewConfiguration(message string, err error) *CrawlerError {
	return New(ErrorTypeConfiguration, "", message, err)
}

// TypeOf returns the ErrorType carried by err, or "" when err is not a CrawlerError
func TypeOf(err error) ErrorType {
	var ce *CrawlerError
	if errors.As(err, &ce) {
		return ce.Type
	}
	return ""
}

// Is reports whether err is a CrawlerError of the given type
func Is(err error, errType ErrorType) bool {
	return err != nil && TypeOf(err) == errType
}
