package errors

import (
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeConfig represents configuration errors, fatal at startup
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeTransport represents network failures during a fetch
	ErrorTypeTransport ErrorType = "transport"
	// ErrorTypeParse represents unexpected page structure
	ErrorTypeParse ErrorType = "parse"
	// ErrorTypePersistence represents seen-store read/write failures
	ErrorTypePersistence ErrorType = "persistence"
	// ErrorTypeNotify represents digest delivery failures
	ErrorTypeNotify ErrorType = "notify"
	// ErrorTypeRateLimit represents rate limiting by the remote host
	ErrorTypeRateLimit ErrorType = "rate_limit"
)

// PipelineError represents a discovery-pipeline error with its origin context
type PipelineError struct {
	Type    ErrorType
	Target  string // query target or candidate URL the error relates to
	Message string
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Target, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Target, e.Message)
}

// Unwrap returns the underlying error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is worth retrying
func (e *PipelineError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeTransport, ErrorTypeNotify:
		return true
	default:
		return false
	}
}

// New creates a new PipelineError
func New(errType ErrorType, target, message string, err error) *PipelineError {
	return &PipelineError{
		Type:    errType,
		Target:  target,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewConfig creates a new configuration error
func NewConfig(message string, err error) *PipelineError {
	return New(ErrorTypeConfig, "", message, err)
}

// NewTransport creates a new transport error
func NewTransport(target, message string, err error) *PipelineError {
	return New(ErrorTypeTransport, target, message, err)
}

// NewParse creates a new parse error
func NewParse(target, message string, err error) *PipelineError {
	return New(ErrorTypeParse, target, message, err)
}

// NewPersistence creates a new persistence error
func NewPersistence(target, message string, err error) *PipelineError {
	return New(ErrorTypePersistence, target, message, err)
}

// NewNotify creates a new notify error
func NewNotify(target, message string, err error) *PipelineError {
	return New(ErrorTypeNotify, target, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(target string, duration time.Duration) *PipelineError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, target, message, nil)
}
