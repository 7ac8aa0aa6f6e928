package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common error conditions
var (
	// ErrInvalidConfig is returned when option overrides cannot be applied
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSourceUnavailable is returned when a browser data source cannot be read
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSnapshotNotLoaded is returned when a search runs before any snapshot was built
	ErrSnapshotNotLoaded = errors.New("snapshot not loaded")

	// ErrMatcherFailed is returned when a matching strategy fails for a term or entity
	ErrMatcherFailed = errors.New("matcher failed")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// ConfigError represents an invalid option override with context
type ConfigError struct {
	Key      string
	Message  string
	Problems []string
}

func (e *ConfigError) Error() string {
	if len(e.Problems) > 0 {
		return fmt.Sprintf("invalid configuration: %s", strings.Join(e.Problems, "; "))
	}
	if e.Key != "" {
		return fmt.Sprintf("invalid configuration for key '%s': %s", e.Key, e.Message)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Message)
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError for a single key
func NewConfigError(key, message string) *ConfigError {
	return &ConfigError{Key: key, Message: message}
}

// NewConfigProblemsError creates a ConfigError from a list of validation problems
func NewConfigProblemsError(problems []string) *ConfigError {
	return &ConfigError{Problems: problems}
}

// SourceError represents a failure reading one of the browser data sources
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source '%s' unavailable: %v", e.Source, e.Err)
}

func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// NewSourceError creates a new SourceError
func NewSourceError(source string, err error) *SourceError {
	return &SourceError{Source: source, Err: err}
}

// MatcherError represents a failure inside a matching strategy
type MatcherError struct {
	Approach string
	Detail   string
}

func (e *MatcherError) Error() string {
	return fmt.Sprintf("%s matcher failed: %s", e.Approach, e.Detail)
}

func (e *MatcherError) Is(target error) bool {
	return target == ErrMatcherFailed
}

// NewMatcherError creates a new MatcherError
func NewMatcherError(approach, detail string) *MatcherError {
	return &MatcherError{Approach: approach, Detail: detail}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
