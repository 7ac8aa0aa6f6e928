// Package api provides validation utilities for API request handling.
package api

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-browser-search/model"
)

const (
	maxQueryLength      = 512
	maxMultiSearchItems = 20
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateQuery checks a raw query string. An empty query is valid: it
// produces an inactive result rather than an error.
func ValidateQuery(field, query string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if !utf8.ValidString(query) {
		result.AddError(field, "Query must be valid UTF-8")
		return result
	}
	if n := utf8.RuneCountInString(query); n > maxQueryLength {
		result.AddError(field, fmt.Sprintf("Query is too long (%d characters, maximum %d)", n, maxQueryLength))
	}
	return result
}

// ValidateMultiSearchRequest checks the query list of a multi-search request.
func ValidateMultiSearchRequest(req *MultiSearchRequest) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(req.Queries) == 0 {
		result.AddError("queries", "At least one query is required")
		return result
	}
	if len(req.Queries) > maxMultiSearchItems {
		result.AddError("queries", fmt.Sprintf("Too many queries (%d, maximum %d)", len(req.Queries), maxMultiSearchItems))
		return result
	}

	seen := make(map[string]bool, len(req.Queries))
	for i, q := range req.Queries {
		field := fmt.Sprintf("queries[%d]", i)
		name := strings.TrimSpace(q.Name)
		switch {
		case name == "":
			result.AddError(field+".name", "Query name is required")
		case seen[name]:
			result.AddError(field+".name", fmt.Sprintf("Duplicate query name '%s'", name))
		}
		seen[name] = true

		for _, e := range ValidateQuery(field+".query", q.Query).Errors {
			result.AddError(e.Field, e.Message)
		}
	}
	return result
}

// ValidateJobStatus parses an optional job status filter.
func ValidateJobStatus(raw string) (*model.JobStatus, *ValidationResult) {
	result := &ValidationResult{Valid: true}
	if raw == "" {
		return nil, result
	}

	status := model.JobStatus(raw)
	switch status {
	case model.JobStatusPending, model.JobStatusRunning, model.JobStatusCompleted, model.JobStatusFailed, model.JobStatusCancelled:
		return &status, result
	}
	result.AddError("status", fmt.Sprintf("Unknown job status '%s'", raw))
	return nil, result
}

// SendValidationError sends a standardized validation error response
func SendValidationError(c *gin.Context, result *ValidationResult) {
	SendStructuredValidationError(c, result)
}

// ValidateJSONBinding validates JSON binding and returns a standardized error
func ValidateJSONBinding(c *gin.Context, target interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if err := c.ShouldBindJSON(target); err != nil {
		result.AddError("request_body", "Invalid request body: "+err.Error())
	}

	return result
}
