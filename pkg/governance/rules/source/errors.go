package source

import (
	"fmt"
	"strings"
)

// LoadError reports a rule file that could not be read.
type LoadError struct {
	FilePath string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load %s: %s: %v", e.FilePath, e.Message, e.Cause)
	}
	return fmt.Sprintf("load %s: %s", e.FilePath, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// ParseError reports a rule file with invalid YAML or invalid rules.
type ParseError struct {
	FilePath string
	RuleID   string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	loc := e.FilePath
	if e.RuleID != "" {
		loc += "#" + e.RuleID
	}
	if e.Cause != nil {
		return fmt.Sprintf("parse %s: %s: %v", loc, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse %s: %s", loc, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// ErrorList collects errors from a multi-file load.
type ErrorList struct {
	Errors []error
}

// Add appends err when it is non-nil.
func (l *ErrorList) Add(err error) {
	if err != nil {
		l.Errors = append(l.Errors, err)
	}
}

// HasErrors reports whether any error was collected.
func (l *ErrorList) HasErrors() bool {
	return len(l.Errors) > 0
}

// Error implements the error interface.
func (l *ErrorList) Error() string {
	msgs := make([]string, len(l.Errors))
	for i, err := range l.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d rule file error(s): %s", len(l.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (l *ErrorList) Unwrap() []error {
	return l.Errors
}
