package cli

import (
	"errors"
	"fmt"

	"wealthos/governance/pkg/governance"
)

// Exit codes returned by govctl.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitInvalid  = 2
	ExitNotFound = 3
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps an error onto the process exit status. Rejected input
// (validation, illegal override transitions, bad config) exits 2 and a
// missing record exits 3.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		verr *governance.ValidationError
		terr *governance.InvalidTransitionError
		qerr *governance.QueryError
		cerr *ConfigError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &terr), errors.As(err, &qerr), errors.As(err, &cerr):
		return ExitInvalid
	case errors.Is(err, governance.ErrNotFound):
		return ExitNotFound
	default:
		return ExitFailure
	}
}
