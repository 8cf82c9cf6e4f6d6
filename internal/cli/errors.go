// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/albert-tui/internal/config"
	"github.com/jeranaias/albert-tui/internal/export"
	"github.com/jeranaias/albert-tui/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the endpoint could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
)

// =============================================================================
// ERROR TYPES
// =============================================================================

var (
	// ErrUsage marks argument errors.
	ErrUsage = errors.New("invalid usage")

	// ErrEndpoint marks a one-shot exchange that ended in a transport failure.
	ErrEndpoint = errors.New("assistant endpoint unavailable")
)

// CommandError wraps a failure with the command that produced it.
type CommandError struct {
	Command string // Command that failed (e.g., "history", "config")
	Action  string // Action being performed (e.g., "show", "delete")
	Err     error  // Underlying error
}

func (e *CommandError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("%s failed: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

func newCommandError(command, action string, err error) error {
	if err == nil {
		return nil
	}
	return &CommandError{Command: command, Action: action, Err: err}
}

// usageArgs marks positional argument errors from validate as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", ErrUsage, err)
		}
		return nil
	}
}

// usageError marks cobra's command lookup failures as usage errors.
func usageError(err error) error {
	if err == nil || errors.Is(err, ErrUsage) {
		return err
	}
	if strings.HasPrefix(err.Error(), "unknown command ") {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return err
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var verr config.ValidateErrors
	switch {
	case errors.As(err, &verr), errors.Is(err, errConfigLoad):
		return ExitConfigError
	case errors.Is(err, ErrUsage), errors.Is(err, export.ErrUnsupportedFormat):
		return ExitUsageError
	case errors.Is(err, ErrEndpoint):
		return ExitNetworkError
	case errors.Is(err, storage.ErrConversationNotFound), errors.Is(err, storage.ErrAmbiguousID):
		return ExitNotFoundError
	default:
		return ExitGeneralError
	}
}
