// Package apperrors defines application-level error types.
package apperrors

import (
	"fmt"
	"strings"
)

// ValidationError indicates a scene document, flag or batch request is invalid.
type ValidationError struct {
	Field   string   // Field that failed validation
	Message string   // Error message
	Details []string // Additional details
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s (%d issues)", e.Field, e.Message, len(e.Details))
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, details ...string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: details,
	}
}

// GenerationError indicates the scene could not be turned into source, e.g. an
// unresolved script reference or a declaration collision.
type GenerationError struct {
	Cause   error
	Scene   string
	Details []string
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed for scene %s: %v", e.Scene, e.Cause)
	}
	return fmt.Sprintf("generation failed for scene %s (%d issues)", e.Scene, len(e.Details))
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// NewGenerationError creates a new generation error.
func NewGenerationError(scene string, cause error, details ...string) *GenerationError {
	return &GenerationError{
		Scene:   scene,
		Cause:   cause,
		Details: details,
	}
}

// ToolchainError indicates an external tool exited unsuccessfully.
// Diagnostics holds the tool's stderr verbatim.
type ToolchainError struct {
	Cause       error
	Tool        string
	ExitCode    int
	Diagnostics string
}

func (e *ToolchainError) Error() string {
	var msg string
	switch {
	case e.Cause != nil && e.ExitCode < 0:
		msg = fmt.Sprintf("%s could not be run: %v", e.Tool, e.Cause)
	case e.Cause != nil && e.ExitCode == 0:
		msg = fmt.Sprintf("%s failed: %v", e.Tool, e.Cause)
	default:
		msg = fmt.Sprintf("%s failed with exit code %d", e.Tool, e.ExitCode)
	}
	if diag := strings.TrimSpace(e.Diagnostics); diag != "" {
		msg += ":\n" + diag
	}
	return msg
}

func (e *ToolchainError) Unwrap() error {
	return e.Cause
}

// NewToolchainError creates a new toolchain error.
func NewToolchainError(tool string, exitCode int, diagnostics string, cause error) *ToolchainError {
	return &ToolchainError{
		Tool:        tool,
		ExitCode:    exitCode,
		Diagnostics: diagnostics,
		Cause:       cause,
	}
}

// PackagingError indicates the document or archive could not be written.
type PackagingError struct {
	Cause error
	Path  string
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("packaging %s: %v", e.Path, e.Cause)
}

func (e *PackagingError) Unwrap() error {
	return e.Cause
}

// NewPackagingError creates a new packaging error.
func NewPackagingError(path string, cause error) *PackagingError {
	return &PackagingError{
		Path:  path,
		Cause: cause,
	}
}

// VerificationError indicates the compiled binary misbehaved under the headless bridge.
type VerificationError struct {
	Cause   error
	Message string
}

func (e *VerificationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("verification failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("verification failed: %s", e.Message)
}

func (e *VerificationError) Unwrap() error {
	return e.Cause
}

// NewVerificationError creates a new verification error.
func NewVerificationError(message string, cause error) *VerificationError {
	return &VerificationError{
		Message: message,
		Cause:   cause,
	}
}

// ConfigurationError indicates system config or setup issue.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}
