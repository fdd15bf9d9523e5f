// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Collectors classify host failures with these codes so callers can tell a
// missing capability (ErrCodeUnavailable) from a dropped observation
// (ErrCodeMalformed, ErrCodeExcluded) without string matching.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeUnavailable,
//	    "container runtime not available",
//	    execErr,
//	    map[string]any{
//	        "command": "podman",
//	    },
//	)
package errors
