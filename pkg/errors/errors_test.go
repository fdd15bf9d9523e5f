package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNotFound, "resource not found")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Message != "resource not found" {
		t.Errorf("expected message 'resource not found', got %s", err.Message)
	}
	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeInternal, "operation failed", cause)

	if err.Code != ErrCodeInternal {
		t.Errorf("expected code %s, got %s", ErrCodeInternal, err.Code)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be wrapped")
	}
}

func TestWrapWithContext(t *testing.T) {
	cause := errors.New("executable file not found in $PATH")
	ctx := map[string]any{
		"command": "podman",
		"runtime": "podman",
	}

	err := WrapWithContext(ErrCodeUnavailable, "container runtime not available", cause, ctx)

	if err.Code != ErrCodeUnavailable {
		t.Errorf("expected code %s, got %s", ErrCodeUnavailable, err.Code)
	}
	if err.Context == nil {
		t.Fatal("expected context to be set")
	}
	if err.Context["command"] != "podman" {
		t.Errorf("expected command to be podman")
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StructuredError
		expected string
	}{
		{
			name:     "error without cause",
			err:      New(ErrCodeNotFound, "not found"),
			expected: "[NOT_FOUND] not found",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeInternal, "failed", errors.New("root cause")),
			expected: "[INTERNAL] failed: root cause",
		},
		{
			name:     "malformed observation",
			err:      New(ErrCodeMalformed, "container name is empty"),
			expected: "[MALFORMED_OBSERVATION] container name is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Wrap(ErrCodeInternal, "wrapped", cause)

	unwrapped := err.Unwrap()
	if !errors.Is(unwrapped, cause) {
		t.Errorf("expected unwrapped error to be original cause")
	}

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is should work with Unwrap")
	}
}

func TestIsCode(t *testing.T) {
	inner := New(ErrCodeUnavailable, "ss not found")
	outer := Wrap(ErrCodeInternal, "socket scan failed", inner)
	wrapped := fmt.Errorf("detector: %w", outer)

	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"nil error", nil, ErrCodeInternal, false},
		{"plain error", errors.New("boom"), ErrCodeInternal, false},
		{"outer code", wrapped, ErrCodeInternal, true},
		{"inner code", wrapped, ErrCodeUnavailable, true},
		{"absent code", wrapped, ErrCodeTimeout, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsCode(tt.err, tt.code); got != tt.want {
				t.Errorf("IsCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("expected empty code, got %s", got)
	}
	err := fmt.Errorf("wrapped: %w", New(ErrCodeExcluded, "exited"))
	if got := CodeOf(err); got != ErrCodeExcluded {
		t.Errorf("expected %s, got %s", ErrCodeExcluded, got)
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeNotFound,
		ErrCodeTimeout,
		ErrCodeInternal,
		ErrCodeInvalidRequest,
		ErrCodeUnavailable,
		ErrCodeMalformed,
		ErrCodeExcluded,
	}

	for _, code := range codes {
		if string(code) == "" {
			t.Errorf("error code should not be empty: %v", code)
		}
	}
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name  string
		cause error
		want  ErrorCode
	}{
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout},
		{"canceled", context.Canceled, ErrCodeTimeout},
		{"wrapped deadline", fmt.Errorf("inspect: %w", context.DeadlineExceeded), ErrCodeTimeout},
		{"other", errors.New("bus closed"), ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromContext(tt.cause, "collection did not finish", map[string]any{"collection_id": "c1"})
			if err.Code != tt.want {
				t.Errorf("expected code %s, got %s", tt.want, err.Code)
			}
			if !errors.Is(err, tt.cause) {
				t.Errorf("expected cause to be wrapped")
			}
			if err.Context["collection_id"] != "c1" {
				t.Errorf("expected context to be kept")
			}
		})
	}
}
