package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, ErrCodeInternal, "load store channel")

	if got := err.Error(); got != "load store channel: connection reset" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}

	bare := NotFound("job not found")
	if got := bare.Error(); got != "job not found" {
		t.Errorf("Error() = %q", got)
	}
	if bare.Unwrap() != nil {
		t.Error("Unwrap() should be nil without a cause")
	}
}

func TestWrap_NilError(t *testing.T) {
	if Wrap(nil, ErrCodeInternal, "x") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, ErrCodeInternal, "x %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
		is   func(error) bool
	}{
		{"not found", NotFound("x"), ErrCodeNotFound, IsNotFound},
		{"not foundf", NotFoundf("job %s", "1"), ErrCodeNotFound, IsNotFound},
		{"conflict", Conflict("x"), ErrCodeConflict, IsConflict},
		{"validation", Validation("x"), ErrCodeValidation, IsValidation},
		{"validationf", Validationf("bad %s", "kind"), ErrCodeValidation, IsValidation},
		{"validation field", ValidationField("recipient", "x"), ErrCodeValidation, IsValidation},
		{"unavailable", Unavailable(errors.New("dial"), "x"), ErrCodeUnavailable, IsUnavailable},
		{"internal", Internal("x"), ErrCodeInternal, IsInternal},
		{"timeout", Wrap(errors.New("t"), ErrCodeTimeout, "x"), ErrCodeTimeout, IsTimeout},
		{"canceled", Wrap(errors.New("c"), ErrCodeCanceled, "x"), ErrCodeCanceled, IsCanceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("code = %v, want %v", tt.err.Code, tt.code)
			}
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !tt.is(wrapped) {
				t.Errorf("predicate should match through wrapping")
			}
			if GetCode(wrapped) != tt.code {
				t.Errorf("GetCode() = %v, want %v", GetCode(wrapped), tt.code)
			}
		})
	}
}

func TestGetFieldAndMessage(t *testing.T) {
	err := fmt.Errorf("enqueue: %w", ValidationField("store_id", "store id is required"))
	if got := GetField(err); got != "store_id" {
		t.Errorf("GetField() = %q", got)
	}
	if got := GetMessage(err); got != "store id is required" {
		t.Errorf("GetMessage() = %q", got)
	}

	plain := errors.New("plain")
	if GetField(plain) != "" || GetCode(plain) != "" {
		t.Error("plain errors carry no code or field")
	}
	if GetMessage(plain) != "plain" {
		t.Error("GetMessage should fall back to Error()")
	}
	if GetMessage(nil) != "" {
		t.Error("GetMessage(nil) should be empty")
	}
}
