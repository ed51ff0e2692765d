package islet

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	// Verify sentinel errors are distinct
	errs := []error{
		ErrAlreadyRegistered,
		ErrUnknownComponent,
		ErrNoConfiguration,
		ErrInvalidProps,
		ErrSealedProps,
		ErrLoadFailed,
		ErrDetached,
	}

	for i, err1 := range errs {
		for j, err2 := range errs {
			if i != j && errors.Is(err1, err2) {
				t.Errorf("Sentinel errors should be distinct: %v and %v", err1, err2)
			}
		}
	}
}

func TestIsUnknownComponent(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrUnknownComponent", ErrUnknownComponent, true},
		{"ErrLoadFailed", ErrLoadFailed, true},
		{"wrapped ErrUnknownComponent", fmt.Errorf("wrapped: %w", ErrUnknownComponent), true},
		{"wrapped ErrLoadFailed", fmt.Errorf("wrapped: %w", ErrLoadFailed), true},
		{"ErrInvalidProps", ErrInvalidProps, false},
		{"other error", errors.New("other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsUnknownComponent(tt.err)
			if result != tt.expect {
				t.Errorf("IsUnknownComponent(%v) = %v, want %v", tt.err, result, tt.expect)
			}
		})
	}
}

func TestIsConfigError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		expect bool
	}{
		{"nil error", nil, false},
		{"ErrNoConfiguration", ErrNoConfiguration, true},
		{"ErrInvalidProps", ErrInvalidProps, true},
		{"ErrSealedProps", ErrSealedProps, true},
		{"wrapped ErrInvalidProps", fmt.Errorf("element %q: %w", "x", ErrInvalidProps), true},
		{"ErrUnknownComponent", ErrUnknownComponent, false},
		{"ErrDetached", ErrDetached, false},
		{"other error", errors.New("other error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsConfigError(tt.err)
			if result != tt.expect {
				t.Errorf("IsConfigError(%v) = %v, want %v", tt.err, result, tt.expect)
			}
		})
	}
}
