package islet

import "errors"

// Sentinel errors for renderer operations.
var (
	ErrAlreadyRegistered = errors.New("islet: component already registered")
	ErrUnknownComponent  = errors.New("islet: component not registered")
	ErrNoConfiguration   = errors.New("islet: no configuration for mount point")
	ErrInvalidProps      = errors.New("islet: invalid props payload")
	ErrSealedProps       = errors.New("islet: sealed props rejected")
	ErrLoadFailed        = errors.New("islet: component load failed")
	ErrDetached          = errors.New("islet: element detached from document")
)

// IsUnknownComponent checks if err means a component type could not be
// resolved, whether lookup or lazy loading failed.
func IsUnknownComponent(err error) bool {
	return errors.Is(err, ErrUnknownComponent) || errors.Is(err, ErrLoadFailed)
}

// IsConfigError checks if err stems from a mount point's configuration
// rather than from the component itself.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrNoConfiguration) || errors.Is(err, ErrInvalidProps) || errors.Is(err, ErrSealedProps)
}
