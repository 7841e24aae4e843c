package documents

import (
	"errors"
	"fmt"

	layout "loan-docs/internal/layout/domain"
)

var (
	// ErrMissingField is returned when a variant's required input is absent.
	ErrMissingField = errors.New("documents: missing field")
	// ErrInvalidField is returned for present but unusable input.
	ErrInvalidField = errors.New("documents: invalid field")
	// ErrRenderingFailure wraps renderer and compositor failures.
	ErrRenderingFailure = errors.New("documents: rendering failure")
)

// MissingFieldError names the field a variant requires.
type MissingFieldError struct {
	Variant layout.Variant
	Field   Field
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("documents: variant %q requires %q", e.Variant, e.Field)
}

// Unwrap lets errors.Is match ErrMissingField.
func (e *MissingFieldError) Unwrap() error { return ErrMissingField }
