package stream

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvalidDescriptor is the category of every descriptor validation error.
var ErrInvalidDescriptor = errors.New("invalid descriptor")

// A DescriptorError reports a malformed name, width or length.
type DescriptorError struct {
	Direction Direction
	Channel   string
	Field     string
	Reason    string
}

func (e *DescriptorError) Error() string {
	if e.Channel == "" {
		return fmt.Sprintf("%s: %s: %s", ErrInvalidDescriptor, e.Field, e.Reason)
	}

	return fmt.Sprintf("%s: %s %q: %s: %s",
		ErrInvalidDescriptor, e.Direction, e.Channel, e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidDescriptor.
func (e *DescriptorError) Unwrap() error {
	return ErrInvalidDescriptor
}
