package image

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrFormula is the category of word generation failures.
	ErrFormula = errors.New("formula error")

	// ErrIO is the category of image and capture file failures.
	ErrIO = errors.New("io failure")
)

// A FormulaError reports a formula that could not be built, failed, panicked
// or produced a word that does not fit the channel width.
type FormulaError struct {
	Channel string
	Formula string
	// Index is the word being generated, or -1 when the formula could not be
	// instantiated.
	Index int
	Err   error
}

func (e *FormulaError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: channel %q, formula %s: %v",
			ErrFormula, e.Channel, e.Formula, e.Err)
	}

	return fmt.Sprintf("%s: channel %q, formula %s, word %d: %v",
		ErrFormula, e.Channel, e.Formula, e.Index, e.Err)
}

// Unwrap exposes both the category and the cause.
func (e *FormulaError) Unwrap() []error {
	return []error{ErrFormula, e.Err}
}

// An IOError reports a file that could not be read or written.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrIO, e.Op, e.Path, e.Err)
}

// Unwrap exposes both the category and the cause.
func (e *IOError) Unwrap() []error {
	return []error{ErrIO, e.Err}
}
