package protocol

import (
	"fmt"
	"io"
	"log"

	"github.com/sarchlab/rvbench/image"
)

// A Sink records the words an initiator hands over, in acceptance order.
type Sink struct {
	name   string
	width  int
	limit  uint64
	words  []uint64
	writer io.Writer
	err    error
}

// NewSink creates an empty sink.
func NewSink(name string, width int) *Sink {
	limit := ^uint64(0)
	if width < 64 {
		limit = 1<<uint(width) - 1
	}

	return &Sink{name: name, width: width, limit: limit}
}

// WithWriter streams every accepted word to w as a hex line.
func (s *Sink) WithWriter(w io.Writer) *Sink {
	s.writer = w
	return s
}

// Name returns the initiator data port.
func (s *Sink) Name() string {
	return s.name
}

// Width returns the word width.
func (s *Sink) Width() int {
	return s.width
}

// OnCycle records word when both ready and valid are asserted and reports
// whether it did.
func (s *Sink) OnCycle(ready, valid bool, word uint64) bool {
	if !ready || !valid {
		return false
	}

	if word > s.limit {
		log.Panicf("sink %s: word %#x wider than %d bits",
			s.name, word, s.width)
	}

	s.words = append(s.words, word)

	if s.writer != nil && s.err == nil {
		_, s.err = fmt.Fprintf(s.writer, "%0*x\n", (s.width+3)/4, word)
	}

	return true
}

// Words returns the recorded words.
func (s *Sink) Words() []uint64 {
	return s.words
}

// Len returns the number of recorded words.
func (s *Sink) Len() int {
	return len(s.words)
}

// Err returns the first error of the streaming writer.
func (s *Sink) Err() error {
	return s.err
}

// Encode writes the record in image format.
func (s *Sink) Encode(w io.Writer) error {
	return s.Image().Encode(w)
}

// Image returns the record as an image.
func (s *Sink) Image() image.Image {
	return image.Image{Width: s.width, Words: s.words}
}
