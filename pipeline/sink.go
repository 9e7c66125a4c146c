package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

var ErrSinkClosed = errors.New("sink is closed")

// Sink receives records one at a time in emission order
type Sink interface {
	Write(r Record) error
}

// JSONSink streams records as a single JSON array without holding them in memory
type JSONSink struct {
	w      *bufio.Writer
	count  int
	closed bool
}

func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{w: bufio.NewWriter(w)}
}

func (s *JSONSink) Write(r Record) error {
	if s.closed {
		return ErrSinkClosed
	}

	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("unable to encode record, %w", err)
	}

	sep := byte(',')
	if s.count == 0 {
		sep = '['
	}
	if err := s.w.WriteByte(sep); err != nil {
		return err
	}
	if _, err := s.w.Write(b); err != nil {
		return err
	}
	s.count++
	return nil
}

// Count returns the number of records written
func (s *JSONSink) Count() int {
	return s.count
}

// Close terminates the array and flushes. It does not close the underlying writer.
func (s *JSONSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	closing := "]"
	if s.count == 0 {
		closing = "[]"
	}
	if _, err := s.w.WriteString(closing); err != nil {
		return err
	}
	return s.w.Flush()
}
