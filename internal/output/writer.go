// Package output renders decoded CAT034 messages as JSON lines and fans
// them out to the record archive, a stream and MQTT.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"asterix034/internal/cat034"
	"asterix034/internal/document"
)

// Sink receives one JSON line per decoded message
type Sink interface {
	WriteLine(line []byte) error
}

// Line is the JSON object written for each message
type Line struct {
	Received time.Time `json:"received"`
	Source   string    `json:"source,omitempty"`
	Valid    bool      `json:"valid"`
	Problem  string    `json:"problem,omitempty"`
	*document.Document
}

// Meta describes where and when a message was received
type Meta struct {
	Received time.Time
	Source   string
	// Problem is the validation error, if any
	Problem error
}

// Writer renders messages and writes them to every sink
type Writer struct {
	sinks  []Sink
	logger *logrus.Logger

	mutex   sync.Mutex
	written uint64
	failed  uint64
}

// NewWriter creates a writer. Sinks are written in order.
func NewWriter(logger *logrus.Logger, sinks ...Sink) *Writer {
	return &Writer{
		sinks:  sinks,
		logger: logger,
	}
}

// WriteMessage renders msg and writes the line to every sink. A failing
// sink does not stop the others; the first error is returned.
func (w *Writer) WriteMessage(msg *cat034.Message, meta Meta) error {
	if msg == nil {
		return fmt.Errorf("message cannot be nil")
	}

	line, err := Render(msg, meta)
	if err != nil {
		return err
	}

	var firstErr error
	for _, s := range w.sinks {
		if err := s.WriteLine(line); err != nil {
			w.logger.WithError(err).WithField("sink", fmt.Sprintf("%T", s)).Warn("Failed to write line")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	w.mutex.Lock()
	if firstErr != nil {
		w.failed++
	} else {
		w.written++
	}
	w.mutex.Unlock()

	return firstErr
}

// Stats returns the number of messages written and failed
func (w *Writer) Stats() (written, failed uint64) {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.written, w.failed
}

// Render returns the JSON line for msg
func Render(msg *cat034.Message, meta Meta) ([]byte, error) {
	l := Line{
		Received: meta.Received,
		Source:   meta.Source,
		Valid:    meta.Problem == nil,
		Document: document.FromMessage(msg),
	}
	if meta.Problem != nil {
		l.Problem = meta.Problem.Error()
	}
	return json.Marshal(l)
}

// StreamSink writes lines to an io.Writer such as stdout
type StreamSink struct {
	mutex sync.Mutex
	w     io.Writer
}

// NewStreamSink wraps w
func NewStreamSink(w io.Writer) *StreamSink {
	return &StreamSink{w: w}
}

// WriteLine writes line followed by a newline
func (s *StreamSink) WriteLine(line []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.w.Write(line); err != nil {
		return err
	}
	_, err := s.w.Write([]byte{'\n'})
	return err
}
