package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Sink receives finished events. Emit must write one event atomically.
type Sink interface {
	Emit(e Event)
}

type SinkFunc func(e Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// LogSink writes each event as a single structured zerolog line.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("stream", "audit").Logger()}
}

func (s *LogSink) Emit(e Event) {
	ev := s.logger.Info().
		Str("id", e.ID).
		Str("event", string(e.Kind)).
		Str("ts", e.Timestamp).
		Str("subject", e.Subject).
		Str("policy_version", e.PolicyVersion).
		Str("trigger", string(e.Trigger))
	if len(e.Payload) > 0 {
		ev = ev.Interface("payload", e.Payload)
	}
	ev.Msg("audit")
}

// WriterSink appends events as JSON lines. Writes are serialized so lines
// never interleave.
type WriterSink struct {
	mu     sync.Mutex
	w      io.Writer
	enc    *json.Encoder
	logger zerolog.Logger
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w, enc: json.NewEncoder(w), logger: log.Logger}
}

// WithErrorLogger sets where failed writes are reported. The default is the
// global logger.
func (s *WriterSink) WithErrorLogger(logger zerolog.Logger) *WriterSink {
	s.logger = logger
	return s
}

// NewFileSink opens (or creates) an append-only JSONL audit file.
func NewFileSink(path string) (*WriterSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit file: %w", err)
	}
	return NewWriterSink(f), nil
}

func (s *WriterSink) Emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// json.Encoder issues one Write per value
	if err := s.enc.Encode(e); err != nil {
		metricAuditWriteFailures.Inc()
		s.logger.Error().
			Err(err).
			Str("id", e.ID).
			Str("event", string(e.Kind)).
			Msg("audit record lost")
	}
}

func (s *WriterSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// MemorySink keeps events in memory for inspection.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

func (s *MemorySink) Kinds() []Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	kinds := make([]Kind, 0, len(s.events))
	for _, e := range s.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (s *MemorySink) OfKind(kind Kind) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// MultiSink fans one event out to every sink in order.
type MultiSink []Sink

func (m MultiSink) Emit(e Event) {
	for _, s := range m {
		if s != nil {
			s.Emit(e)
		}
	}
}
