package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/tuskheart/pkg/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Payload keys shared by several event kinds.
const (
	PayloadReason    = "reason"
	PayloadComponent = "component"
	PayloadError     = "error"
	PayloadFeature   = "feature"
)

// Usage summarizes which context features fired for one request.
type Usage struct {
	Trajectory       string
	Returning        bool
	FirstInteraction bool
	CheckbackCount   int
	Blocks           []string
	Degraded         []string
}

type Logger struct {
	sink      Sink
	eiVersion string
	now       func() time.Time
}

// New builds a Logger. eiPolicyVersion is stamped on every
// emotional_intelligence_* event.
func New(sink Sink, eiPolicyVersion string) *Logger {
	if sink == nil {
		sink = MultiSink{}
	}
	return &Logger{
		sink:      sink,
		eiVersion: eiPolicyVersion,
		now:       time.Now,
	}
}

// WithClock returns a copy of the logger that stamps events with now().
func (l *Logger) WithClock(now func() time.Time) *Logger {
	cp := *l
	cp.now = now
	return &cp
}

func (l *Logger) ConsentGranted(ctx context.Context, subject, feature string, trigger Trigger) Event {
	return l.emit(ctx, KindConsentGranted, ConsentPolicyVersion, subject, trigger, map[string]any{
		PayloadFeature: feature,
	})
}

func (l *Logger) ConsentRevoked(ctx context.Context, subject, feature string, trigger Trigger) Event {
	return l.emit(ctx, KindConsentRevoked, ConsentPolicyVersion, subject, trigger, map[string]any{
		PayloadFeature: feature,
	})
}

func (l *Logger) PatternReflectionIncluded(ctx context.Context, subject string, trigger Trigger, patterns int) Event {
	return l.emit(ctx, KindPatternReflectionIncluded, PatternReflectionPolicyVersion, subject, trigger, map[string]any{
		"pattern_count": patterns,
	})
}

func (l *Logger) PatternReflectionBlocked(ctx context.Context, subject string, trigger Trigger, reason string) Event {
	return l.emit(ctx, KindPatternReflectionBlocked, PatternReflectionPolicyVersion, subject, trigger, map[string]any{
		PayloadReason: reason,
	})
}

func (l *Logger) PatternReflectionSkipped(ctx context.Context, subject string, trigger Trigger, reason string) Event {
	return l.emit(ctx, KindPatternReflectionSkipped, PatternReflectionPolicyVersion, subject, trigger, map[string]any{
		PayloadReason: reason,
	})
}

func (l *Logger) EmotionalIntelligenceUsed(ctx context.Context, subject string, trigger Trigger, u Usage) Event {
	payload := map[string]any{
		"trajectory":        u.Trajectory,
		"returning":         u.Returning,
		"first_interaction": u.FirstInteraction,
		"checkback_count":   u.CheckbackCount,
		"blocks":            nonNil(u.Blocks),
	}
	if len(u.Degraded) > 0 {
		payload["degraded"] = u.Degraded
	}
	return l.emit(ctx, KindEmotionalIntelligenceUsed, l.eiVersion, subject, trigger, payload)
}

func (l *Logger) EmotionalIntelligenceBlocked(ctx context.Context, subject string, trigger Trigger, reason string) Event {
	return l.emit(ctx, KindEmotionalIntelligenceBlocked, l.eiVersion, subject, trigger, map[string]any{
		PayloadReason: reason,
	})
}

func (l *Logger) EmotionalIntelligenceSkipped(ctx context.Context, subject string, trigger Trigger, reason string) Event {
	return l.emit(ctx, KindEmotionalIntelligenceSkipped, l.eiVersion, subject, trigger, map[string]any{
		PayloadReason: reason,
	})
}

// EmotionalIntelligenceFallback records a degraded sub-computation. Only the
// error message is kept, never the error value itself.
func (l *Logger) EmotionalIntelligenceFallback(ctx context.Context, subject string, trigger Trigger, component string, err error) Event {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return l.emit(ctx, KindEmotionalIntelligenceFallback, l.eiVersion, subject, trigger, map[string]any{
		PayloadComponent: component,
		PayloadError:     msg,
	})
}

func (l *Logger) emit(ctx context.Context, kind Kind, version, subject string, trigger Trigger, payload map[string]any) Event {
	if trigger == "" {
		trigger = TriggerChatTurn
	}
	e := Event{
		ID:            uuid.NewString(),
		Kind:          kind,
		Timestamp:     l.now().UTC().Format(time.RFC3339Nano),
		Subject:       TruncateSubject(subject),
		PolicyVersion: version,
		Trigger:       trigger,
		Payload:       payload,
	}

	trace.SpanFromContext(ctx).AddEvent(string(kind), trace.WithAttributes(
		attribute.String("audit.id", e.ID),
		attribute.String("audit.policy_version", version),
	))

	l.write(ctx, e)
	return e
}

// write shields callers from a misbehaving sink.
func (l *Logger) write(ctx context.Context, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.FromCtx(ctx).Error().
				Str("event", string(e.Kind)).
				Interface("panic", r).
				Msg("audit sink panicked, event dropped")
		}
	}()
	l.sink.Emit(e)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
