package audit

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestLogger() (*Logger, *MemorySink) {
	sink := NewMemorySink()
	return New(sink, "emotional-intelligence-v1").WithClock(func() time.Time { return fixedNow }), sink
}

func TestTruncateSubject(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{name: "long id", id: "user-1234567890abcdef", want: "user-123..."},
		{name: "exactly prefix length", id: "abcdefgh", want: "abcd..."},
		{name: "short id", id: "abc", want: "a..."},
		{name: "single rune", id: "x", want: "..."},
		{name: "empty", id: "", want: ""},
		{name: "multibyte", id: "ключ-пользователя", want: "ключ-пол..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateSubject(tt.id))
		})
	}
}

func TestLogger_EventEnvelope(t *testing.T) {
	ctx := context.Background()
	logger, sink := newTestLogger()

	e := logger.EmotionalIntelligenceBlocked(ctx, "account-42-secret", TriggerChatTurn, ReasonCrisisMode)

	require.Len(t, sink.Events(), 1)
	assert.Equal(t, e, sink.Events()[0])
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, KindEmotionalIntelligenceBlocked, e.Kind)
	assert.Equal(t, "2026-03-14T09:30:00Z", e.Timestamp)
	assert.Equal(t, "account-...", e.Subject)
	assert.NotContains(t, e.Subject, "secret")
	assert.Equal(t, "emotional-intelligence-v1", e.PolicyVersion)
	assert.Equal(t, TriggerChatTurn, e.Trigger)
	assert.Equal(t, ReasonCrisisMode, e.Payload[PayloadReason])
}

func TestLogger_PolicyVersionPerFamily(t *testing.T) {
	ctx := context.Background()
	logger, _ := newTestLogger()

	tests := []struct {
		name    string
		emit    func() Event
		kind    Kind
		version string
	}{
		{
			name:    "consent granted",
			emit:    func() Event { return logger.ConsentGranted(ctx, "subject-1", "emotional_context", TriggerUserAction) },
			kind:    KindConsentGranted,
			version: ConsentPolicyVersion,
		},
		{
			name:    "consent revoked",
			emit:    func() Event { return logger.ConsentRevoked(ctx, "subject-1", "emotional_context", TriggerUserAction) },
			kind:    KindConsentRevoked,
			version: ConsentPolicyVersion,
		},
		{
			name:    "pattern reflection included",
			emit:    func() Event { return logger.PatternReflectionIncluded(ctx, "subject-1", TriggerChatTurn, 2) },
			kind:    KindPatternReflectionIncluded,
			version: PatternReflectionPolicyVersion,
		},
		{
			name:    "pattern reflection blocked",
			emit:    func() Event { return logger.PatternReflectionBlocked(ctx, "subject-1", TriggerChatTurn, ReasonCrisisMode) },
			kind:    KindPatternReflectionBlocked,
			version: PatternReflectionPolicyVersion,
		},
		{
			name:    "pattern reflection skipped",
			emit:    func() Event { return logger.PatternReflectionSkipped(ctx, "subject-1", TriggerChatTurn, ReasonNoConsent) },
			kind:    KindPatternReflectionSkipped,
			version: PatternReflectionPolicyVersion,
		},
		{
			name:    "emotional intelligence skipped",
			emit:    func() Event { return logger.EmotionalIntelligenceSkipped(ctx, "", TriggerChatTurn, ReasonMissingSubject) },
			kind:    KindEmotionalIntelligenceSkipped,
			version: "emotional-intelligence-v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.emit()
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.version, e.PolicyVersion)
		})
	}
}

func TestLogger_FallbackCarriesOnlyStrings(t *testing.T) {
	ctx := context.Background()
	logger, _ := newTestLogger()

	cause := fmt.Errorf("query ratings: %w", errors.New("database is locked"))
	e := logger.EmotionalIntelligenceFallback(ctx, "subject-1", TriggerChatTurn, "mood_trajectory", cause)

	assert.Equal(t, KindEmotionalIntelligenceFallback, e.Kind)
	assert.Equal(t, "mood_trajectory", e.Payload[PayloadComponent])
	assert.Equal(t, "query ratings: database is locked", e.Payload[PayloadError])
	for key, v := range e.Payload {
		_, isString := v.(string)
		assert.Truef(t, isString, "payload %q must be a string, got %T", key, v)
	}
}

func TestLogger_FallbackWithNilError(t *testing.T) {
	logger, _ := newTestLogger()
	e := logger.EmotionalIntelligenceFallback(context.Background(), "subject-1", TriggerChatTurn, "composer", nil)
	assert.Equal(t, "unknown error", e.Payload[PayloadError])
}

func TestLogger_UsedSummary(t *testing.T) {
	logger, _ := newTestLogger()

	e := logger.EmotionalIntelligenceUsed(context.Background(), "subject-1", "", Usage{
		Trajectory:     "declining",
		Returning:      true,
		CheckbackCount: 2,
		Blocks:         []string{"mood_trajectory", "return_warmth", "checkbacks"},
	})

	assert.Equal(t, TriggerChatTurn, e.Trigger, "empty trigger defaults to chat turn")
	assert.Equal(t, "declining", e.Payload["trajectory"])
	assert.Equal(t, true, e.Payload["returning"])
	assert.Equal(t, false, e.Payload["first_interaction"])
	assert.Equal(t, 2, e.Payload["checkback_count"])
	assert.NotContains(t, e.Payload, "degraded")
}

func TestLogger_SinkPanicIsContained(t *testing.T) {
	logger := New(SinkFunc(func(Event) { panic("sink exploded") }), "v1")

	assert.NotPanics(t, func() {
		e := logger.EmotionalIntelligenceSkipped(context.Background(), "subject-1", TriggerChatTurn, ReasonNoSignal)
		assert.Equal(t, KindEmotionalIntelligenceSkipped, e.Kind)
	})
}

func TestLogger_NilSink(t *testing.T) {
	logger := New(nil, "v1")
	assert.NotPanics(t, func() {
		logger.ConsentGranted(context.Background(), "subject-1", "emotional_context", TriggerManual)
	})
}

func TestTriggerFromContext(t *testing.T) {
	assert.Equal(t, TriggerChatTurn, TriggerFromContext(context.Background()))
	assert.Equal(t, TriggerManual, TriggerFromContext(WithTrigger(context.Background(), TriggerManual)))
	assert.Equal(t, TriggerChatTurn, TriggerFromContext(WithTrigger(context.Background(), "")))
}
