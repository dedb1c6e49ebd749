// Package audit records every decision the emotional context engine makes.
//
// The package is a pure sink: events are built, stamped and written, never
// read back. Each event carries the policy version of its feature family, the
// trigger that caused the check and a truncated subject id.
package audit

type Kind string

const (
	KindConsentGranted Kind = "consent_granted"
	KindConsentRevoked Kind = "consent_revoked"

	KindPatternReflectionIncluded Kind = "pattern_reflection_included"
	KindPatternReflectionBlocked  Kind = "pattern_reflection_blocked"
	KindPatternReflectionSkipped  Kind = "pattern_reflection_skipped"

	KindEmotionalIntelligenceUsed     Kind = "emotional_intelligence_used"
	KindEmotionalIntelligenceBlocked  Kind = "emotional_intelligence_blocked"
	KindEmotionalIntelligenceSkipped  Kind = "emotional_intelligence_skipped"
	KindEmotionalIntelligenceFallback Kind = "emotional_intelligence_fallback"
)

// Trigger describes what caused a check.
type Trigger string

const (
	TriggerChatTurn   Trigger = "chat_turn"
	TriggerUserAction Trigger = "user_action"
	TriggerScheduled  Trigger = "scheduled"
	TriggerManual     Trigger = "manual"
)

const (
	ConsentPolicyVersion           = "consent-v1"
	PatternReflectionPolicyVersion = "pattern-reflection-v1"
)

// Block and skip reasons.
const (
	ReasonCrisisMode     = "crisis_mode"
	ReasonMissingSubject = "missing_subject"
	ReasonNoConsent      = "no_consent"
	ReasonNoSignal       = "no_signal"
)

const subjectPrefixLen = 8

type Event struct {
	ID            string         `json:"id"`
	Kind          Kind           `json:"event"`
	Timestamp     string         `json:"timestamp"`
	Subject       string         `json:"subject"`
	PolicyVersion string         `json:"policy_version"`
	Trigger       Trigger        `json:"trigger"`
	Payload       map[string]any `json:"payload,omitempty"`
}

// TruncateSubject keeps a short prefix of an identifier so a log line can be
// correlated without carrying the full id. Ids no longer than the prefix are
// cut in half so they never appear whole.
func TruncateSubject(id string) string {
	if id == "" {
		return ""
	}
	r := []rune(id)
	n := subjectPrefixLen
	if len(r) <= n {
		n = len(r) / 2
	}
	return string(r[:n]) + "..."
}
