package emotion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandevgo/tuskheart/internal/config"
	"github.com/sandevgo/tuskheart/internal/core"
	"github.com/sandevgo/tuskheart/internal/service/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAbsence(repo core.InteractionReader, auditor *audit.Logger) *AbsenceDetector {
	d := NewAbsenceDetector(repo, config.DefaultPolicy(), auditor)
	d.Now = fixedClock
	return d
}

func hoursAgo(h float64) time.Time {
	return testNow.Add(-time.Duration(h * float64(time.Hour)))
}

func TestAbsenceDetector_Buckets(t *testing.T) {
	tests := []struct {
		name      string
		hoursAgo  float64
		returning bool
		days      int
		desc      string
	}{
		{name: "just now", hoursAgo: 0.1, returning: false, days: 0},
		{name: "one day", hoursAgo: 30, returning: false, days: 0},
		{name: "47.9 hours", hoursAgo: 47.9, returning: false, days: 0},
		{name: "exactly 48 hours", hoursAgo: 48, returning: true, days: 2, desc: "a couple of days"},
		{name: "50 hours", hoursAgo: 50, returning: true, days: 2, desc: "a couple of days"},
		{name: "3 days", hoursAgo: 3 * 24, returning: true, days: 3, desc: "a few days"},
		{name: "4 days", hoursAgo: 4*24 + 23, returning: true, days: 4, desc: "a few days"},
		{name: "5 days", hoursAgo: 5 * 24, returning: true, days: 5, desc: "about a week"},
		{name: "7 days", hoursAgo: 7*24 + 12, returning: true, days: 7, desc: "about a week"},
		{name: "8 days", hoursAgo: 8 * 24, returning: true, days: 8, desc: "a little while"},
		{name: "14 days", hoursAgo: 14*24 + 23.9, returning: true, days: 14, desc: "a little while"},
		{name: "15 days", hoursAgo: 15 * 24, returning: true, days: 15, desc: "some time"},
		{name: "90 days", hoursAgo: 90 * 24, returning: true, days: 90, desc: "some time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auditor, _ := newTestAudit()
			repo := &fakeInteractions{last: hoursAgo(tt.hoursAgo), found: true}

			got := newAbsence(repo, auditor).Detect(context.Background(), "subject-1")

			require.True(t, got.OK())
			state := got.Value
			assert.False(t, state.IsFirstInteraction)
			assert.Equal(t, tt.returning, state.IsReturning)
			require.NotNil(t, state.DaysSinceLastInteraction)
			assert.Equal(t, tt.days, *state.DaysSinceLastInteraction)
			if tt.returning {
				require.NotNil(t, state.AbsenceDescription)
				assert.Equal(t, tt.desc, *state.AbsenceDescription)
			} else {
				assert.Nil(t, state.AbsenceDescription)
			}
		})
	}
}

func TestAbsenceBucket_BoundaryDays(t *testing.T) {
	cases := map[int]string{
		0:  "about a day",
		1:  "about a day",
		2:  "a couple of days",
		3:  "a few days",
		4:  "a few days",
		5:  "about a week",
		7:  "about a week",
		8:  "a little while",
		14: "a little while",
		15: "some time",
	}
	for days, want := range cases {
		assert.Equal(t, want, absenceBucket(days), "days=%d", days)
	}
}

func TestAbsenceDetector_ShortThresholdWording(t *testing.T) {
	auditor, _ := newTestAudit()
	d := newAbsence(&fakeInteractions{last: hoursAgo(30), found: true}, auditor)
	d.Threshold = 24 * time.Hour

	got := d.Detect(context.Background(), "subject-1")

	require.True(t, got.OK())
	assert.True(t, got.Value.IsReturning)
	assert.Equal(t, 1, *got.Value.DaysSinceLastInteraction)
	assert.Equal(t, "about a day", *got.Value.AbsenceDescription)
}

func TestAbsenceDetector_FirstInteraction(t *testing.T) {
	auditor, sink := newTestAudit()

	got := newAbsence(&fakeInteractions{}, auditor).Detect(context.Background(), "subject-1")

	require.True(t, got.OK())
	assert.True(t, got.Value.IsFirstInteraction)
	assert.False(t, got.Value.IsReturning)
	assert.Nil(t, got.Value.DaysSinceLastInteraction)
	assert.Nil(t, got.Value.AbsenceDescription)
	assert.Empty(t, sink.Events())
}

func TestAbsenceDetector_FutureTimestampIsRecent(t *testing.T) {
	auditor, _ := newTestAudit()
	repo := &fakeInteractions{last: testNow.Add(3 * time.Hour), found: true}

	got := newAbsence(repo, auditor).Detect(context.Background(), "subject-1")

	require.True(t, got.OK())
	assert.False(t, got.Value.IsReturning)
	assert.Equal(t, 0, *got.Value.DaysSinceLastInteraction)
}

func TestAbsenceDetector_ReadFailureFallsBack(t *testing.T) {
	auditor, sink := newTestAudit()
	repo := &fakeInteractions{err: errors.New("no such table: activity_completions")}

	got := newAbsence(repo, auditor).Detect(context.Background(), "subject-1")

	assert.Equal(t, core.SignalUnavailable, got.Status)
	events := sink.OfKind(audit.KindEmotionalIntelligenceFallback)
	require.Len(t, events, 1)
	assert.Equal(t, ComponentAbsenceDetector, events[0].Payload[audit.PayloadComponent])
}

func TestAbsenceDetector_MissingSubject(t *testing.T) {
	repo := &fakeInteractions{found: true}
	auditor, _ := newTestAudit()

	got := newAbsence(repo, auditor).Detect(context.Background(), "")

	assert.Equal(t, core.SignalEmpty, got.Status)
	assert.Zero(t, repo.calls.Load())
}
