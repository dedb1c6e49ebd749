package emotion

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sandevgo/tuskheart/internal/config"
	"github.com/sandevgo/tuskheart/internal/core"
	"github.com/sandevgo/tuskheart/internal/service/audit"
)

var testNow = time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func newTestAudit() (*audit.Logger, *audit.MemorySink) {
	sink := audit.NewMemorySink()
	return audit.New(sink, config.DefaultPolicyVersion).WithClock(fixedClock), sink
}

type fakeRatings struct {
	records []core.RatingRecord
	err     error
	calls   atomic.Int32
	since   time.Time
}

func (f *fakeRatings) RatingsSince(_ context.Context, _ string, since time.Time) ([]core.RatingRecord, error) {
	f.calls.Add(1)
	f.since = since
	return f.records, f.err
}

type fakeInteractions struct {
	last  time.Time
	found bool
	err   error
	calls atomic.Int32
}

func (f *fakeInteractions) LastInteraction(context.Context, string) (time.Time, bool, error) {
	f.calls.Add(1)
	return f.last, f.found, f.err
}

type fakeTopics struct {
	topics []core.MemoryTopic
	err    error
	calls  atomic.Int32
	query  core.TopicQuery
}

func (f *fakeTopics) RecentTopics(_ context.Context, q core.TopicQuery) ([]core.MemoryTopic, error) {
	f.calls.Add(1)
	f.query = q
	return f.topics, f.err
}

// ratingsAt builds one rating per value, a day apart, ending an hour before testNow.
func ratingsAt(values ...int) []core.RatingRecord {
	out := make([]core.RatingRecord, 0, len(values))
	start := testNow.Add(-time.Hour).Add(-time.Duration(len(values)-1) * 24 * time.Hour)
	for i, v := range values {
		out = append(out, core.RatingRecord{
			SubjectKey: "subject-1",
			Rating:     v,
			RecordedAt: start.Add(time.Duration(i) * 24 * time.Hour),
		})
	}
	return out
}

func topicAt(kind core.TopicKind, content string, age time.Duration) core.MemoryTopic {
	return core.MemoryTopic{
		SubjectKey: "subject-1",
		Kind:       kind,
		Content:    content,
		UpdatedAt:  testNow.Add(-age),
		Active:     true,
	}
}
