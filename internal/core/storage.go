package core

import (
	"context"
	"time"
)

type RatingReader interface {
	// RatingsSince returns ratings recorded at or after since, oldest first.
	RatingsSince(ctx context.Context, subjectKey string, since time.Time) ([]RatingRecord, error)
}

type InteractionReader interface {
	// LastInteraction returns the newest timestamp across ratings and activity
	// completions. ok is false when the subject has neither.
	LastInteraction(ctx context.Context, subjectKey string) (last time.Time, ok bool, err error)
}

type TopicQuery struct {
	SubjectKey string
	Kinds      []TopicKind
	Since      time.Time
	Limit      int
}

type TopicReader interface {
	// RecentTopics returns active topics matching the query, newest first.
	RecentTopics(ctx context.Context, q TopicQuery) ([]MemoryTopic, error)
}

type RatingRepository interface {
	RatingReader
	AddRating(ctx context.Context, r RatingRecord) (int64, error)
}

type ActivityRepository interface {
	AddCompletion(ctx context.Context, c ActivityCompletion) (int64, error)
}

type TopicRepository interface {
	TopicReader
	SaveTopic(ctx context.Context, t MemoryTopic) (int64, error)
	SetTopicActive(ctx context.Context, id int64, active bool) error
}

type ConsentRepository interface {
	SetConsent(ctx context.Context, subjectKey, feature string, granted bool) error
	Consent(ctx context.Context, subjectKey, feature string) (granted bool, found bool, err error)
}
