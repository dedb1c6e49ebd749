package core

import (
	"errors"
	"time"
)

const (
	AppName       = "TuskHeart"
	RepositoryURL = "https://github.com/sandevgo/tuskheart"
	AppVersion    = "0.1.0"
)

const (
	MinRating = 1
	MaxRating = 10
)

var ErrInvalidRating = errors.New("rating out of range")

// Subject identifies whose history is being read. The account id wins over
// the device id when both are present.
type Subject struct {
	UserID   string `json:"user_id,omitempty"`
	DeviceID string `json:"device_id,omitempty"`
}

func (s Subject) Key() string {
	if s.UserID != "" {
		return s.UserID
	}
	return s.DeviceID
}

type RatingRecord struct {
	ID         int64     `json:"id,omitempty"`
	SubjectKey string    `json:"subject_key"`
	Rating     int       `json:"rating"`
	RecordedAt time.Time `json:"recorded_at"`
}

type ActivityCompletion struct {
	ID          int64     `json:"id,omitempty"`
	SubjectKey  string    `json:"subject_key"`
	Activity    string    `json:"activity"`
	CompletedAt time.Time `json:"completed_at"`
}

type TopicKind string

const (
	TopicThemes      TopicKind = "themes"
	TopicGoals       TopicKind = "goals"
	TopicTriggers    TopicKind = "triggers"
	TopicPreferences TopicKind = "preferences"
	TopicPeople      TopicKind = "people"
)

func (k TopicKind) Valid() bool {
	switch k {
	case TopicThemes, TopicGoals, TopicTriggers, TopicPreferences, TopicPeople:
		return true
	}
	return false
}

// CheckbackKinds are the topic kinds eligible for a gentle follow-up.
var CheckbackKinds = []TopicKind{TopicThemes, TopicGoals, TopicTriggers}

type MemoryTopic struct {
	ID         int64     `json:"id,omitempty"`
	SubjectKey string    `json:"subject_key"`
	Kind       TopicKind `json:"kind"`
	Content    string    `json:"content"`
	UpdatedAt  time.Time `json:"updated_at"`
	Active     bool      `json:"active"`
}

type Trajectory string

const (
	TrajectoryImproving Trajectory = "improving"
	TrajectoryDeclining Trajectory = "declining"
	TrajectoryStable    Trajectory = "stable"
)

type AbsenceState struct {
	IsFirstInteraction       bool    `json:"is_first_interaction"`
	IsReturning              bool    `json:"is_returning"`
	DaysSinceLastInteraction *int    `json:"days_since_last_interaction"`
	AbsenceDescription       *string `json:"absence_description"`
}

type Checkback struct {
	Kind    TopicKind `json:"type"`
	Content string    `json:"content"`
	DaysAgo int       `json:"days_ago"`
}

// ContextResult is built fresh for every request and never persisted.
type ContextResult struct {
	Trajectory Signal[Trajectory]
	Absence    Signal[AbsenceState]
	Checkbacks Signal[[]Checkback]
}
