package emotion

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/sandevgo/tuskheart/internal/config"
	"github.com/sandevgo/tuskheart/internal/core"
	"github.com/sandevgo/tuskheart/internal/service/audit"
)

var ErrMalformedResponse = errors.New("malformed topic response")

type CheckbackRecall struct {
	repo     core.TopicReader
	audit    *audit.Logger
	Kinds    []core.TopicKind
	MaxAge   time.Duration
	MaxCount int
	Now      func() time.Time
}

func NewCheckbackRecall(repo core.TopicReader, policy config.PolicyConfig, auditor *audit.Logger) *CheckbackRecall {
	return &CheckbackRecall{
		repo:     repo,
		audit:    auditor,
		Kinds:    core.CheckbackKinds,
		MaxAge:   policy.CheckbackMaxAge,
		MaxCount: policy.CheckbackMaxCount,
		Now:      time.Now,
	}
}

// Recall returns up to MaxCount recently updated topics, newest first.
func (r *CheckbackRecall) Recall(ctx context.Context, subjectKey string) core.Signal[[]core.Checkback] {
	if subjectKey == "" {
		return core.Empty[[]core.Checkback](audit.ReasonMissingSubject)
	}

	now := r.Now()
	since := now.Add(-r.MaxAge)
	topics, err := r.repo.RecentTopics(ctx, core.TopicQuery{
		SubjectKey: subjectKey,
		Kinds:      r.Kinds,
		Since:      since,
		Limit:      r.MaxCount,
	})
	if err == nil {
		err = validateTopics(topics)
	}
	if err != nil {
		reportFailure(ctx, r.audit, subjectKey, ComponentCheckbackRecall, err)
		return core.Unavailable[[]core.Checkback](err.Error())
	}

	// readers may over-return; window, kind, active flag, cap and order are enforced here
	topics = slices.DeleteFunc(slices.Clone(topics), func(t core.MemoryTopic) bool {
		return !t.Active || t.UpdatedAt.Before(since) || !slices.Contains(r.Kinds, t.Kind)
	})
	slices.SortStableFunc(topics, func(x, y core.MemoryTopic) int {
		return y.UpdatedAt.Compare(x.UpdatedAt)
	})
	if len(topics) > r.MaxCount {
		topics = topics[:r.MaxCount]
	}
	if len(topics) == 0 {
		return core.Empty[[]core.Checkback]("no_recent_topics")
	}

	out := make([]core.Checkback, 0, len(topics))
	for _, t := range topics {
		out = append(out, core.Checkback{
			Kind:    t.Kind,
			Content: strings.TrimSpace(t.Content),
			DaysAgo: daysBetween(t.UpdatedAt, now),
		})
	}
	return core.Found(out)
}

func validateTopics(topics []core.MemoryTopic) error {
	for i, t := range topics {
		if t.UpdatedAt.IsZero() {
			return fmt.Errorf("%w: topic %d has no update time", ErrMalformedResponse, i)
		}
		if strings.TrimSpace(t.Content) == "" {
			return fmt.Errorf("%w: topic %d has no content", ErrMalformedResponse, i)
		}
	}
	return nil
}

func daysBetween(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}
