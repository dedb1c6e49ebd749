package emotion

import (
	"context"
	"math"
	"time"

	"github.com/sandevgo/tuskheart/internal/config"
	"github.com/sandevgo/tuskheart/internal/core"
	"github.com/sandevgo/tuskheart/internal/service/audit"
)

type AbsenceDetector struct {
	repo      core.InteractionReader
	audit     *audit.Logger
	Threshold time.Duration
	Now       func() time.Time
}

func NewAbsenceDetector(repo core.InteractionReader, policy config.PolicyConfig, auditor *audit.Logger) *AbsenceDetector {
	return &AbsenceDetector{
		repo:      repo,
		audit:     auditor,
		Threshold: policy.AbsenceThreshold,
		Now:       time.Now,
	}
}

// Detect classifies the gap since the subject's last rating or activity.
func (d *AbsenceDetector) Detect(ctx context.Context, subjectKey string) core.Signal[core.AbsenceState] {
	if subjectKey == "" {
		return core.Empty[core.AbsenceState](audit.ReasonMissingSubject)
	}

	last, found, err := d.repo.LastInteraction(ctx, subjectKey)
	if err != nil {
		reportFailure(ctx, d.audit, subjectKey, ComponentAbsenceDetector, err)
		return core.Unavailable[core.AbsenceState](err.Error())
	}
	if !found {
		return core.Found(core.AbsenceState{IsFirstInteraction: true})
	}

	return core.Found(classifyAbsence(d.Now().Sub(last), d.Threshold))
}

func classifyAbsence(since, threshold time.Duration) core.AbsenceState {
	// clock skew between sources can put the last interaction in the future
	if since < 0 {
		since = 0
	}

	if since < threshold {
		days := 0
		return core.AbsenceState{DaysSinceLastInteraction: &days}
	}

	days := int(math.Floor(since.Hours() / 24))
	desc := absenceBucket(days)
	return core.AbsenceState{
		IsReturning:              true,
		DaysSinceLastInteraction: &days,
		AbsenceDescription:       &desc,
	}
}

// absenceBucket keeps the wording coarse so the user never feels tracked.
func absenceBucket(days int) string {
	switch {
	case days < 2:
		return "about a day"
	case days == 2:
		return "a couple of days"
	case days <= 4:
		return "a few days"
	case days <= 7:
		return "about a week"
	case days <= 14:
		return "a little while"
	default:
		return "some time"
	}
}
