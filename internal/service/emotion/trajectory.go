package emotion

import (
	"context"
	"slices"
	"time"

	"github.com/sandevgo/tuskheart/internal/config"
	"github.com/sandevgo/tuskheart/internal/core"
	"github.com/sandevgo/tuskheart/internal/service/audit"
)

type TrajectoryAnalyzer struct {
	repo      core.RatingReader
	audit     *audit.Logger
	Lookback  time.Duration
	MinCount  int
	Threshold float64
	Now       func() time.Time
}

func NewTrajectoryAnalyzer(repo core.RatingReader, policy config.PolicyConfig, auditor *audit.Logger) *TrajectoryAnalyzer {
	return &TrajectoryAnalyzer{
		repo:      repo,
		audit:     auditor,
		Lookback:  policy.TrajectoryLookback,
		MinCount:  policy.TrajectoryMinRatings,
		Threshold: policy.TrajectoryThreshold,
		Now:       time.Now,
	}
}

// Analyze classifies the mood trend over the lookback window. Fewer than
// MinCount ratings yield an empty signal, never a guess.
func (a *TrajectoryAnalyzer) Analyze(ctx context.Context, subjectKey string) core.Signal[core.Trajectory] {
	if subjectKey == "" {
		return core.Empty[core.Trajectory](audit.ReasonMissingSubject)
	}

	since := a.Now().Add(-a.Lookback)
	ratings, err := a.repo.RatingsSince(ctx, subjectKey, since)
	if err != nil {
		reportFailure(ctx, a.audit, subjectKey, ComponentMoodTrajectory, err)
		return core.Unavailable[core.Trajectory](err.Error())
	}

	ratings = slices.DeleteFunc(slices.Clone(ratings), func(r core.RatingRecord) bool {
		return r.RecordedAt.Before(since)
	})
	if len(ratings) < a.MinCount {
		return core.Empty[core.Trajectory]("insufficient_ratings")
	}
	slices.SortStableFunc(ratings, func(x, y core.RatingRecord) int {
		return x.RecordedAt.Compare(y.RecordedAt)
	})

	return core.Found(classifyTrend(ratings, a.Threshold))
}

// classifyTrend compares the mean of the later half of the series with the
// earlier half. The middle record of an odd series belongs to the later half.
func classifyTrend(ratings []core.RatingRecord, threshold float64) core.Trajectory {
	mid := len(ratings) / 2
	diff := meanRating(ratings[mid:]) - meanRating(ratings[:mid])

	switch {
	case diff >= threshold:
		return core.TrajectoryImproving
	case diff <= -threshold:
		return core.TrajectoryDeclining
	default:
		return core.TrajectoryStable
	}
}

func meanRating(ratings []core.RatingRecord) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r.Rating
	}
	return float64(sum) / float64(len(ratings))
}
