package emotion

import (
	"context"
	"fmt"
	"time"

	"github.com/sandevgo/tuskheart/internal/config"
	"github.com/sandevgo/tuskheart/internal/core"
	"github.com/sandevgo/tuskheart/internal/service/audit"
	"github.com/sandevgo/tuskheart/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/sandevgo/tuskheart/internal/service/emotion")

type TrajectorySource interface {
	Analyze(ctx context.Context, subjectKey string) core.Signal[core.Trajectory]
}

type AbsenceSource interface {
	Detect(ctx context.Context, subjectKey string) core.Signal[core.AbsenceState]
}

type CheckbackSource interface {
	Recall(ctx context.Context, subjectKey string) core.Signal[[]core.Checkback]
}

type Request struct {
	Subject      core.Subject
	IsCrisisMode bool
	Trigger      audit.Trigger
}

// Composer builds the per-turn emotional context. It never returns an error:
// the worst outcome is no context at all.
type Composer struct {
	policy     config.PolicyConfig
	audit      *audit.Logger
	trajectory TrajectorySource
	absence    AbsenceSource
	checkbacks CheckbackSource
	render     func([]block) string
}

func NewComposer(
	policy config.PolicyConfig,
	auditor *audit.Logger,
	trajectory TrajectorySource,
	absence AbsenceSource,
	checkbacks CheckbackSource,
) *Composer {
	if auditor == nil {
		auditor = audit.New(nil, policy.Version)
	}
	return &Composer{
		policy:     policy,
		audit:      auditor,
		trajectory: trajectory,
		absence:    absence,
		checkbacks: checkbacks,
		render:     render,
	}
}

// NewComposerFromRepos wires the three analyzers over the given readers.
func NewComposerFromRepos(
	policy config.PolicyConfig,
	auditor *audit.Logger,
	ratings core.RatingReader,
	interactions core.InteractionReader,
	topics core.TopicReader,
) *Composer {
	return NewComposer(
		policy,
		auditor,
		NewTrajectoryAnalyzer(ratings, policy, auditor),
		NewAbsenceDetector(interactions, policy, auditor),
		NewCheckbackRecall(topics, policy, auditor),
	)
}

// Compose returns the guidance text and true, or "" and false when there is
// nothing worth saying.
func (c *Composer) Compose(ctx context.Context, req Request) (text string, ok bool) {
	subjectKey := req.Subject.Key()
	trigger := req.Trigger
	if trigger == "" {
		trigger = audit.TriggerChatTurn
	}
	ctx = audit.WithTrigger(ctx, trigger)

	ctx, span := tracer.Start(ctx, "emotion.Compose")
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			log.FromCtx(ctx).Error().Interface("panic", r).Msg("emotional context composition failed")
			c.audit.EmotionalIntelligenceFallback(ctx, subjectKey, trigger, ComponentComposer, fmt.Errorf("composition panicked: %v", r))
			text, ok = "", false
		}
	}()

	if req.IsCrisisMode {
		c.audit.EmotionalIntelligenceBlocked(ctx, subjectKey, trigger, audit.ReasonCrisisMode)
		span.SetAttributes(attribute.String("emotion.state", "blocked"))
		return "", false
	}

	if subjectKey == "" {
		c.audit.EmotionalIntelligenceSkipped(ctx, subjectKey, trigger, audit.ReasonMissingSubject)
		span.SetAttributes(attribute.String("emotion.state", "skipped"))
		return "", false
	}

	res := c.collect(ctx, subjectKey)
	blocks := assemble(res)

	c.audit.EmotionalIntelligenceUsed(ctx, subjectKey, trigger, usageOf(res, blocks))
	span.SetAttributes(attribute.Int("emotion.blocks", len(blocks)))

	if len(blocks) == 0 {
		return "", false
	}
	return c.render(blocks), true
}

// collect runs the three analyzers. They read disjoint sources, so running
// them concurrently changes nothing but latency.
func (c *Composer) collect(ctx context.Context, subjectKey string) core.ContextResult {
	var res core.ContextResult
	timeout := c.timeout()

	runTrajectory := func() {
		res.Trajectory = isolate(ctx, c.audit, subjectKey, ComponentMoodTrajectory, timeout,
			func(ctx context.Context) core.Signal[core.Trajectory] {
				return c.trajectory.Analyze(ctx, subjectKey)
			})
	}
	runAbsence := func() {
		res.Absence = isolate(ctx, c.audit, subjectKey, ComponentAbsenceDetector, timeout,
			func(ctx context.Context) core.Signal[core.AbsenceState] {
				return c.absence.Detect(ctx, subjectKey)
			})
	}
	runCheckbacks := func() {
		res.Checkbacks = isolate(ctx, c.audit, subjectKey, ComponentCheckbackRecall, timeout,
			func(ctx context.Context) core.Signal[[]core.Checkback] {
				return c.checkbacks.Recall(ctx, subjectKey)
			})
	}

	if c.policy.Sequential {
		runTrajectory()
		runAbsence()
		runCheckbacks()
		return res
	}

	var g errgroup.Group
	for _, run := range []func(){runTrajectory, runAbsence, runCheckbacks} {
		g.Go(func() error {
			run()
			return nil
		})
	}
	_ = g.Wait()

	return res
}

func (c *Composer) timeout() time.Duration {
	if c.policy.AnalyzerTimeout > 0 {
		return c.policy.AnalyzerTimeout
	}
	return config.DefaultPolicy().AnalyzerTimeout
}

func usageOf(res core.ContextResult, blocks []block) audit.Usage {
	u := audit.Usage{}
	if res.Trajectory.OK() {
		u.Trajectory = string(res.Trajectory.Value)
	}
	if res.Absence.OK() {
		u.Returning = res.Absence.Value.IsReturning
		u.FirstInteraction = res.Absence.Value.IsFirstInteraction
	}
	if res.Checkbacks.OK() {
		u.CheckbackCount = len(res.Checkbacks.Value)
	}
	for _, b := range blocks {
		u.Blocks = append(u.Blocks, b.name)
	}
	statuses := []struct {
		component string
		status    core.SignalStatus
	}{
		{ComponentMoodTrajectory, res.Trajectory.Status},
		{ComponentAbsenceDetector, res.Absence.Status},
		{ComponentCheckbackRecall, res.Checkbacks.Status},
	}
	for _, s := range statuses {
		if s.status == core.SignalUnavailable {
			u.Degraded = append(u.Degraded, s.component)
		}
	}
	return u
}
