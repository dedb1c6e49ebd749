package emotion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/tuskheart/internal/core"
	"github.com/sandevgo/tuskheart/internal/service/audit"
	"github.com/sandevgo/tuskheart/pkg/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	ComponentMoodTrajectory  = "mood_trajectory"
	ComponentAbsenceDetector = "absence_detector"
	ComponentCheckbackRecall = "checkback_recall"
	ComponentComposer        = "composer"
)

var errAnalyzerPanic = errors.New("analyzer panicked")

// reportFailure audits a failed read. A done context is reported by the
// owner of the deadline instead, so a timeout is recorded once.
func reportFailure(ctx context.Context, auditor *audit.Logger, subjectKey, component string, err error) {
	if ctx.Err() != nil {
		return
	}
	log.FromCtx(log.WithComponent(ctx, component)).Warn().Err(err).Msg("emotional context signal degraded")
	if auditor != nil {
		auditor.EmotionalIntelligenceFallback(ctx, subjectKey, audit.TriggerFromContext(ctx), component, err)
	}
}

type outcome[T any] struct {
	signal core.Signal[T]
	err    error
}

// isolate runs fn on its own goroutine bounded by timeout. A panic, a
// timeout or a cancelled request turns into an unavailable signal. The
// goroutine is abandoned, not waited for, when the deadline passes first.
func isolate[T any](
	ctx context.Context,
	auditor *audit.Logger,
	subjectKey, component string,
	timeout time.Duration,
	fn func(context.Context) core.Signal[T],
) core.Signal[T] {
	ctx, span := tracer.Start(ctx, "emotion."+component)
	defer span.End()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome[T]{err: fmt.Errorf("%w: %v", errAnalyzerPanic, r)}
			}
		}()
		done <- outcome[T]{signal: fn(runCtx)}
	}()

	var res outcome[T]
	select {
	case res = <-done:
	case <-runCtx.Done():
		select {
		case res = <-done:
		default:
			res.err = fmt.Errorf("%s did not finish: %w", component, runCtx.Err())
		}
	}

	if res.err != nil {
		span.SetStatus(codes.Error, res.err.Error())
		log.FromCtx(log.WithComponent(ctx, component)).Warn().Err(res.err).Msg("emotional context analyzer abandoned")
		if auditor != nil {
			auditor.EmotionalIntelligenceFallback(ctx, subjectKey, audit.TriggerFromContext(ctx), component, res.err)
		}
		return core.Unavailable[T](res.err.Error())
	}

	span.SetAttributes(attribute.String("signal.status", string(res.signal.Status)))
	return res.signal
}
