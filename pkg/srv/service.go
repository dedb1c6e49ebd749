package srv

import (
	"context"
	"errors"
	"time"

	"github.com/sandevgo/tuskheart/pkg/log"
)

// ErrStopped is returned from Start by a service that finished on its own
// and wants the rest of the process to wind down with it.
var ErrStopped = errors.New("service stopped")

const DefaultShutdownTimeout = 5 * time.Second

type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// StartServices launches each service in its own goroutine. A failing or
// finished service cancels the group through stop.
func StartServices(ctx context.Context, stop context.CancelFunc, services []Service) {
	logger := log.FromCtx(ctx)
	for _, service := range services {
		go func(service Service) {
			err := service.Start(ctx)
			switch {
			case err == nil, errors.Is(err, context.Canceled):
				return
			case errors.Is(err, ErrStopped):
				logger.Info().Msgf("%T finished", service)
			default:
				logger.Error().Err(err).Msgf("%T failed", service)
			}
			stop()
		}(service)
	}
}

// ShutdownServices blocks until ctx is done, then shuts the services down in
// reverse order, each bounded by timeout.
func ShutdownServices(ctx context.Context, services []Service, timeout time.Duration) {
	<-ctx.Done()

	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}
	logger := log.FromCtx(ctx)
	base := context.WithoutCancel(ctx)

	for i := len(services) - 1; i >= 0; i-- {
		sctx, cancel := context.WithTimeout(base, timeout)
		if err := services[i].Shutdown(sctx); err != nil {
			logger.Error().Err(err).Msgf("%T failed to shutdown", services[i])
		}
		cancel()
	}
}
