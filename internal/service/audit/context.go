package audit

import "context"

type triggerKey struct{}

// WithTrigger stores the trigger of the current check so nested components
// stamp their events with it.
func WithTrigger(ctx context.Context, t Trigger) context.Context {
	return context.WithValue(ctx, triggerKey{}, t)
}

func TriggerFromContext(ctx context.Context) Trigger {
	if t, ok := ctx.Value(triggerKey{}).(Trigger); ok && t != "" {
		return t
	}
	return TriggerChatTurn
}
