package auth

import (
	"context"

	"github.com/iliyamo/tourism-portal/internal/queue"
)

// Subscriber receives account events after the state change they describe
// has been persisted. Delivery is synchronous and errors are logged only.
type Subscriber interface {
	HandleAccountEvent(ctx context.Context, ev queue.AccountEvent) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, ev queue.AccountEvent) error

func (f SubscriberFunc) HandleAccountEvent(ctx context.Context, ev queue.AccountEvent) error {
	return f(ctx, ev)
}

func (s *Service) emit(ctx context.Context, ev queue.AccountEvent) {
	for _, sub := range s.subscribers {
		if err := sub.HandleAccountEvent(ctx, ev); err != nil {
			s.log.WarnContext(ctx, "account event subscriber failed", "kind", ev.Kind, "user_id", ev.UserID, "error", err)
		}
	}
}
