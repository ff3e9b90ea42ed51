package service

import (
	"context"

	"site-audit-be/pkg/events"
)

// IEventPublisher sends domain events to other services. *nats.Publisher
// implements it.
type IEventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}
