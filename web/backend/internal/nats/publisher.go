package nats

import (
	"context"
	"time"

	"github.com/orgspace-systems/orgspace-stack/common/logging"
	"github.com/orgspace-systems/orgspace-stack/common/messaging"
	"github.com/orgspace-systems/orgspace-stack/common/records"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/metrics"
)

// ChangePublisher is told about every successful mutation made through this
// instance. It drops the local cache first, so the caller's next read is
// fresh, then announces the change to the other instances.
type ChangePublisher struct {
	client messaging.Publisher
	local  Invalidator
	origin string
	logger *logging.Logger
	now    func() time.Time
}

// NewChangePublisher creates a publisher. client may be nil, in which case
// only the local cache is invalidated.
func NewChangePublisher(client messaging.Publisher, local Invalidator, origin string, logger *logging.Logger) *ChangePublisher {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChangePublisher{
		client: client,
		local:  local,
		origin: origin,
		logger: logger,
		now:    time.Now,
	}
}

// RecordsChanged implements actions.ChangeNotifier. A publish failure is
// logged and otherwise ignored: the mutation already happened and other
// instances fall back to their cache TTL.
func (p *ChangePublisher) RecordsChanged(ctx context.Context, resource string, actor records.Actor) {
	if p.local != nil {
		p.local.Invalidate(resource)
	}
	if p.client == nil {
		return
	}

	event := messaging.ChangeEvent{
		Resource: resource,
		ActorID:  actor.UserID,
		Role:     string(actor.Role),
		Origin:   p.origin,
		At:       p.now().UTC(),
	}
	msg, err := event.Message()
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to encode change event", logging.Resource(resource), logging.Error(err))
		return
	}
	if err := p.client.PublishMsg(context.WithoutCancel(ctx), msg); err != nil {
		p.logger.WarnContext(ctx, "Failed to publish change event", logging.Resource(resource), logging.Error(err))
		return
	}
	metrics.ChangeEvents.WithLabelValues(resource, "published").Inc()
}
