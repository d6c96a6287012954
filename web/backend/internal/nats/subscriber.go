// Package nats carries record change events between web backend instances,
// so that a mutation served by one instance drops the cached lists of all.
package nats

import (
	"context"

	"github.com/orgspace-systems/orgspace-stack/common/logging"
	"github.com/orgspace-systems/orgspace-stack/common/messaging"
	"github.com/orgspace-systems/orgspace-stack/web/backend/internal/metrics"
)

// Invalidator is what a change event acts on.
type Invalidator interface {
	Invalidate(resource string)
}

// ChangeSubscriber subscribes to change events from every instance and
// invalidates the local list cache.
type ChangeSubscriber struct {
	client messaging.Subscriber
	target Invalidator
	origin string
	logger *logging.Logger
	sub    messaging.Subscription
}

// NewChangeSubscriber creates a subscriber. Events stamped with origin were
// published by this instance and have already been applied.
func NewChangeSubscriber(client messaging.Subscriber, target Invalidator, origin string, logger *logging.Logger) *ChangeSubscriber {
	if logger == nil {
		logger = logging.Default()
	}
	return &ChangeSubscriber{
		client: client,
		target: target,
		origin: origin,
		logger: logger,
	}
}

// Start subscribes to every records-changed subject.
func (s *ChangeSubscriber) Start() error {
	sub, err := s.client.Subscribe(messaging.SubjectRecordsChangedAll, s.handleChange)
	if err != nil {
		return err
	}
	s.sub = sub
	s.logger.Info("Subscribed to change events", "subject", messaging.SubjectRecordsChangedAll)
	return nil
}

// Stop unsubscribes.
func (s *ChangeSubscriber) Stop() error {
	if s.sub != nil {
		return s.sub.Unsubscribe()
	}
	return nil
}

func (s *ChangeSubscriber) handleChange(ctx context.Context, msg *messaging.Message) error {
	event, err := messaging.DecodeChangeEvent(msg)
	if err != nil {
		s.logger.WarnContext(ctx, "Dropping malformed change event",
			"subject", msg.Subject, logging.Error(err))
		return err
	}
	if event.Origin != "" && event.Origin == s.origin {
		return nil
	}
	metrics.ChangeEvents.WithLabelValues(event.Resource, "received").Inc()
	s.target.Invalidate(event.Resource)
	s.logger.DebugContext(ctx, "Applied remote change event",
		logging.Resource(event.Resource), logging.UserID(event.ActorID))
	return nil
}
