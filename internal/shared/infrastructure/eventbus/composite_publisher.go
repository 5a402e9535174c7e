package eventbus

import (
	"context"
	"errors"
)

// CompositePublisher fans a message out to several publishers. The outbox
// processor uses it to feed the broker and the in-process consumers from a
// single drain.
type CompositePublisher struct {
	publishers []Publisher
}

// NewCompositePublisher creates a publisher that forwards to each target in
// order.
func NewCompositePublisher(publishers ...Publisher) *CompositePublisher {
	return &CompositePublisher{publishers: publishers}
}

// Publish sends the message to every target. All targets are attempted even
// when one fails; the joined error makes the outbox retry the message.
func (p *CompositePublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var errs []error
	for _, pub := range p.publishers {
		if err := pub.Publish(ctx, routingKey, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every target publisher.
func (p *CompositePublisher) Close() error {
	var errs []error
	for _, pub := range p.publishers {
		if err := pub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
