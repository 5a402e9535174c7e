package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taktline/taktline/internal/shared/domain"
	"github.com/taktline/taktline/pkg/observability"
)

func TestNewEventMetadata(t *testing.T) {
	t.Run("reuses correlation ID from context", func(t *testing.T) {
		ctx := observability.WithCorrelationID(context.Background(), "corr-123")

		metadata := NewEventMetadata(ctx)

		assert.Equal(t, "corr-123", metadata.CorrelationID)
		assert.NotEmpty(t, metadata.CausationID)
	})

	t.Run("generates correlation ID when context carries none", func(t *testing.T) {
		metadata := NewEventMetadata(context.Background())

		assert.NotEmpty(t, metadata.CorrelationID)
		assert.NotEmpty(t, metadata.CausationID)
	})

	t.Run("generates unique causation IDs", func(t *testing.T) {
		ctx := observability.WithCorrelationID(context.Background(), "corr-123")

		metadata1 := NewEventMetadata(ctx)
		metadata2 := NewEventMetadata(ctx)

		assert.Equal(t, metadata1.CorrelationID, metadata2.CorrelationID)
		assert.NotEqual(t, metadata1.CausationID, metadata2.CausationID)
	})
}

// metadataEvent is a concrete domain event with a metadata setter.
type metadataEvent struct {
	domain.BaseEvent
}

func TestApplyEventMetadata(t *testing.T) {
	t.Run("applies metadata to events with setter", func(t *testing.T) {
		event := &metadataEvent{
			BaseEvent: domain.NewBaseEvent("42", "job", "planning.job.created"),
		}

		metadata := NewEventMetadata(context.Background())

		ApplyEventMetadata([]domain.DomainEvent{event}, metadata)

		assert.Equal(t, metadata.CorrelationID, event.Metadata().CorrelationID)
		assert.Equal(t, metadata.CausationID, event.Metadata().CausationID)
	})

	t.Run("applies metadata to multiple events", func(t *testing.T) {
		event1 := &metadataEvent{
			BaseEvent: domain.NewBaseEvent("1", "job", "planning.job.created"),
		}
		event2 := &metadataEvent{
			BaseEvent: domain.NewBaseEvent("2", "job", "planning.job.updated"),
		}

		metadata := NewEventMetadata(context.Background())

		ApplyEventMetadata([]domain.DomainEvent{event1, event2}, metadata)

		assert.Equal(t, metadata.CorrelationID, event1.Metadata().CorrelationID)
		assert.Equal(t, metadata.CorrelationID, event2.Metadata().CorrelationID)
	})

	t.Run("handles empty event list", func(t *testing.T) {
		metadata := NewEventMetadata(context.Background())

		require.NotPanics(t, func() {
			ApplyEventMetadata([]domain.DomainEvent{}, metadata)
		})
	})

	t.Run("handles nil event list", func(t *testing.T) {
		metadata := NewEventMetadata(context.Background())

		require.NotPanics(t, func() {
			ApplyEventMetadata(nil, metadata)
		})
	})
}
