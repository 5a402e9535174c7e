package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/taktline/taktline/internal/shared/domain"
	"github.com/taktline/taktline/pkg/observability"
)

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// NewEventMetadata creates command-scoped metadata for domain events. The
// correlation ID is taken from the context when present so events emitted by
// a command share the caller's correlation chain.
func NewEventMetadata(ctx context.Context) domain.EventMetadata {
	correlationID := observability.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	return domain.EventMetadata{
		CorrelationID: correlationID,
		CausationID:   uuid.New().String(),
	}
}

// ApplyEventMetadata sets metadata on all events that support it.
func ApplyEventMetadata(events []domain.DomainEvent, metadata domain.EventMetadata) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
