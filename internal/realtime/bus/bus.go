package bus

import (
	"context"

	"github.com/vintry/contentops-backend/internal/realtime"
)

// Bus mirrors SSE messages across instances so a client connected to one
// replica still sees events produced on another.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
