package services

import (
	"context"

	"github.com/vintry/contentops-backend/internal/realtime"
	"github.com/vintry/contentops-backend/internal/realtime/bus"
)

// SSEEmitter decouples notifiers from delivery. The API process broadcasts
// straight to its connected clients; a worker process publishes to Redis and
// lets the API fan out.
type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.Hub.Broadcast(msg)
}

type RedisEmitter struct{ Bus bus.Bus }

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	_ = e.Bus.Publish(ctx, msg)
}
