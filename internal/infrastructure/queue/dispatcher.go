package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"roomtour-backend/internal/shared"
)

// Enqueuer is the part of *asynq.Client the dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Dispatcher turns image work into asynq tasks for cmd/worker.
type Dispatcher struct {
	client Enqueuer
}

func NewDispatcher(client Enqueuer) *Dispatcher {
	return &Dispatcher{client: client}
}

func (d *Dispatcher) EnqueueProcessImage(ctx context.Context, payload shared.ProcessImagePayload) error {
	return d.enqueue(ctx, shared.TypeProcessPlaceImage, payload,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(2*time.Minute),
	)
}

func (d *Dispatcher) EnqueueDeleteImages(ctx context.Context, payload shared.DeleteImagesPayload) error {
	return d.enqueue(ctx, shared.TypeDeletePlaceImages, payload,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
	)
}

func (d *Dispatcher) enqueue(ctx context.Context, typ string, payload interface{}, opts ...asynq.Option) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", typ, err)
	}

	info, err := d.client.EnqueueContext(ctx, asynq.NewTask(typ, data), opts...)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", typ, err)
	}

	log.Debug().Str("task", typ).Str("task_id", info.ID).Str("queue", info.Queue).Msg("Task enqueued")
	return nil
}
