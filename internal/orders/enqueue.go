package orders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/televista/storefront-api/internal/obs"
)

// TaskSubmit is the asynq task type carrying an order snapshot to the
// delivery worker.
const TaskSubmit = "order:submit"

// QueueName is the asynq queue order submissions run on.
const QueueName = "orders"

// Enqueuer hands an order snapshot to the background delivery pipeline.
type Enqueuer interface {
	Enqueue(ctx context.Context, order Order) error
}

// AsynqEnqueuer enqueues order submissions via asynq. The task id is the
// order id, so a retried HTTP checkout cannot enqueue the same order twice.
type AsynqEnqueuer struct {
	Client *asynq.Client
	Store  *StatusStore
}

func (e *AsynqEnqueuer) Enqueue(ctx context.Context, order Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order %s: %w", order.ID, err)
	}
	// Mark queued before handing off so the worker's terminal status always
	// wins the race.
	if e.Store != nil {
		if err := e.Store.Set(ctx, order.ID, StatusQueued); err != nil {
			return fmt.Errorf("mark order %s queued: %w", order.ID, err)
		}
	}
	task := asynq.NewTask(TaskSubmit, payload)
	_, err = e.Client.EnqueueContext(ctx, task,
		asynq.Queue(QueueName),
		asynq.TaskID(order.ID),
		asynq.MaxRetry(5),
	)
	if err != nil {
		return fmt.Errorf("enqueue order %s: %w", order.ID, err)
	}
	if m := obs.Domain(); m != nil {
		m.OrdersQueued.Inc()
	}
	return nil
}
