package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/televista/storefront-api/internal/obs"
	"github.com/televista/storefront-api/internal/resilience"
)

// Submitter delivers an order snapshot to the commerce backend.
type Submitter interface {
	Submit(ctx context.Context, order Order) error
}

// RESTSubmitter posts orders to the backend's order intake endpoint.
type RESTSubmitter struct {
	BaseURL string
	APIKey  string
	HTTP    resilience.HTTPClient
}

func (s RESTSubmitter) Submit(ctx context.Context, order Order) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order %s: %w", order.ID, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/v1/orders", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.APIKey != "" {
		req.Header.Set("X-API-Key", s.APIKey)
	}
	resp, err := s.HTTP.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("submit order %s: %w", order.ID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("submit order %s: backend returned %s", order.ID, resp.Status)
	}
	return nil
}

// Worker consumes order submission tasks and reports the outcome to the
// status store.
type Worker struct {
	Submitter Submitter
	Store     *StatusStore
	Log       zerolog.Logger
}

// HandleSubmit processes a single order:submit task. A delivery failure is
// returned so asynq retries it; the status flips to failed only once the
// retry budget is spent.
func (w *Worker) HandleSubmit(ctx context.Context, task *asynq.Task) error {
	var order Order
	if err := json.Unmarshal(task.Payload(), &order); err != nil {
		// Malformed payloads can never succeed, skip retries.
		return fmt.Errorf("decode order payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := w.Submitter.Submit(ctx, order); err != nil {
		if m := obs.Domain(); m != nil {
			m.UpstreamFailures.WithLabelValues("orders").Inc()
		}
		retried, _ := asynq.GetRetryCount(ctx)
		maxRetry, _ := asynq.GetMaxRetry(ctx)
		if retried >= maxRetry {
			if serr := w.Store.Set(ctx, order.ID, StatusFailed); serr != nil {
				w.Log.Error().Err(serr).Str("order_id", order.ID).Msg("mark order failed")
			}
		}
		w.Log.Warn().Err(err).Str("order_id", order.ID).Int("retried", retried).Msg("order delivery failed")
		return err
	}
	if err := w.Store.Set(ctx, order.ID, StatusSubmitted); err != nil {
		w.Log.Error().Err(err).Str("order_id", order.ID).Msg("mark order submitted")
	}
	w.Log.Info().Str("order_id", order.ID).Str("kind", string(order.Kind)).Msg("order delivered")
	return nil
}

// Mux builds the asynq handler mux for the worker binary.
func (w *Worker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSubmit, w.HandleSubmit)
	return mux
}
