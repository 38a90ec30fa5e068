package worker

import (
	"context"
	"encoding/json"
	"time"

	"retailpos/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const QueuePrintReceipt = "jobs:print_receipt"

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PrintReceiptPayload is what the commit transaction enqueues after a sale
// lands. The worker re-reads the sale, so the payload stays minimal.
type PrintReceiptPayload struct {
	SaleID string `json:"sale_id"`
	Folio  string `json:"folio"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueuePrintReceipt pushes a receipt-print job to Redis. Printing is
// best-effort: callers ignore the returned error beyond logging.
func (d *Dispatcher) EnqueuePrintReceipt(ctx context.Context, payload PrintReceiptPayload) error {
	if err := d.enqueue(ctx, QueuePrintReceipt, "print_receipt", payload); err != nil {
		log.Error().Err(err).Str("sale_id", payload.SaleID).Msg("failed to enqueue print job")
		return err
	}
	return nil
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// StartWorkerPool launches numWorkers goroutines consuming the print queue.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, printer *infra.Printer, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, printer, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, printer *infra.Printer, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, QueuePrintReceipt).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, printer, result[1])
		}
	}
}

// processJob never propagates failure: a print that cannot happen is logged
// and dropped, it must not be observable to the sale that queued it.
func processJob(ctx context.Context, printer *infra.Printer, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Err(err).Msg("failed to unmarshal job")
		return
	}
	switch job.Type {
	case "print_receipt":
		var payload PrintReceiptPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			log.Error().Err(err).Msg("malformed print payload")
			return
		}
		if err := printer.PrintReceipt(ctx, payload.SaleID, payload.Folio); err != nil {
			log.Error().Err(err).Str("folio", payload.Folio).Msg("receipt print failed")
		}
	default:
		log.Warn().Str("type", job.Type).Msg("unknown job type")
	}
}
