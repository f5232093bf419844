package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fsrp/document-portal/internal/core/domain"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Processor handles one access event.
type Processor interface {
	Process(ctx context.Context, event domain.AccessEvent) error
}

// Dispatcher routes access events to a fixed set of workers using consistent
// hashing on the storage id, guaranteeing per-browser event ordering.
type Dispatcher struct {
	workers   []chan domain.AccessEvent
	processor Processor
	log       zerolog.Logger
	wg        sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, processor Processor, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.AccessEvent, numWorkers),
		processor: processor,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AccessEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record implements ports.AuditRecorder. It never blocks the request: when
// the worker's buffer is full the event is dropped and logged.
func (d *Dispatcher) Record(event domain.AccessEvent) {
	select {
	case d.workers[d.shardIndex(event.StorageID)] <- event:
	default:
		d.log.Warn().
			Str("type", string(event.Type)).
			Str("storage_id", event.StorageID).
			Msg("audit buffer full, event dropped")
	}
}

// shardIndex maps a storage id deterministically to a worker index.
func (d *Dispatcher) shardIndex(storageID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(storageID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AccessEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := d.processor.Process(ctx, event); err != nil {
				d.log.Error().Err(err).
					Str("type", string(event.Type)).
					Str("storage_id", event.StorageID).
					Int("worker_id", id).
					Msg("audit event processing failed")
			}
		}
	}
}
