package storefront

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"gofalre.io/storefront/models"
)

// EventProcessor handles one bus event; the storefront service implements it.
type EventProcessor interface {
	ProcessEvent(ctx context.Context, event *models.Event) error
}

// WorkerPool runs event handlers off the bus subscription so slow handlers
// do not block message delivery.
type WorkerPool struct {
	tasks     chan *models.Event
	wg        sync.WaitGroup
	logger    *zap.Logger
	processor EventProcessor

	mu     sync.Mutex
	closed bool
}

func NewWorkerPool(size int, processor EventProcessor, logger *zap.Logger) *WorkerPool {
	wp := &WorkerPool{
		tasks:     make(chan *models.Event, 1000),
		logger:    logger,
		processor: processor,
	}

	wp.wg.Add(size)
	for i := 0; i < size; i++ {
		go wp.worker()
	}

	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for event := range wp.tasks {
		if err := wp.processor.ProcessEvent(context.Background(), event); err != nil {
			wp.logger.Error("Failed to process event",
				zap.Error(err),
				zap.String("event_type", string(event.Type)),
				zap.String("event_id", event.ID))
		}
	}
}

// Submit queues an event for processing. It blocks when the backlog is full
// rather than dropping events. Events submitted after Shutdown are dropped
// with a warning; the subscription feeding the pool may race its teardown.
func (wp *WorkerPool) Submit(event *models.Event) {
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if wp.closed {
		wp.logger.Warn("Dropping event submitted after shutdown",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
		return
	}

	wp.tasks <- event
}

// Shutdown stops intake and waits for in-flight handlers to finish. It is
// safe to call more than once.
func (wp *WorkerPool) Shutdown() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.tasks)
	wp.mu.Unlock()

	wp.wg.Wait()
}
