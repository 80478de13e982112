package push

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/42-Course/matcha/internal/metrics"
	"github.com/42-Course/matcha/internal/models"
)

// RoutingKeyNotificationCreated is the routing key of new notification events
const RoutingKeyNotificationCreated = "notification.created"

const publishTimeout = 5 * time.Second

// Config holds dispatcher configuration
type Config struct {
	Workers int // Number of publishing goroutines
	Buffer  int // Queued notifications before Enqueue starts dropping
}

// Dispatcher hands stored notifications to a Publisher from a pool of goroutines.
// Enqueue never blocks the request that created the notifications.
type Dispatcher struct {
	publisher Publisher
	logger    *zap.Logger
	queue     chan models.Notification
	workers   int

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher; call Start before Enqueue
func NewDispatcher(publisher Publisher, logger *zap.Logger, config Config) *Dispatcher {
	if config.Workers <= 0 {
		config.Workers = 4
	}
	if config.Buffer <= 0 {
		config.Buffer = 1024
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{
		publisher: publisher,
		logger:    logger,
		queue:     make(chan models.Notification, config.Buffer),
		workers:   config.Workers,
	}
}

// Start launches the worker pool
func (d *Dispatcher) Start() {
	d.logger.Info("Push dispatcher started", zap.Int("workers", d.workers))
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.workerLoop(i + 1)
	}
}

// Enqueue queues notifications for publishing and returns how many were accepted.
// Notifications that do not fit in the buffer are dropped and counted.
func (d *Dispatcher) Enqueue(notifications ...models.Notification) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	accepted := 0
	for _, n := range notifications {
		if d.closed {
			metrics.IncrementNotificationPush(metrics.ResultDropped)
			continue
		}
		select {
		case d.queue <- n:
			accepted++
		default:
			metrics.IncrementNotificationPush(metrics.ResultDropped)
		}
	}

	if dropped := len(notifications) - accepted; dropped > 0 {
		d.logger.Warn("Push queue full, notifications dropped", zap.Int("dropped", dropped))
	}
	return accepted
}

// Stop stops accepting notifications, drains the queue and waits for the workers
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	d.logger.Info("Push dispatcher stopped")
}

func (d *Dispatcher) workerLoop(workerNum int) {
	defer d.wg.Done()

	for n := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := d.publisher.Publish(ctx, RoutingKeyNotificationCreated, n)
		cancel()

		if err != nil {
			metrics.IncrementNotificationPush(metrics.ResultFailed)
			d.logger.Error("Failed to publish notification",
				zap.Int("worker_num", workerNum),
				zap.Int64("notification_id", n.ID),
				zap.Int64("user_id", n.UserID),
				zap.Error(err),
			)
			continue
		}
		metrics.IncrementNotificationPush(metrics.ResultSuccess)
	}
}
