package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/reslab/attendance-backend-go/internal/domain/notification"
)

// Config holds dispatcher configuration
type Config struct {
	WorkerCount int           // default: 2
	QueueSize   int           // default: 256
	TaskTimeout time.Duration // default: 5 seconds
}

// Dispatcher is a small worker pool for side effects. A full queue falls back
// to a dedicated goroutine so callers are never slowed down.
type Dispatcher struct {
	config Config
	logger *slog.Logger

	queue    chan notification.Task
	wg       sync.WaitGroup
	inflight sync.WaitGroup
	stopCh   chan struct{}

	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher creates a dispatcher with background workers
func NewDispatcher(cfg Config, logger *slog.Logger) *Dispatcher {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		config: cfg,
		logger: logger,
		queue:  make(chan notification.Task, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	logger.Info("side effect dispatcher started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize)
	return d
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()
	for {
		select {
		case task := <-d.queue:
			d.run(id, task)
		case <-d.stopCh:
			// Drain what is already queued.
			for {
				select {
				case task := <-d.queue:
					d.run(id, task)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) run(worker int, task notification.Task) {
	defer d.inflight.Done()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("side effect panicked", "task", task.Name, "worker", worker, "panic", fmt.Sprint(r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.config.TaskTimeout)
	defer cancel()

	if err := task.Run(ctx); err != nil {
		d.logger.Warn("side effect failed", "task", task.Name, "worker", worker, "error", err)
	}
}

// Dispatch implements notification.Dispatcher.
func (d *Dispatcher) Dispatch(task notification.Task) {
	if task.Run == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		d.logger.Warn("side effect dropped after stop", "task", task.Name)
		return
	}

	d.inflight.Add(1)
	select {
	case d.queue <- task:
	default:
		go d.run(-1, task)
	}
}

// Wait blocks until every dispatched task has finished.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

// Stop drains the queue and stops the workers.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.stopCh)
	d.mu.Unlock()

	d.wg.Wait()
	d.inflight.Wait()
	d.logger.Info("side effect dispatcher stopped")
}

// Inline runs tasks synchronously on the caller's goroutine. Tests use it to
// make side effects deterministic.
type Inline struct {
	Logger *slog.Logger
}

func (i Inline) Dispatch(task notification.Task) {
	if task.Run == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil && i.Logger != nil {
			i.Logger.Error("side effect panicked", "task", task.Name, "panic", fmt.Sprint(r))
		}
	}()
	if err := task.Run(context.Background()); err != nil && i.Logger != nil {
		i.Logger.Warn("side effect failed", "task", task.Name, "error", err)
	}
}
