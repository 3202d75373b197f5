package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/reslab/attendance-backend-go/internal/domain/notification"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcher_RunsTasksAndSwallowsFailures(t *testing.T) {
	d := NewDispatcher(Config{WorkerCount: 2, QueueSize: 4}, quietLogger())
	defer d.Stop()

	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		d.Dispatch(notification.Task{Name: "count", Run: func(context.Context) error {
			ran.Add(1)
			return nil
		}})
	}
	d.Dispatch(notification.Task{Name: "fail", Run: func(context.Context) error { return errors.New("redis down") }})
	d.Dispatch(notification.Task{Name: "panic", Run: func(context.Context) error { panic("boom") }})

	d.Wait()
	assert.EqualValues(t, 10, ran.Load())
}

func TestDispatcher_TaskTimeout(t *testing.T) {
	d := NewDispatcher(Config{WorkerCount: 1, TaskTimeout: 20 * time.Millisecond}, quietLogger())
	defer d.Stop()

	var deadlineHit atomic.Bool
	d.Dispatch(notification.Task{Name: "slow", Run: func(ctx context.Context) error {
		<-ctx.Done()
		deadlineHit.Store(errors.Is(ctx.Err(), context.DeadlineExceeded))
		return ctx.Err()
	}})
	d.Wait()
	assert.True(t, deadlineHit.Load())
}

func TestDispatcher_StopDrainsQueue(t *testing.T) {
	d := NewDispatcher(Config{WorkerCount: 1, QueueSize: 8}, quietLogger())

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		d.Dispatch(notification.Task{Name: "count", Run: func(context.Context) error {
			ran.Add(1)
			return nil
		}})
	}
	d.Stop()
	assert.EqualValues(t, 5, ran.Load())

	d.Dispatch(notification.Task{Name: "late", Run: func(context.Context) error {
		ran.Add(1)
		return nil
	}})
	assert.EqualValues(t, 5, ran.Load())
}

func TestInline(t *testing.T) {
	var ran bool
	Inline{Logger: quietLogger()}.Dispatch(notification.Task{Name: "x", Run: func(context.Context) error {
		ran = true
		return nil
	}})
	assert.True(t, ran)
}
