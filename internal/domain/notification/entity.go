package notification

import "context"

// Task is a best-effort side effect run after a primary write succeeded,
// such as touching a device or bumping a live counter.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Dispatcher runs tasks off the request path. Dispatch never blocks and never
// reports the task's error to the caller.
type Dispatcher interface {
	Dispatch(task Task)
}
