package cron

import (
	"context"

	"github.com/reslab/attendance-backend-go/internal/domain/reconciliation"
)

// DefaultReconciliationSpec runs one minute past the daily cutoff.
const DefaultReconciliationSpec = "1 18 * * *"

type AttendanceJobs struct {
	engine reconciliation.Engine
}

func NewAttendanceJobs(engine reconciliation.Engine) *AttendanceJobs {
	return &AttendanceJobs{engine: engine}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler, spec string) error {
	if spec == "" {
		spec = DefaultReconciliationSpec
	}
	return scheduler.AddJob(Job{
		Name:    "daily_reconciliation",
		Spec:    spec,
		Timeout: reconciliation.RunTimeout,
		Fn:      j.Reconcile,
	})
}

// Reconcile runs every phase for today. Per-phase results are logged by the engine.
func (j *AttendanceJobs) Reconcile(ctx context.Context) error {
	_, err := j.engine.Run(ctx, "", reconciliation.TriggerSchedule)
	return err
}
