package cron

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reslab/attendance-backend-go/internal/domain/reconciliation"
	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
)

type fakeEngine struct {
	runs     int
	date     string
	trigger  reconciliation.Trigger
	runError error
}

func (f *fakeEngine) Run(_ context.Context, date string, trigger reconciliation.Trigger) (reconciliation.RunResult, error) {
	f.runs++
	f.date = date
	f.trigger = trigger
	return reconciliation.RunResult{}, f.runError
}

func (f *fakeEngine) CleanupDuplicates(context.Context, string) (reconciliation.DuplicateResult, error) {
	return reconciliation.DuplicateResult{}, nil
}

func (f *fakeEngine) AutoCheckout(context.Context, string) (reconciliation.AutoCheckoutResult, error) {
	return reconciliation.AutoCheckoutResult{}, nil
}

func (f *fakeEngine) SynthesizeAbsences(context.Context, string) (reconciliation.AbsenceResult, error) {
	return reconciliation.AbsenceResult{}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAttendanceJobs_RegisterAndRun(t *testing.T) {
	loc := clock.MustLoadLocation(clock.DefaultTimezone)
	s := NewScheduler(loc, quietLogger())
	engine := &fakeEngine{}

	require.NoError(t, NewAttendanceJobs(engine).RegisterJobs(s, ""))

	next := s.Entries()
	require.Len(t, next, 1)
	// Entries are only scheduled once started; before that Next is zero.
	assert.True(t, next[0].IsZero())

	s.RunOnce(context.Background())
	assert.Equal(t, 1, engine.runs)
	assert.Equal(t, "", engine.date)
	assert.Equal(t, reconciliation.TriggerSchedule, engine.trigger)
}

func TestScheduler_NextRunInZone(t *testing.T) {
	loc := clock.MustLoadLocation(clock.DefaultTimezone)
	s := NewScheduler(loc, quietLogger())
	require.NoError(t, NewAttendanceJobs(&fakeEngine{}).RegisterJobs(s, DefaultReconciliationSpec))

	s.Start()
	defer s.Stop()

	next := s.Entries()
	require.Len(t, next, 1)
	local := next[0].In(loc)
	assert.Equal(t, 18, local.Hour())
	assert.Equal(t, 1, local.Minute())
	assert.True(t, next[0].After(time.Now()))
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := NewScheduler(time.UTC, quietLogger())
	err := s.AddJob(Job{Name: "bad", Spec: "not a spec", Fn: func(context.Context) error { return nil }})
	assert.Error(t, err)
}

func TestScheduler_JobErrorIsLogged(t *testing.T) {
	s := NewScheduler(time.UTC, quietLogger())
	engine := &fakeEngine{runError: errors.New("boom")}
	require.NoError(t, NewAttendanceJobs(engine).RegisterJobs(s, "@every 1h"))

	s.RunOnce(context.Background())
	assert.Equal(t, 1, engine.runs)
}
