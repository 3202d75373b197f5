package reconciliation

import (
	"context"
	"time"
)

// RunTimeout bounds one reconciliation run. A lease must outlive it.
const RunTimeout = 10 * time.Minute

// Engine runs the daily reconciliation. Every method takes the run guard, so
// a phase never overlaps a full run.
type Engine interface {
	Run(ctx context.Context, date string, trigger Trigger) (RunResult, error)
	CleanupDuplicates(ctx context.Context, date string) (DuplicateResult, error)
	AutoCheckout(ctx context.Context, date string) (AutoCheckoutResult, error)
	SynthesizeAbsences(ctx context.Context, date string) (AbsenceResult, error)
}

// Locker is a cross-instance lease. Acquire returns false when another holder
// owns it; release is safe to call once the run ends.
type Locker interface {
	Acquire(ctx context.Context, ttl time.Duration) (acquired bool, release func(context.Context) error, err error)
}
