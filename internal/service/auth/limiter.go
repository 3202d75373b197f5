package auth

import (
	"sync"
	"time"

	"github.com/reslab/attendance-backend-go/internal/pkg/clock"
)

const (
	DefaultMaxAttempts = 5
	DefaultLockout     = 15 * time.Minute
)

type attempt struct {
	failures    int
	lockedUntil time.Time
}

// LoginLimiter locks a key after too many consecutive failed logins.
// Safe for concurrent use.
type LoginLimiter struct {
	mu          sync.Mutex
	clock       clock.Clock
	maxAttempts int
	lockout     time.Duration
	attempts    map[string]*attempt
}

func NewLoginLimiter(clk clock.Clock, maxAttempts int, lockout time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if lockout <= 0 {
		lockout = DefaultLockout
	}
	return &LoginLimiter{
		clock:       clk,
		maxAttempts: maxAttempts,
		lockout:     lockout,
		attempts:    make(map[string]*attempt),
	}
}

// Locked reports whether key is currently locked out.
func (l *LoginLimiter) Locked(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.attempts[key]
	if !ok {
		return false
	}
	now := l.clock.Now()
	if a.lockedUntil.IsZero() {
		return false
	}
	if now.Before(a.lockedUntil) {
		return true
	}
	// Lock expired; start over.
	delete(l.attempts, key)
	return false
}

// Fail records a failed attempt and reports whether key is now locked.
func (l *LoginLimiter) Fail(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.attempts[key]
	if !ok {
		a = &attempt{}
		l.attempts[key] = a
	}
	a.failures++
	if a.failures >= l.maxAttempts {
		a.lockedUntil = l.clock.Now().Add(l.lockout)
		return true
	}
	return false
}

// Reset clears the history for key after a successful login.
func (l *LoginLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}
