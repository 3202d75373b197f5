package reconciliation

import "errors"

var (
	ErrAlreadyRunning = errors.New("reconciliation is already running")
	ErrInvalidDate    = errors.New("date must be in YYYY-MM-DD format")
)
