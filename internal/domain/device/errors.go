package device

import "errors"

var (
	ErrDeviceNotFound = errors.New("device not found")
	ErrInvalidDevice  = errors.New("device id is required")
)
