package scan

import "errors"

var (
	ErrUnknownCard     = errors.New("RFID card is not registered")
	ErrInvalidDeviceID = errors.New("device id is required")
	ErrInvalidRFID     = errors.New("rfid id is required")
)
