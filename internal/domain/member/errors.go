package member

import "errors"

var (
	ErrMemberNotFound        = errors.New("member not found")
	ErrRFIDExists            = errors.New("RFID tag already registered to another member")
	ErrStudentIDExists       = errors.New("student id already registered")
	ErrMemberInactive        = errors.New("member is inactive")
	ErrMemberAlreadyActive   = errors.New("member is already active")
	ErrMemberAlreadyInactive = errors.New("member is already inactive")
	ErrInvalidDutyDay        = errors.New("duty day must be an Indonesian weekday name")
)
