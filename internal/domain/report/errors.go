package report

import "errors"

var (
	ErrRangeTooLarge = errors.New("report range must not exceed 93 days")
)
