package effectiveness

import "errors"

var (
	ErrRecordNotFound = errors.New("effectiveness not processed for this period")
	ErrSlipExists     = errors.New("a salary slip exists for this period, clear it before reopening attendance")
)
