package tax

import "errors"

var (
	ErrEmptySchedule       = errors.New("tax schedule has no bands")
	ErrScheduleNotFromZero = errors.New("first tax band must start at zero")
	ErrBandsNotAscending   = errors.New("tax bands must be strictly ascending by lower bound")
	ErrInvalidRate         = errors.New("tax rate must be between 0 and 1")
	ErrNegativeDeduction   = errors.New("tax band fixed deduction must be non-negative")
	ErrNegativeCeiling     = errors.New("exemption ceiling must be non-negative")
)
