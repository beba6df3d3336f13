package attendance

import "errors"

var (
	ErrInvalidClassification = errors.New("invalid attendance classification")
	ErrDayOutOfRange         = errors.New("day is outside the period")
	ErrNegativeHours         = errors.New("hours must be non-negative")
	ErrNegativeSubsidy       = errors.New("subsidy amount must be non-negative")
	ErrSubsidiesNotFound     = errors.New("manual subsidies not found for this period")
)
