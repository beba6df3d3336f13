package effectiveness

import "github.com/shopspring/decimal"

type RecordResponse struct {
	EmployeeID      string          `json:"employee_id"`
	Period          string          `json:"period"`
	UnjustifiedDays int             `json:"unjustified_days"`
	JustifiedDays   int             `json:"justified_days"`
	WorkedDays      int             `json:"worked_days"`
	VacationDays    int             `json:"vacation_days"`
	OvertimeHours   decimal.Decimal `json:"overtime_hours"`
	LostHours       decimal.Decimal `json:"lost_hours"`
	FinalizedBy     string          `json:"finalized_by,omitempty"`
	FinalizedAt     string          `json:"finalized_at"`
}

func ToResponse(r Record) RecordResponse {
	return RecordResponse{
		EmployeeID:      r.EmployeeID,
		Period:          r.Period.String(),
		UnjustifiedDays: r.UnjustifiedDays,
		JustifiedDays:   r.JustifiedDays,
		WorkedDays:      r.WorkedDays,
		VacationDays:    r.VacationDays,
		OvertimeHours:   r.OvertimeHours,
		LostHours:       r.LostHours,
		FinalizedBy:     r.FinalizedBy,
		FinalizedAt:     r.FinalizedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
