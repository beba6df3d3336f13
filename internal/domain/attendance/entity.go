package attendance

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/shopspring/decimal"
)

// Classification is the closed set of daily attendance markers.
type Classification string

const (
	ClassificationRest                 Classification = "rest"
	ClassificationWorked               Classification = "worked"
	ClassificationJustifiedAbsence     Classification = "justified_absence"
	ClassificationUnjustifiedAbsence   Classification = "unjustified_absence"
	ClassificationVacation             Classification = "vacation"
	ClassificationAdmissionTermination Classification = "admission_termination"
)

func (c Classification) IsValid() bool {
	switch c {
	case ClassificationRest,
		ClassificationWorked,
		ClassificationJustifiedAbsence,
		ClassificationUnjustifiedAbsence,
		ClassificationVacation,
		ClassificationAdmissionTermination:
		return true
	}
	return false
}

// Entry is one cell column of the monthly attendance grid.
type Entry struct {
	EmployeeID     string
	Period         period.Period
	Day            int
	Classification Classification
	OvertimeHours  decimal.Decimal
	LostHours      decimal.Decimal
	UpdatedAt      time.Time
}

// ManualSubsidies override the employee's default transport and food amounts
// for a single period.
type ManualSubsidies struct {
	EmployeeID string
	Period     period.Period
	Transport  decimal.Decimal
	Food       decimal.Decimal
	UpdatedAt  time.Time
}

// Tally counts a grid by classification.
type Tally struct {
	Rest          int
	Worked        int
	Justified     int
	Unjustified   int
	Vacation      int
	AdmissionMark int
	OvertimeHours decimal.Decimal
	LostHours     decimal.Decimal
}

func Count(entries []Entry) Tally {
	t := Tally{OvertimeHours: decimal.Zero, LostHours: decimal.Zero}
	for _, e := range entries {
		switch e.Classification {
		case ClassificationRest:
			t.Rest++
		case ClassificationWorked:
			t.Worked++
		case ClassificationJustifiedAbsence:
			t.Justified++
		case ClassificationUnjustifiedAbsence:
			t.Unjustified++
		case ClassificationVacation:
			t.Vacation++
		case ClassificationAdmissionTermination:
			t.AdmissionMark++
		}
		t.OvertimeHours = t.OvertimeHours.Add(e.OvertimeHours)
		t.LostHours = t.LostHours.Add(e.LostHours)
	}
	return t
}
