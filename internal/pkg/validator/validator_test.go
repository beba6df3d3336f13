package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"3f1c1c7e-8f6a-4b8e-9d0a-2b7c5e4f1a2b", true},
		{"0190a5e4-7c3b-7d2e-8f1a-6b5c4d3e2f1a", true},
		{"3F1C1C7E-8F6A-4B8E-9D0A-2B7C5E4F1A2B", true},
		{"urn:uuid:3f1c1c7e-8f6a-4b8e-9d0a-2b7c5e4f1a2b", false},
		{"3f1c1c7e8f6a4b8e9d0a2b7c5e4f1a2b", false},
		{"not-a-uuid", false},
		{"", false},
	}
	for _, c := range cases {
		got := IsValidUUID(c.input)
		if got != c.want {
			t.Errorf("IsValidUUID(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "employee_id", Message: "is required"},
		{Field: "period", Message: "invalid"},
	}
	got := errs.Error()
	want := "employee_id: is required; period: invalid"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "employee_id", Message: "is required"},
		{Field: "days[0].day", Message: "out of range"},
		{Field: "days[0].day", Message: "duplicated"},
	}
	got := errs.ToMap()
	want := map[string]string{"employee_id": "is required", "days[0].day": "out of range; duplicated"}
	if len(got) != len(want) {
		t.Errorf("ValidationErrors.ToMap() length = %d, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("ValidationErrors.ToMap()[%q] = %q, want %q", k, got[k], v)
		}
	}
}
