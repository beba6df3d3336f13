package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/period"
	"github.com/go-chi/chi/v5"
)

// employeePeriod reads {employeeId} and {period} (YYYY-MM) from the path
func employeePeriod(r *http.Request) (string, period.Period, error) {
	p, err := period.Parse(chi.URLParam(r, "period"))
	if err != nil {
		return "", period.Period{}, err
	}
	return chi.URLParam(r, "employeeId"), p, nil
}

func periodQuery(r *http.Request) (period.Period, error) {
	return period.Parse(r.URL.Query().Get("period"))
}

func boolQuery(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
