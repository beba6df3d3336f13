package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payment"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/taxtable"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	attendancesvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/attendance"
	effectivenesssvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/effectiveness"
	paymentsvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/payment"
	payrollsvc "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type stubLedger struct {
	fail error
}

func (l *stubLedger) PostMovement(_ context.Context, m payment.Movement) (payment.Receipt, error) {
	if l.fail != nil {
		return payment.Receipt{}, l.fail
	}
	return payment.Receipt{Reference: "mv-" + m.IdempotencyKey}, nil
}

type testServer struct {
	router *chi.Mux
	jwt    jwt.Service
	ledger *stubLedger
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	rules, err := taxtable.Default()
	require.NoError(t, err)

	locks := keylock.New()
	employees := memory.NewEmployeeRepository(
		employee.Employee{ID: "E1", Name: "Ana", Role: "Clerk", BaseSalary: decimal.NewFromInt(150000), FoodSubsidy: decimal.NewFromInt(15000), TransportSubsidy: decimal.NewFromInt(10000)},
		employee.Employee{ID: "E2", Name: "Bruno", BaseSalary: decimal.NewFromInt(90000)},
	)
	slips := memory.NewSlipRepository()
	gate := effectivenesssvc.NewGate(memory.NewEffectivenessRepository(), slips, locks)
	att := attendancesvc.NewAttendanceService(database.NoopTransactor{}, memory.NewAttendanceRepository(), gate)
	calc := payrollsvc.NewCalculator(gate, att, rules)
	payrollService := payrollsvc.NewPayrollService(slips, employees, calc, locks)
	ledger := &stubLedger{}
	paymentService := paymentsvc.NewPaymentService(
		database.NoopTransactor{}, memory.NewPaymentRepository(), slips, payrollService, gate, ledger, locks, "CASH-1",
	)

	jwtService := jwt.NewJWTService(handlerTestSecret, "1h")
	router := NewRouter(
		config.AppConfig{Env: "test", AllowedOrigins: []string{"http://localhost:3000"}},
		jwtService,
		NewAttendanceHandler(att, gate),
		NewPayrollHandler(payrollService),
		NewPaymentHandler(paymentService),
	)
	return &testServer{router: router, jwt: jwtService, ledger: ledger}
}

func (s *testServer) token(t *testing.T, role user.Role) string {
	t.Helper()
	token, _, err := s.jwt.GenerateAccessToken("U-"+string(role), role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/payroll?period=2024-05", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RevokedToken(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, user.RoleManager)
	s.jwt.RevokeToken(token)

	rec := s.do(t, http.MethodGet, "/api/v1/payroll?period=2024-05", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_EmployeeCannotCompute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/payroll/E1/2024-05", s.token(t, user.RoleEmployee), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_GateClosedIsConflict(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, user.RoleManager)

	rec := s.do(t, http.MethodPost, "/api/v1/payroll/E1/2024-05", token, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "GATE_CLOSED", resp.Error.Code)
}

func TestRouter_InvalidPeriodIsBadRequest(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/payroll/E1/2024-13", s.token(t, user.RoleManager), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AttendanceValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/api/v1/attendance/E1/2024-02/days/30", s.token(t, user.RoleManager),
		map[string]any{"classification": "worked"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode(t, rec)
	assert.Contains(t, resp.Error.Details, "day")
}

func TestRouter_PayrollCycle(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, user.RoleManager)

	rec := s.do(t, http.MethodPut, "/api/v1/attendance/E1/2024-05/grid", manager, map[string]any{
		"fill": "worked",
		"days": []map[string]any{{"day": 2, "classification": "unjustified_absence"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/attendance/E1/2024-05/finalize", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/payroll/E1/2024-05/preview", manager, map[string]any{
		"overrides": map[string]any{"bonus": "5000"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/payroll/E1/2024-05", manager, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/payroll/E1/2024-05", manager, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_PERIOD", decode(t, rec).Error.Code)

	// reopening attendance is refused while the slip exists
	rec = s.do(t, http.MethodDelete, "/api/v1/attendance/E1/2024-05/finalize", manager, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/payroll/export?period=2024-05", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "employeeId,employeeName,employeeRole"))
	assert.True(t, strings.HasSuffix(lines[1], ",5,2024,false"))
}

func TestRouter_PaymentRequiresOwner(t *testing.T) {
	s := newTestServer(t)
	body := map[string]any{"employee_ids": []string{"E1"}, "period": map[string]int{"year": 2024, "month": 5}}

	rec := s.do(t, http.MethodPost, "/api/v1/payments", s.token(t, user.RoleManager), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_PaymentBatch(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, user.RoleManager)
	owner := s.token(t, user.RoleOwner)

	rec := s.do(t, http.MethodPost, "/api/v1/attendance/E1/2024-05/finalize", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	s.ledger.fail = errors.New("ledger unavailable")
	body := map[string]any{"employee_ids": []string{"E1", "E2"}, "period": map[string]int{"year": 2024, "month": 5}}
	rec = s.do(t, http.MethodPost, "/api/v1/payments", owner, body)
	require.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.Equal(t, "LEDGER_POSTING_FAILED", resp.Error.Code)
	paymentID := resp.Error.Details["payment_id"]
	require.NotEmpty(t, paymentID)

	s.ledger.fail = nil
	rec = s.do(t, http.MethodPost, "/api/v1/payments/"+paymentID+"/retry", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/v1/payments/"+paymentID, manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/payments/"+paymentID+"/retry", owner, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/payroll/E1/2024-05", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var slip struct {
		Data struct {
			Status      string `json:"status"`
			IsProcessed bool   `json:"is_processed"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &slip))
	assert.Equal(t, "paid", slip.Data.Status)
	assert.True(t, slip.Data.IsProcessed)
}

func TestRouter_PaymentIDMustBeUUID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/payments/not-a-uuid", s.token(t, user.RoleOwner), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_RetryOfChangedBatchIsConflict(t *testing.T) {
	s := newTestServer(t)
	manager := s.token(t, user.RoleManager)
	owner := s.token(t, user.RoleOwner)

	rec := s.do(t, http.MethodPost, "/api/v1/attendance/E1/2024-05/finalize", manager, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	s.ledger.fail = errors.New("ledger unavailable")
	body := map[string]any{"employee_ids": []string{"E1"}, "period": map[string]int{"year": 2024, "month": 5}}
	rec = s.do(t, http.MethodPost, "/api/v1/payments", owner, body)
	require.Equal(t, http.StatusBadGateway, rec.Code, rec.Body.String())
	paymentID := decode(t, rec).Error.Details["payment_id"]
	s.ledger.fail = nil

	rec = s.do(t, http.MethodDelete, "/api/v1/payroll/E1/2024-05?force=true", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/payments/"+paymentID+"/retry", owner, nil)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.Equal(t, "BATCH_CHANGED", resp.Error.Code)
	assert.Equal(t, paymentID, resp.Error.Details["payment_id"])
	assert.NotEmpty(t, resp.Error.Details["changed_slip_ids"])
}

func TestRouter_StoreSlipRequiresOpenGate(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPut, "/api/v1/payroll/slips", s.token(t, user.RoleManager), map[string]any{
		"id":          "S1",
		"employee_id": "E1",
		"month":       5,
		"year":        2024,
		"base_salary": "500000",
		"gross_total": "500000",
		"inss":        "0",
		"irt":         "0",
		"net_total":   "500000",
	})
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Equal(t, "GATE_CLOSED", decode(t, rec).Error.Code)
}
