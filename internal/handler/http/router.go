package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-payroll-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	appConfig config.AppConfig,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	payrollHandler PayrollHandler,
	paymentHandler PaymentHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(appConfig.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll"),
		slog.String("version", "v1.0.0"),
		slog.String("env", appConfig.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appConfig.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Route("/attendance", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAttendanceView)).
					Get("/effectiveness", attendanceHandler.ListEffectiveness)

				r.Route("/{employeeId}/{period}", func(r chi.Router) {
					r.With(middleware.RequirePermission(user.PermissionAttendanceView)).
						Get("/", attendanceHandler.GetGrid)

					// Manager only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionAttendanceEdit))
						r.Put("/days/{day}", attendanceHandler.RecordDay)
						r.Put("/grid", attendanceHandler.RecordGrid)
						r.Put("/subsidies", attendanceHandler.SetManualSubsidies)
					})

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionAttendanceFinalize))
						r.Post("/finalize", attendanceHandler.Finalize)
						r.Delete("/finalize", attendanceHandler.Unfinalize)
					})
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionPayrollView))
					r.Get("/", payrollHandler.ListSlips)
					r.Get("/summary", payrollHandler.GetSummary)
					r.Get("/export", payrollHandler.ExportCSV)
					r.Get("/{employeeId}/{period}", payrollHandler.GetSlip)
				})

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionPayrollCompute))
					r.Post("/{employeeId}/{period}/preview", payrollHandler.Preview)
					r.Post("/{employeeId}/{period}", payrollHandler.Compute)
					r.Put("/slips", payrollHandler.StoreSlip)
				})

				r.With(middleware.RequirePermission(user.PermissionPayrollClear)).
					Delete("/{employeeId}/{period}", payrollHandler.ClearSlip)
			})

			r.Route("/payments", func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.With(middleware.RequirePermission(user.PermissionPaymentPost)).
					Post("/", paymentHandler.PostBatch)
				r.With(middleware.RequirePermission(user.PermissionPaymentPost)).
					Post("/{id}/retry", paymentHandler.RetryPosting)
				r.With(middleware.RequirePermission(user.PermissionPaymentView)).
					Get("/{id}", paymentHandler.GetPayment)
			})
		})
	})
	return r
}
