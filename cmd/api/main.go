package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/effectiveness"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payment"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/tax"
	appHTTP "github.com/cmlabs-hris/hris-payroll-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/keylock"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/ledger"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/taxtable"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/memory"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-payroll-go/internal/service/attendance"
	effectivenessService "github.com/cmlabs-hris/hris-payroll-go/internal/service/effectiveness"
	paymentService "github.com/cmlabs-hris/hris-payroll-go/internal/service/payment"
	payrollService "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
)

type repositories struct {
	transactor    database.Transactor
	employees     employee.EmployeeRepository
	attendance    attendance.AttendanceRepository
	effectiveness effectiveness.EffectivenessRepository
	slips         payroll.SlipRepository
	payments      payment.PaymentRepository
	close         func()
}

func newRepositories(cfg *config.Config) (repositories, error) {
	switch cfg.Storage.Type {
	case "postgres":
		db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
		if err != nil {
			return repositories{}, fmt.Errorf("connect to database: %w", err)
		}
		return repositories{
			transactor:    postgresql.NewTransactor(db),
			employees:     postgresql.NewEmployeeRepository(db),
			attendance:    postgresql.NewAttendanceRepository(db),
			effectiveness: postgresql.NewEffectivenessRepository(db),
			slips:         postgresql.NewSlipRepository(db),
			payments:      postgresql.NewPaymentRepository(db),
			close:         db.Close,
		}, nil
	case "memory":
		slog.Warn("Using in-memory storage, data is lost on restart and no employees are loaded")
		return repositories{
			transactor:    database.NoopTransactor{},
			employees:     memory.NewEmployeeRepository(),
			attendance:    memory.NewAttendanceRepository(),
			effectiveness: memory.NewEffectivenessRepository(),
			slips:         memory.NewSlipRepository(),
			payments:      memory.NewPaymentRepository(),
			close:         func() {},
		}, nil
	default:
		return repositories{}, fmt.Errorf("unsupported storage type: %q", cfg.Storage.Type)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.App.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	repos, err := newRepositories(cfg)
	if err != nil {
		log.Fatal("Failed to initialize storage: ", err)
	}
	defer repos.close()

	rules, err := loadTaxRules(cfg.Tax)
	if err != nil {
		log.Fatal("Failed to load tax schedule: ", err)
	}
	slog.Info("Tax schedule loaded", "version", rules.Schedule.Version, "bands", len(rules.Schedule.Bands))

	locks := keylock.New()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	ledgerClient := ledger.NewClient(cfg.Ledger, ledger.WithLogger(slog.Default()))

	gate := effectivenessService.NewGate(repos.effectiveness, repos.slips, locks)
	attendanceSvc := attendanceService.NewAttendanceService(repos.transactor, repos.attendance, gate)
	calculator := payrollService.NewCalculator(gate, attendanceSvc, rules)
	payrollSvc := payrollService.NewPayrollService(repos.slips, repos.employees, calculator, locks)
	paymentSvc := paymentService.NewPaymentService(
		repos.transactor,
		repos.payments,
		repos.slips,
		payrollSvc,
		gate,
		ledgerClient,
		locks,
		cfg.Ledger.DefaultCashAccount,
	)

	scheduler := cron.NewScheduler()
	cron.NewPayrollJobs(paymentSvc).RegisterJobs(scheduler, cfg.Cron.PostingRetryInterval)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		cfg.App,
		JWTService,
		appHTTP.NewAttendanceHandler(attendanceSvc, gate),
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewPaymentHandler(paymentSvc),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env, "storage", cfg.Storage.Type)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}

func loadTaxRules(cfg config.TaxConfig) (tax.Rules, error) {
	if cfg.SchedulePath == "" {
		return taxtable.Default()
	}
	return taxtable.Load(cfg.SchedulePath)
}
