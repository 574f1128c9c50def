package app

import (
	"context"
	"database/sql"

	"github.com/Vishal6374/hr-harmony-sub000/internal/attendance"
	"github.com/Vishal6374/hr-harmony-sub000/internal/audit"
	"github.com/Vishal6374/hr-harmony-sub000/internal/authz"
	"github.com/Vishal6374/hr-harmony-sub000/internal/employee"
	"github.com/Vishal6374/hr-harmony-sub000/internal/holiday"
	"github.com/Vishal6374/hr-harmony-sub000/internal/leave"
	"github.com/Vishal6374/hr-harmony-sub000/internal/messaging/kafka"
	"github.com/Vishal6374/hr-harmony-sub000/internal/payroll"
	"github.com/Vishal6374/hr-harmony-sub000/internal/punch"
	"github.com/Vishal6374/hr-harmony-sub000/internal/regularization"
	"github.com/Vishal6374/hr-harmony-sub000/internal/reimbursement"
	"github.com/Vishal6374/hr-harmony-sub000/internal/workrules"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Registry holds the wired service graph so the API server and the worker
// can share one construction path.
type Registry struct {
	Authz          authz.Service
	Punch          punch.Service
	Attendance     attendance.Service
	Leave          leave.Service
	Regularization regularization.Service
	Payroll        payroll.Service
	WorkRules      workrules.Service
	Outbox         kafka.OutboxRepository
}

// limitRelay breaks the construction cycle between the work rules service
// (which notifies on limit changes) and the leave service (which consumes
// the notification but needs the rules at construction).
type limitRelay struct {
	target workrules.LimitSubscriber
}

func (r *limitRelay) SyncYearLimits(ctx context.Context, companyID string, year int) error {
	if r.target == nil {
		return nil
	}
	return r.target.SyncYearLimits(ctx, companyID, year)
}

func buildRegistry(db *sql.DB, gormDB *gorm.DB) (*Registry, error) {
	// --- Repositories ---
	punchRepo := punch.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	leaveBalanceRepo := leave.NewBalanceRepository(gormDB)
	regularizationRepo := regularization.NewRepository(gormDB)
	payrollRepo := payroll.NewRepository(gormDB)
	reimbursementRepo := reimbursement.NewRepository(gormDB)
	workRulesRepo := workrules.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Core ---
	authzService, err := authz.NewService()
	if err != nil {
		return nil, err
	}
	auditor := audit.NewRecorder(outboxRepo)

	relay := &limitRelay{}
	workRulesService := workrules.NewServiceWithSubscriber(db, workRulesRepo, relay)

	// --- Services ---
	punchService := punch.NewService(punchRepo)
	attendanceService := attendance.NewService(db, attendanceRepo, punchRepo,
		employeeRepo, holidayRepo, workRulesService, authzService, leaveRepo, auditor)
	leaveService := leave.NewService(db, leaveRepo, leaveBalanceRepo,
		employeeRepo, workRulesService, authzService, attendanceService, auditor)
	relay.target = leaveService
	regularizationService := regularization.NewService(db, regularizationRepo,
		employeeRepo, authzService, attendanceService, auditor)
	payrollService := payroll.NewService(db, payrollRepo, employeeRepo,
		attendanceRepo, reimbursementRepo, workRulesService, authzService, outboxRepo, auditor)

	return &Registry{
		Authz:          authzService,
		Punch:          punchService,
		Attendance:     attendanceService,
		Leave:          leaveService,
		Regularization: regularizationService,
		Payroll:        payrollService,
		WorkRules:      workRulesService,
		Outbox:         outboxRepo,
	}, nil
}

func registerModules(router *gin.Engine, reg *Registry, rdb *redis.Client) {
	// --- Handlers ---
	punchHandler := punch.NewHandler(reg.Punch)
	attendanceHandler := attendance.NewHandler(reg.Attendance)
	leaveHandler := leave.NewHandler(reg.Leave)
	regularizationHandler := regularization.NewHandler(reg.Regularization)
	payrollHandler := payroll.NewHandlerWithRedis(reg.Payroll, rdb)
	workRulesHandler := workrules.NewHandler(reg.WorkRules)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		punch.RegisterRoutes(api, punchHandler, reg.Authz)
		attendance.RegisterRoutes(api, attendanceHandler, reg.Authz)
		leave.RegisterRoutes(api, leaveHandler, reg.Authz)
		regularization.RegisterRoutes(api, regularizationHandler, reg.Authz)
		payroll.RegisterRoutes(api, payrollHandler, reg.Authz, rdb)
		workrules.RegisterRoutes(api, workRulesHandler, reg.Authz)
	}
}
