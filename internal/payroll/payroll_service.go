package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/Vishal6374/hr-harmony-sub000/internal/attendance"
	"github.com/Vishal6374/hr-harmony-sub000/internal/audit"
	"github.com/Vishal6374/hr-harmony-sub000/internal/authz"
	"github.com/Vishal6374/hr-harmony-sub000/internal/employee"
	"github.com/Vishal6374/hr-harmony-sub000/internal/events"
	"github.com/Vishal6374/hr-harmony-sub000/internal/messaging/kafka"
	payrollerrors "github.com/Vishal6374/hr-harmony-sub000/internal/payroll/errors"
	"github.com/Vishal6374/hr-harmony-sub000/internal/reimbursement"
	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/contextutil"
	"github.com/Vishal6374/hr-harmony-sub000/internal/workrules"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttendanceSource is the slice of the attendance layer payroll needs:
// reading one employee-month and freezing a month once it is paid out.
// Satisfied by the attendance repository.
type AttendanceSource interface {
	FindByEmployeeAndMonth(ctx context.Context, companyID, employeeID string, month, year int) ([]attendance.Attendance, error)
	LockMonth(ctx context.Context, companyID string, month, year int) (int64, error)
}

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	Generate(ctx context.Context, actor authz.Actor, req GeneratePayrollRequest) (GenerateResult, error)
	Preview(ctx context.Context, actor authz.Actor, req PreviewPayrollRequest) (PreviewResult, error)
	MarkPaid(ctx context.Context, actor authz.Actor, batchID string) (BatchResponse, error)
	CancelBatch(ctx context.Context, actor authz.Actor, batchID string) (BatchResponse, error)
	UpdateSlip(ctx context.Context, actor authz.Actor, slipID string, req UpdateSlipRequest) (SlipResponse, error)
	GetBatch(ctx context.Context, actor authz.Actor, batchID string) (GenerateResult, error)
	ListBatches(ctx context.Context, actor authz.Actor, q ListBatchQuery) ([]BatchResponse, error)
	GetSlip(ctx context.Context, actor authz.Actor, slipID string) (SlipResponse, error)
}

type service struct {
	db             *sql.DB
	repo           Repository
	employees      employee.Repository
	attendances    AttendanceSource
	reimbursements reimbursement.Repository
	rules          workrules.Service
	authz          authz.Service
	outbox         kafka.OutboxRepository
	auditor        audit.Recorder
	logger         *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	attendances AttendanceSource,
	reimbursements reimbursement.Repository,
	rules workrules.Service,
	authzService authz.Service,
	outbox kafka.OutboxRepository,
	auditor audit.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:             db,
		repo:           repo,
		employees:      employees,
		attendances:    attendances,
		reimbursements: reimbursements,
		rules:          rules,
		authz:          authzService,
		outbox:         outbox,
		auditor:        auditor,
		logger:         l,
	}
}

// Generate runs payroll for a month. The full-population flow refuses to
// run twice for the same month; the selective flow reuses the existing
// batch and replaces the named employees' slips, so re-running it is safe.
func (s *service) Generate(ctx context.Context, actor authz.Actor, req GeneratePayrollRequest) (GenerateResult, error) {
	selective := len(req.EmployeeIDs) > 0

	var emps []employee.Employee
	var err error
	if selective {
		emps, err = s.employees.FindByIDsAndCompany(ctx, actor.CompanyID, req.EmployeeIDs)
	} else {
		emps, err = s.employees.FindActiveByCompany(ctx, actor.CompanyID)
	}
	if err != nil {
		return GenerateResult{}, err
	}
	if len(emps) == 0 {
		return GenerateResult{}, payrollerrors.ErrNoEmployees
	}

	rules := s.rules.Get(actor.CompanyID)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("generate payroll begin tx failed", zap.Error(err))
		return GenerateResult{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	batch, err := qtx.FindActiveBatch(ctx, actor.CompanyID, req.Month, req.Year)
	switch {
	case err == nil && !selective:
		return GenerateResult{}, payrollerrors.ErrBatchExists
	case err == nil && selective:
		if batch.IsPaid() {
			return GenerateResult{}, payrollerrors.ErrBatchPaid
		}
		ids := make([]string, len(emps))
		for i, e := range emps {
			ids[i] = e.ID.String()
		}
		if err := qtx.DeleteSlipsByBatchAndEmployees(ctx, actor.CompanyID, batch.ID.String(), ids); err != nil {
			return GenerateResult{}, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		actorUUID := uuid.MustParse(actor.EmployeeID)
		batch = &PayrollBatch{
			ID:          uuid.New(),
			CompanyID:   uuid.MustParse(actor.CompanyID),
			Month:       req.Month,
			Year:        req.Year,
			Status:      BatchStatusDraft,
			ProcessedBy: &actorUUID,
		}
		if err := qtx.CreateBatch(ctx, batch); err != nil {
			return GenerateResult{}, err
		}
	default:
		return GenerateResult{}, err
	}

	var (
		slips  []SlipResponse
		failed []string
	)
	for _, emp := range emps {
		slip, err := s.buildSlip(ctx, batch, emp, rules, 0)
		if err != nil {
			s.logger.Error("slip computation failed",
				zap.String("batch_id", batch.ID.String()),
				zap.String("employee_id", emp.ID.String()),
				zap.Error(err),
			)
			failed = append(failed, emp.ID.String())
			continue
		}
		if err := qtx.CreateSlip(ctx, slip); err != nil {
			s.logger.Error("slip persist failed",
				zap.String("employee_id", emp.ID.String()),
				zap.Error(err),
			)
			failed = append(failed, emp.ID.String())
			continue
		}
		slips = append(slips, mapSlipToResponse(*slip))
	}

	// The batch total is the sum of the stored slip nets, read back through
	// the one summation path.
	total, err := qtx.SumNetByBatch(ctx, actor.CompanyID, batch.ID.String())
	if err != nil {
		return GenerateResult{}, err
	}
	all, err := qtx.FindSlipsByBatch(ctx, actor.CompanyID, batch.ID.String())
	if err != nil {
		return GenerateResult{}, err
	}

	// A selective re-run touches a subset, so the intended headcount set at
	// creation time stands.
	if !selective {
		batch.EmployeeCount = len(emps)
	}
	batch.ProcessedCount = len(all)
	batch.TotalAmount = total
	batch.Status = BatchStatusProcessed
	if err := qtx.UpdateBatch(ctx, batch); err != nil {
		return GenerateResult{}, err
	}
	if err := s.auditor.Record(ctx, tx, audit.Entry{
		Action:     "payroll.generated",
		ActorID:    actor.EmployeeID,
		CompanyID:  actor.CompanyID,
		EntityType: "payroll_batch",
		EntityID:   batch.ID.String(),
		Detail: map[string]any{
			"month":     req.Month,
			"year":      req.Year,
			"selective": selective,
			"intended":  len(emps),
			"processed": len(slips),
		},
	}); err != nil {
		return GenerateResult{}, err
	}
	if err := tx.Commit(); err != nil {
		return GenerateResult{}, err
	}

	s.logger.Info("payroll generated",
		zap.String("batch_id", batch.ID.String()),
		zap.Int("month", req.Month),
		zap.Int("year", req.Year),
		zap.Int("intended", len(emps)),
		zap.Int("processed", len(slips)),
		zap.Int("failed", len(failed)),
		zap.Int64("total_amount", batch.TotalAmount),
	)
	return GenerateResult{
		Batch:  mapBatchToResponse(*batch),
		Slips:  slips,
		Failed: failed,
	}, nil
}

// buildSlip computes one employee's slip from the batch month's attendance.
func (s *service) buildSlip(ctx context.Context, batch *PayrollBatch, emp employee.Employee, rules workrules.Rules, otherDeductions int64) (*SalarySlip, error) {
	records, err := s.attendances.FindByEmployeeAndMonth(ctx,
		batch.CompanyID.String(), emp.ID.String(), batch.Month, batch.Year)
	if err != nil {
		return nil, err
	}

	var present, half, absent int
	for _, rec := range records {
		switch rec.Status {
		case attendance.StatusPresent:
			present++
		case attendance.StatusHalfDay:
			half++
		case attendance.StatusAbsent:
			absent++
		}
	}

	reimb, err := s.reimbursements.SumApprovedUnpaid(ctx, batch.CompanyID.String(), emp.ID.String())
	if err != nil {
		return nil, err
	}

	amounts := computeSlip(slipInput{
		MonthlySalary:   emp.MonthlySalary,
		DaysInMonth:     daysInMonth(batch.Month, batch.Year),
		AbsentDays:      absent,
		HalfDays:        half,
		Reimbursements:  reimb,
		OtherDeductions: otherDeductions,
	}, rules)

	return &SalarySlip{
		ID:                 uuid.New(),
		CompanyID:          batch.CompanyID,
		BatchID:            batch.ID,
		EmployeeID:         emp.ID,
		Month:              batch.Month,
		Year:               batch.Year,
		BasicSalary:        amounts.Basic,
		Allowances:         amounts.Allowances,
		ReimbursementTotal: reimb,
		GrossSalary:        amounts.Gross,
		LossOfPay:          amounts.LossOfPay,
		PFDeduction:        amounts.PF,
		TaxDeduction:       amounts.Tax,
		OtherDeductions:    amounts.OtherDeductions,
		TotalDeductions:    amounts.TotalDeductions,
		NetSalary:          amounts.Net,
		PresentDays:        present,
		HalfDays:           half,
		AbsentDays:         absent,
		Status:             SlipStatusProcessed,
	}, nil
}

// Preview runs the same math as Generate without touching storage.
func (s *service) Preview(ctx context.Context, actor authz.Actor, req PreviewPayrollRequest) (PreviewResult, error) {
	emps, err := s.employees.FindByIDsAndCompany(ctx, actor.CompanyID, req.EmployeeIDs)
	if err != nil {
		return PreviewResult{}, err
	}
	if len(emps) == 0 {
		return PreviewResult{}, payrollerrors.ErrNoEmployees
	}

	rules := s.rules.Get(actor.CompanyID)
	scratch := &PayrollBatch{
		ID:        uuid.New(),
		CompanyID: uuid.MustParse(actor.CompanyID),
		Month:     req.Month,
		Year:      req.Year,
	}

	result := PreviewResult{Month: req.Month, Year: req.Year}
	for _, emp := range emps {
		slip, err := s.buildSlip(ctx, scratch, emp, rules, 0)
		if err != nil {
			return PreviewResult{}, err
		}
		result.Slips = append(result.Slips, mapSlipToResponse(*slip))
		result.TotalAmount += slip.NetSalary
	}
	return result, nil
}

// MarkPaid is the terminal transition: slips flip to PAID, funded
// reimbursements are consumed, and the month's attendance is frozen.
func (s *service) MarkPaid(ctx context.Context, actor authz.Actor, batchID string) (BatchResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BatchResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	batch, err := qtx.FindBatchByID(ctx, actor.CompanyID, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BatchResponse{}, payrollerrors.ErrBatchNotFound
		}
		return BatchResponse{}, err
	}
	if batch.IsPaid() {
		return BatchResponse{}, payrollerrors.ErrBatchPaid
	}
	if batch.Status != BatchStatusProcessed {
		return BatchResponse{}, payrollerrors.ErrBatchNotProcessed
	}

	slips, err := qtx.FindSlipsByBatch(ctx, actor.CompanyID, batchID)
	if err != nil {
		return BatchResponse{}, err
	}
	if _, err := qtx.MarkSlipsPaid(ctx, actor.CompanyID, batchID); err != nil {
		return BatchResponse{}, err
	}

	employeeIDs := make([]string, len(slips))
	for i, sl := range slips {
		employeeIDs[i] = sl.EmployeeID.String()
	}
	if len(employeeIDs) > 0 {
		if err := s.reimbursements.WithTx(tx).MarkPaidByBatch(ctx, actor.CompanyID, batchID, employeeIDs); err != nil {
			return BatchResponse{}, err
		}
	}

	now := time.Now().UTC()
	actorUUID := uuid.MustParse(actor.EmployeeID)
	batch.Status = BatchStatusPaid
	batch.PaidBy = &actorUUID
	batch.PaidAt = &now
	if err := qtx.UpdateBatch(ctx, batch); err != nil {
		return BatchResponse{}, err
	}

	if err := s.enqueueBatchPaid(ctx, tx, actor, batch); err != nil {
		return BatchResponse{}, err
	}
	if err := s.auditor.Record(ctx, tx, audit.Entry{
		Action:     "payroll.batch_paid",
		ActorID:    actor.EmployeeID,
		CompanyID:  actor.CompanyID,
		EntityType: "payroll_batch",
		EntityID:   batchID,
		Detail: map[string]any{
			"month":        batch.Month,
			"year":         batch.Year,
			"total_amount": batch.TotalAmount,
		},
	}); err != nil {
		return BatchResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return BatchResponse{}, err
	}

	locked, err := s.attendances.LockMonth(ctx, actor.CompanyID, batch.Month, batch.Year)
	if err != nil {
		// The payment is committed; the lock can be re-applied through the
		// attendance lock endpoint.
		s.logger.Error("attendance lock after payout failed",
			zap.String("batch_id", batchID),
			zap.Error(err),
		)
	}

	s.logger.Info("payroll batch paid",
		zap.String("batch_id", batchID),
		zap.Int("month", batch.Month),
		zap.Int("year", batch.Year),
		zap.Int64("total_amount", batch.TotalAmount),
		zap.Int64("records_locked", locked),
	)
	return mapBatchToResponse(*batch), nil
}

func (s *service) enqueueBatchPaid(ctx context.Context, tx *sql.Tx, actor authz.Actor, batch *PayrollBatch) error {
	evt := events.PayrollBatchPaidEvent{
		EventType:   "payroll.batch.paid",
		BatchID:     batch.ID.String(),
		CompanyID:   batch.CompanyID.String(),
		Month:       batch.Month,
		Year:        batch.Year,
		TotalAmount: batch.TotalAmount,
		PaidBy:      actor.EmployeeID,
		OccurredAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "payroll_batch",
		AggregateID:   batch.ID.String(),
		EventType:     evt.EventType,
		Topic:         events.PayrollBatchPaidTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

// CancelBatch frees the (month, year) slot for a re-run. Paid batches are
// beyond cancellation.
func (s *service) CancelBatch(ctx context.Context, actor authz.Actor, batchID string) (BatchResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return BatchResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	batch, err := qtx.FindBatchByID(ctx, actor.CompanyID, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BatchResponse{}, payrollerrors.ErrBatchNotFound
		}
		return BatchResponse{}, err
	}
	if batch.IsPaid() {
		return BatchResponse{}, payrollerrors.ErrBatchPaid
	}

	// Drop the slips so a re-run of the month does not trip over the
	// per-employee uniqueness of the cancelled run.
	if err := qtx.DeleteSlipsByBatch(ctx, actor.CompanyID, batchID); err != nil {
		return BatchResponse{}, err
	}
	batch.Status = BatchStatusCancelled
	if err := qtx.UpdateBatch(ctx, batch); err != nil {
		return BatchResponse{}, err
	}
	if err := s.auditor.Record(ctx, tx, audit.Entry{
		Action:     "payroll.batch_cancelled",
		ActorID:    actor.EmployeeID,
		CompanyID:  actor.CompanyID,
		EntityType: "payroll_batch",
		EntityID:   batchID,
		Detail:     map[string]any{"month": batch.Month, "year": batch.Year},
	}); err != nil {
		return BatchResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return BatchResponse{}, err
	}

	s.logger.Info("payroll batch cancelled", zap.String("batch_id", batchID))
	return mapBatchToResponse(*batch), nil
}

// UpdateSlip corrects the editable components of an unpaid slip and
// recomputes gross, deductions, net, and the batch total from scratch.
func (s *service) UpdateSlip(ctx context.Context, actor authz.Actor, slipID string, req UpdateSlipRequest) (SlipResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SlipResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	slip, err := qtx.FindSlipByID(ctx, actor.CompanyID, slipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SlipResponse{}, payrollerrors.ErrSlipNotFound
		}
		return SlipResponse{}, err
	}
	if slip.Status == SlipStatusPaid {
		return SlipResponse{}, payrollerrors.ErrSlipPaid
	}

	if req.Allowances != nil {
		slip.Allowances = *req.Allowances
	}
	if req.OtherDeductions != nil {
		slip.OtherDeductions = *req.OtherDeductions
	}

	// Gross and net follow from the components deterministically.
	slip.GrossSalary = slip.BasicSalary + slip.Allowances + slip.ReimbursementTotal
	slip.TotalDeductions = slip.LossOfPay + slip.PFDeduction + slip.TaxDeduction + slip.OtherDeductions
	slip.NetSalary = slip.GrossSalary - slip.TotalDeductions

	if err := qtx.UpdateSlip(ctx, slip); err != nil {
		return SlipResponse{}, err
	}

	batch, err := qtx.FindBatchByID(ctx, actor.CompanyID, slip.BatchID.String())
	if err != nil {
		return SlipResponse{}, err
	}
	total, err := qtx.SumNetByBatch(ctx, actor.CompanyID, slip.BatchID.String())
	if err != nil {
		return SlipResponse{}, err
	}
	batch.TotalAmount = total
	if err := qtx.UpdateBatch(ctx, batch); err != nil {
		return SlipResponse{}, err
	}

	if err := s.auditor.Record(ctx, tx, audit.Entry{
		Action:     "payroll.slip_updated",
		ActorID:    actor.EmployeeID,
		CompanyID:  actor.CompanyID,
		EntityType: "salary_slip",
		EntityID:   slipID,
		Detail: map[string]any{
			"net_salary":  slip.NetSalary,
			"batch_total": total,
		},
	}); err != nil {
		return SlipResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return SlipResponse{}, err
	}

	s.logger.Info("salary slip updated",
		zap.String("slip_id", slipID),
		zap.Int64("net_salary", slip.NetSalary),
	)
	return mapSlipToResponse(*slip), nil
}

func (s *service) GetBatch(ctx context.Context, actor authz.Actor, batchID string) (GenerateResult, error) {
	batch, err := s.repo.FindBatchByID(ctx, actor.CompanyID, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return GenerateResult{}, payrollerrors.ErrBatchNotFound
		}
		return GenerateResult{}, err
	}
	slips, err := s.repo.FindSlipsByBatch(ctx, actor.CompanyID, batchID)
	if err != nil {
		return GenerateResult{}, err
	}
	res := GenerateResult{Batch: mapBatchToResponse(*batch)}
	for _, sl := range slips {
		res.Slips = append(res.Slips, mapSlipToResponse(sl))
	}
	return res, nil
}

func (s *service) ListBatches(ctx context.Context, actor authz.Actor, q ListBatchQuery) ([]BatchResponse, error) {
	rows, err := s.repo.ListBatches(ctx, actor.CompanyID, q.Year, q.Status)
	if err != nil {
		return nil, err
	}
	res := make([]BatchResponse, len(rows))
	for i, b := range rows {
		res[i] = mapBatchToResponse(b)
	}
	return res, nil
}

// GetSlip lets an employee read their own slip; anything broader needs the
// company-wide read grant.
func (s *service) GetSlip(ctx context.Context, actor authz.Actor, slipID string) (SlipResponse, error) {
	slip, err := s.repo.FindSlipByID(ctx, actor.CompanyID, slipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SlipResponse{}, payrollerrors.ErrSlipNotFound
		}
		return SlipResponse{}, err
	}

	rel := authz.RelAny
	if slip.EmployeeID.String() == actor.EmployeeID {
		rel = authz.RelOwn
	}
	allowed, err := s.authz.Allowed(actor, authz.OpPayrollRead, rel)
	if err != nil {
		return SlipResponse{}, err
	}
	if !allowed {
		return SlipResponse{}, payrollerrors.ErrForbidden
	}
	return mapSlipToResponse(*slip), nil
}

func mapBatchToResponse(b PayrollBatch) BatchResponse {
	return BatchResponse{
		ID:             b.ID.String(),
		Month:          b.Month,
		Year:           b.Year,
		Status:         b.Status,
		EmployeeCount:  b.EmployeeCount,
		ProcessedCount: b.ProcessedCount,
		TotalAmount:    b.TotalAmount,
	}
}

func mapSlipToResponse(s SalarySlip) SlipResponse {
	return SlipResponse{
		ID:                 s.ID.String(),
		EmployeeID:         s.EmployeeID.String(),
		Month:              s.Month,
		Year:               s.Year,
		BasicSalary:        s.BasicSalary,
		Allowances:         s.Allowances,
		ReimbursementTotal: s.ReimbursementTotal,
		GrossSalary:        s.GrossSalary,
		LossOfPay:          s.LossOfPay,
		PFDeduction:        s.PFDeduction,
		TaxDeduction:       s.TaxDeduction,
		OtherDeductions:    s.OtherDeductions,
		TotalDeductions:    s.TotalDeductions,
		NetSalary:          s.NetSalary,
		PresentDays:        s.PresentDays,
		HalfDays:           s.HalfDays,
		AbsentDays:         s.AbsentDays,
		Status:             s.Status,
	}
}
