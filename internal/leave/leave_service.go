package leave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Vishal6374/hr-harmony-sub000/internal/audit"
	"github.com/Vishal6374/hr-harmony-sub000/internal/authz"
	"github.com/Vishal6374/hr-harmony-sub000/internal/employee"
	leaveerrors "github.com/Vishal6374/hr-harmony-sub000/internal/leave/errors"
	"github.com/Vishal6374/hr-harmony-sub000/internal/workrules"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AttendanceWriter is the slice of the attendance engine the lifecycle
// needs: filing and reverting on-leave days. Satisfied by the attendance
// service.
type AttendanceWriter interface {
	PutLeaveDay(ctx context.Context, companyID, employeeID string, date time.Time, editorID string) error
	RevertLeaveDay(ctx context.Context, companyID, employeeID string, date time.Time, editorID string) error
}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, actor authz.Actor, req SubmitLeaveRequest) (LeaveResponse, error)
	List(ctx context.Context, actor authz.Actor, q ListLeaveQuery) ([]LeaveResponse, error)
	GetByID(ctx context.Context, actor authz.Actor, id string) (LeaveResponse, error)
	Update(ctx context.Context, actor authz.Actor, id string, req UpdateLeaveRequest) (LeaveResponse, error)
	Delete(ctx context.Context, actor authz.Actor, id string) error
	DecideManager(ctx context.Context, actor authz.Actor, id string, approve bool, remarks string) (LeaveResponse, error)
	DecideFinal(ctx context.Context, actor authz.Actor, id string, approve bool, remarks string) (LeaveResponse, error)
	Cancel(ctx context.Context, actor authz.Actor, id string) (LeaveResponse, error)
	Withdraw(ctx context.Context, actor authz.Actor, id string) (LeaveResponse, error)
	Balances(ctx context.Context, actor authz.Actor, employeeID string, year int) ([]LeaveBalanceResponse, error)

	// SyncYearLimits implements workrules.LimitSubscriber.
	SyncYearLimits(ctx context.Context, companyID string, year int) error
}

type service struct {
	db         *sql.DB
	repo       Repository
	balances   BalanceRepository
	employees  employee.Repository
	rules      workrules.Service
	authz      authz.Service
	attendance AttendanceWriter
	auditor    audit.Recorder
	logger     *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	balances BalanceRepository,
	employees employee.Repository,
	rules workrules.Service,
	authzService authz.Service,
	attendanceWriter AttendanceWriter,
	auditor audit.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:         db,
		repo:       repo,
		balances:   balances,
		employees:  employees,
		rules:      rules,
		authz:      authzService,
		attendance: attendanceWriter,
		auditor:    auditor,
		logger:     l,
	}
}

func (s *service) Submit(ctx context.Context, actor authz.Actor, req SubmitLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("submit leave requested",
		zap.String("actor_id", actor.EmployeeID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	emp, err := s.employees.FindByIDAndCompany(ctx, actor.CompanyID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrEmployeeNotFound
		}
		return LeaveResponse{}, err
	}

	rel := actor.RelationTo(req.EmployeeID, managerIDOf(emp))
	allowed, err := s.authz.Allowed(actor, authz.OpLeaveSubmit, rel)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !allowed {
		return LeaveResponse{}, leaveerrors.ErrForbidden
	}

	days := workingDays(startDate, endDate)
	if days == 0 {
		return LeaveResponse{}, leaveerrors.ErrNoWorkingDays
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	overlap, err := qtx.HasOverlappingPeriod(ctx, actor.CompanyID, req.EmployeeID, startDate, endDate, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	if overlap {
		s.logger.Warn("submit leave overlap detected",
			zap.String("employee_id", req.EmployeeID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	rules := s.rules.Get(actor.CompanyID)
	limit := rules.LeaveLimit(req.LeaveType)
	bal, err := s.balances.WithTx(tx).GetOrCreate(ctx,
		actor.CompanyID, req.EmployeeID, req.LeaveType, startDate.Year(), limit)
	if err != nil {
		return LeaveResponse{}, err
	}
	if bal.Remaining() < days {
		return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
	}

	status, managerID, err := s.resolveRoute(ctx, emp)
	if err != nil {
		return LeaveResponse{}, err
	}

	l := &LeaveRequest{
		ID:         uuid.New(),
		CompanyID:  emp.CompanyID,
		EmployeeID: emp.ID,
		ManagerID:  managerID,
		LeaveType:  req.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		TotalDays:  days,
		Reason:     req.Reason,
		Status:     status,
	}
	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("submit leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := s.auditor.Record(ctx, tx, audit.Entry{
		Action:     "leave.submitted",
		ActorID:    actor.EmployeeID,
		CompanyID:  actor.CompanyID,
		EntityType: "leave_request",
		EntityID:   l.ID.String(),
		Detail: map[string]any{
			"employee_id": req.EmployeeID,
			"leave_type":  req.LeaveType,
			"total_days":  days,
			"status":      status,
		},
	}); err != nil {
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}

	s.logger.Info("leave submitted",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("status", status),
	)
	return mapToResponse(*l), nil
}

// resolveRoute decides where a fresh request starts. No manager, or a
// manager who is HR or admin, skips the manager level entirely.
func (s *service) resolveRoute(ctx context.Context, emp *employee.Employee) (string, *uuid.UUID, error) {
	if emp.ManagerID == nil {
		return StatusPendingHR, nil, nil
	}
	mgr, err := s.employees.FindByIDAndCompany(ctx, emp.CompanyID.String(), emp.ManagerID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StatusPendingHR, nil, nil
		}
		return "", nil, err
	}
	switch mgr.Role {
	case authz.RoleHR, authz.RoleAdmin:
		return StatusPendingHR, emp.ManagerID, nil
	default:
		return StatusPendingManager, emp.ManagerID, nil
	}
}

func (s *service) List(ctx context.Context, actor authz.Actor, q ListLeaveQuery) ([]LeaveResponse, error) {
	var (
		rows []LeaveRequest
		err  error
	)
	switch {
	case q.EmployeeID != "" && q.EmployeeID != actor.EmployeeID:
		emp, ferr := s.employees.FindByIDAndCompany(ctx, actor.CompanyID, q.EmployeeID)
		if ferr != nil {
			if errors.Is(ferr, gorm.ErrRecordNotFound) {
				return nil, leaveerrors.ErrEmployeeNotFound
			}
			return nil, ferr
		}
		rel := actor.RelationTo(q.EmployeeID, managerIDOf(emp))
		allowed, aerr := s.authz.Allowed(actor, authz.OpLeaveRead, rel)
		if aerr != nil {
			return nil, aerr
		}
		if !allowed {
			return nil, leaveerrors.ErrForbidden
		}
		rows, err = s.repo.FindByEmployee(ctx, actor.CompanyID, q.EmployeeID, q.Status)
	case actor.IsHR() || actor.IsAdmin():
		rows, err = s.repo.FindAllByCompany(ctx, actor.CompanyID, q.Status)
	case actor.NormalizedRole() == authz.RoleManager:
		rows, err = s.repo.FindByManager(ctx, actor.CompanyID, actor.EmployeeID, q.Status)
	default:
		rows, err = s.repo.FindByEmployee(ctx, actor.CompanyID, actor.EmployeeID, q.Status)
	}
	if err != nil {
		return nil, err
	}
	res := make([]LeaveResponse, len(rows))
	for i, l := range rows {
		res[i] = mapToResponse(l)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, actor authz.Actor, id string) (LeaveResponse, error) {
	l, err := s.repo.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	rel := actor.RelationTo(l.EmployeeID.String(), managerUUIDString(l.ManagerID))
	allowed, err := s.authz.Allowed(actor, authz.OpLeaveRead, rel)
	if err != nil {
		return LeaveResponse{}, err
	}
	if !allowed {
		return LeaveResponse{}, leaveerrors.ErrForbidden
	}
	return mapToResponse(*l), nil
}

// Update rewrites an initial-pending request. Only its owner may, and only
// before any decision happened.
func (s *service) Update(ctx context.Context, actor authz.Actor, id string, req UpdateLeaveRequest) (LeaveResponse, error) {
	startDate, endDate, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	days := workingDays(startDate, endDate)
	if days == 0 {
		return LeaveResponse{}, leaveerrors.ErrNoWorkingDays
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if !l.Unreviewed() {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}
	if l.EmployeeID.String() != actor.EmployeeID {
		return LeaveResponse{}, leaveerrors.ErrNotRequestOwner
	}

	overlap, err := qtx.HasOverlappingPeriod(ctx, actor.CompanyID, l.EmployeeID.String(), startDate, endDate, &id)
	if err != nil {
		return LeaveResponse{}, err
	}
	if overlap {
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	l.LeaveType = req.LeaveType
	l.StartDate = startDate
	l.EndDate = endDate
	l.TotalDays = days
	l.Reason = req.Reason

	if err := qtx.Update(ctx, l); err != nil {
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) DecideManager(ctx context.Context, actor authz.Actor, id string, approve bool, remarks string) (LeaveResponse, error) {
	if !approve && remarks == "" {
		return LeaveResponse{}, leaveerrors.ErrRemarksRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.Status != StatusPendingManager {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}
	if l.ManagerID == nil || l.ManagerID.String() != actor.EmployeeID {
		return LeaveResponse{}, leaveerrors.ErrNotAssignedManager
	}

	now := time.Now().UTC()
	actorUUID := uuid.MustParse(actor.EmployeeID)
	l.ManagerDecidedBy = &actorUUID
	l.ManagerDecidedAt = &now
	if approve {
		l.Status = StatusPendingHR
	} else {
		l.Status = StatusRejected
		l.DecisionRemarks = &remarks
	}

	if err := qtx.Update(ctx, l); err != nil {
		return LeaveResponse{}, err
	}
	if err := s.auditor.Record(ctx, tx, audit.Entry{
		Action:     "leave.manager_decided",
		ActorID:    actor.EmployeeID,
		CompanyID:  actor.CompanyID,
		EntityType: "leave_request",
		EntityID:   l.ID.String(),
		Detail:     map[string]any{"approved": approve, "status": l.Status},
	}); err != nil {
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}

	s.logger.Info("leave manager decision",
		zap.String("leave_id", id),
		zap.Bool("approved", approve),
	)
	return mapToResponse(*l), nil
}

func (s *service) DecideFinal(ctx context.Context, actor authz.Actor, id string, approve bool, remarks string) (LeaveResponse, error) {
	if !approve && remarks == "" {
		return LeaveResponse{}, leaveerrors.ErrRemarksRequired
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if l.Status != StatusPendingHR {
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	requester, err := s.employees.FindByIDAndCompany(ctx, actor.CompanyID, l.EmployeeID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrEmployeeNotFound
		}
		return LeaveResponse{}, err
	}
	if !authz.CanDecideFinalLeave(actor, l.EmployeeID.String(), requester.Role) {
		if actor.EmployeeID == l.EmployeeID.String() {
			return LeaveResponse{}, leaveerrors.ErrSelfDecision
		}
		return LeaveResponse{}, leaveerrors.ErrHRPeerDecision
	}

	if approve {
		rules := s.rules.Get(actor.CompanyID)
		limit := rules.LeaveLimit(l.LeaveType)
		bal, err := s.balances.WithTx(tx).GetOrCreate(ctx,
			actor.CompanyID, l.EmployeeID.String(), l.LeaveType, l.StartDate.Year(), limit)
		if err != nil {
			return LeaveResponse{}, err
		}
		applied, err := s.balances.WithTx(tx).AddUsed(ctx, bal.ID.String(), l.TotalDays)
		if err != nil {
			return LeaveResponse{}, err
		}
		if !applied {
			return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
		}
	}

	now := time.Now().UTC()
	actorUUID := uuid.MustParse(actor.EmployeeID)
	l.DecidedBy = &actorUUID
	l.DecidedAt = &now
	if remarks != "" {
		l.DecisionRemarks = &remarks
	}
	if approve {
		l.Status = StatusApproved
	} else {
		l.Status = StatusRejected
	}

	if err := qtx.Update(ctx, l); err != nil {
		return LeaveResponse{}, err
	}
	if err := s.auditor.Record(ctx, tx, audit.Entry{
		Action:     "leave.final_decided",
		ActorID:    actor.EmployeeID,
		CompanyID:  actor.CompanyID,
		EntityType: "leave_request",
		EntityID:   l.ID.String(),
		Detail:     map[string]any{"approved": approve, "status": l.Status},
	}); err != nil {
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}

	if approve {
		s.writeLeaveDays(ctx, *l, actor.EmployeeID)
	}

	s.logger.Info("leave final decision",
		zap.String("leave_id", id),
		zap.Bool("approved", approve),
	)
	return mapToResponse(*l), nil
}

// writeLeaveDays files one ON_LEAVE day per working day in the range. A day
// that fails (typically a locked month) is logged and skipped; the balance
// charge already committed and stands.
func (s *service) writeLeaveDays(ctx context.Context, l LeaveRequest, editorID string) {
	for d := l.StartDate; !d.After(l.EndDate); d = d.AddDate(0, 0, 1) {
		if isWeekend(d) {
			continue
		}
		if err := s.attendance.PutLeaveDay(ctx, l.CompanyID.String(), l.EmployeeID.String(), d, editorID); err != nil {
			s.logger.Error("write leave day failed",
				zap.String("leave_id", l.ID.String()),
				zap.String("date", d.Format("2006-01-02")),
				zap.Error(err),
			)
		}
	}
}

func (s *service) revertLeaveDays(ctx context.Context, l LeaveRequest, editorID string) {
	for d := l.StartDate; !d.After(l.EndDate); d = d.AddDate(0, 0, 1) {
		if isWeekend(d) {
			continue
		}
		if err := s.attendance.RevertLeaveDay(ctx, l.CompanyID.String(), l.EmployeeID.String(), d, editorID); err != nil {
			s.logger.Error("revert leave day failed",
				zap.String("leave_id", l.ID.String()),
				zap.String("date", d.Format("2006-01-02")),
				zap.Error(err),
			)
		}
	}
}

func (s *service) Cancel(ctx context.Context, actor authz.Actor, id string) (LeaveResponse, error) {
	return s.exitRequest(ctx, actor, id, StatusCancelled)
}

// Withdraw is the owner quietly pulling back a request still in flight.
func (s *service) Withdraw(ctx context.Context, actor authz.Actor, id string) (LeaveResponse, error) {
	return s.exitRequest(ctx, actor, id, StatusWithdrawn)
}

func (s *service) exitRequest(ctx context.Context, actor authz.Actor, id, exitStatus string) (LeaveResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	isOwner := l.EmployeeID.String() == actor.EmployeeID
	switch exitStatus {
	case StatusWithdrawn:
		if !l.IsPending() {
			return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
		}
		if !isOwner {
			return LeaveResponse{}, leaveerrors.ErrNotRequestOwner
		}
	case StatusCancelled:
		if l.IsTerminal() {
			return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
		}
		if !isOwner && !actor.Privileged() {
			return LeaveResponse{}, leaveerrors.ErrForbidden
		}
	}

	wasApproved := l.Status == StatusApproved
	if wasApproved {
		if err := s.reverseBalance(ctx, tx, l); err != nil {
			return LeaveResponse{}, err
		}
	}
	l.Status = exitStatus

	if err := qtx.Update(ctx, l); err != nil {
		return LeaveResponse{}, err
	}
	if err := s.auditor.Record(ctx, tx, audit.Entry{
		Action:     "leave.closed",
		ActorID:    actor.EmployeeID,
		CompanyID:  actor.CompanyID,
		EntityType: "leave_request",
		EntityID:   l.ID.String(),
		Detail:     map[string]any{"status": exitStatus, "was_approved": wasApproved},
	}); err != nil {
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return LeaveResponse{}, err
	}

	if wasApproved {
		s.revertLeaveDays(ctx, *l, actor.EmployeeID)
	}

	s.logger.Info("leave closed",
		zap.String("leave_id", id),
		zap.String("status", exitStatus),
	)
	return mapToResponse(*l), nil
}

func (s *service) reverseBalance(ctx context.Context, tx *sql.Tx, l *LeaveRequest) error {
	rules := s.rules.Get(l.CompanyID.String())
	limit := rules.LeaveLimit(l.LeaveType)
	bal, err := s.balances.WithTx(tx).GetOrCreate(ctx,
		l.CompanyID.String(), l.EmployeeID.String(), l.LeaveType, l.StartDate.Year(), limit)
	if err != nil {
		return err
	}
	applied, err := s.balances.WithTx(tx).AddUsed(ctx, bal.ID.String(), -l.TotalDays)
	if err != nil {
		return err
	}
	if !applied {
		s.logger.Warn("balance reversal out of range, skipped",
			zap.String("leave_id", l.ID.String()),
			zap.Int("days", l.TotalDays),
		)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, actor authz.Actor, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrLeaveNotFound
		}
		return err
	}

	isOwner := l.EmployeeID.String() == actor.EmployeeID
	if !actor.IsAdmin() {
		if !isOwner {
			return leaveerrors.ErrNotRequestOwner
		}
		if !l.Unreviewed() {
			return leaveerrors.ErrInvalidStatusTransition
		}
	}

	wasApproved := l.Status == StatusApproved
	if wasApproved {
		if err := s.reverseBalance(ctx, tx, l); err != nil {
			return err
		}
	}

	if err := qtx.Delete(ctx, actor.CompanyID, id); err != nil {
		return err
	}
	if err := s.auditor.Record(ctx, tx, audit.Entry{
		Action:     "leave.deleted",
		ActorID:    actor.EmployeeID,
		CompanyID:  actor.CompanyID,
		EntityType: "leave_request",
		EntityID:   id,
		Detail:     map[string]any{"was_approved": wasApproved},
	}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	if wasApproved {
		s.revertLeaveDays(ctx, *l, actor.EmployeeID)
	}
	return nil
}

func (s *service) Balances(ctx context.Context, actor authz.Actor, employeeID string, year int) ([]LeaveBalanceResponse, error) {
	target := employeeID
	if target == "" {
		target = actor.EmployeeID
	}

	rel := authz.RelOwn
	if target != actor.EmployeeID {
		emp, err := s.employees.FindByIDAndCompany(ctx, actor.CompanyID, target)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, leaveerrors.ErrEmployeeNotFound
			}
			return nil, err
		}
		rel = actor.RelationTo(target, managerIDOf(emp))
	}
	allowed, err := s.authz.Allowed(actor, authz.OpLeaveRead, rel)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, leaveerrors.ErrForbidden
	}

	rows, err := s.balances.FindByEmployeeAndYear(ctx, actor.CompanyID, target, year)
	if err != nil {
		return nil, err
	}
	res := make([]LeaveBalanceResponse, len(rows))
	for i, b := range rows {
		res[i] = LeaveBalanceResponse{
			EmployeeID:    b.EmployeeID.String(),
			LeaveType:     b.LeaveType,
			Year:          b.Year,
			TotalDays:     b.TotalDays,
			UsedDays:      b.UsedDays,
			RemainingDays: b.Remaining(),
		}
	}
	return res, nil
}

// SyncYearLimits pushes changed per-type entitlements onto every existing
// balance row of the year. Rows not yet materialized pick the new limit up
// lazily on creation.
func (s *service) SyncYearLimits(ctx context.Context, companyID string, year int) error {
	rules := s.rules.Get(companyID)
	for leaveType, days := range rules.LeaveTypeLimits {
		updated, err := s.balances.SetTotal(ctx, companyID, leaveType, year, days)
		if err != nil {
			s.logger.Error("sync year limit failed",
				zap.String("company_id", companyID),
				zap.String("leave_type", leaveType),
				zap.Error(err),
			)
			return err
		}
		if updated > 0 {
			s.logger.Info("leave balances re-synced",
				zap.String("company_id", companyID),
				zap.String("leave_type", leaveType),
				zap.Int("year", year),
				zap.Int64("rows", updated),
			)
		}
	}
	return nil
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse("2006-01-02", start)
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	endDate, err := time.Parse("2006-01-02", end)
	if err != nil {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return startDate, endDate, nil
}

// workingDays counts the weekdays in the inclusive range. Holidays are not
// subtracted; a leave day landing on a holiday is the employee's to spend.
func workingDays(start, end time.Time) int {
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if !isWeekend(d) {
			days++
		}
	}
	return days
}

func isWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func managerIDOf(emp *employee.Employee) string {
	if emp.ManagerID == nil {
		return ""
	}
	return emp.ManagerID.String()
}

func managerUUIDString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func mapToResponse(l LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:         l.ID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		TotalDays:  l.TotalDays,
		Reason:     l.Reason,
		Status:     l.Status,
	}
	if l.ManagerID != nil {
		v := l.ManagerID.String()
		resp.ManagerID = &v
	}
	if l.ManagerDecidedBy != nil {
		v := l.ManagerDecidedBy.String()
		resp.ManagerDecidedBy = &v
	}
	if l.DecidedBy != nil {
		v := l.DecidedBy.String()
		resp.DecidedBy = &v
	}
	resp.DecisionRemarks = l.DecisionRemarks
	return resp
}
