package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	attendanceerrors "github.com/Vishal6374/hr-harmony-sub000/internal/attendance/errors"
	"github.com/Vishal6374/hr-harmony-sub000/internal/audit"
	"github.com/Vishal6374/hr-harmony-sub000/internal/authz"
	"github.com/Vishal6374/hr-harmony-sub000/internal/employee"
	"github.com/Vishal6374/hr-harmony-sub000/internal/holiday"
	"github.com/Vishal6374/hr-harmony-sub000/internal/punch"
	"github.com/Vishal6374/hr-harmony-sub000/internal/workrules"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LeaveChecker answers whether an approved leave covers an employee-day.
// Implemented by the leave repository; declared here so the engine does not
// import the leave package.
type LeaveChecker interface {
	HasApprovedLeave(ctx context.Context, companyID, employeeID string, date time.Time) (bool, error)
}

//go:generate mockgen -source=attendance_service.go -destination=mock/attendance_service_mock.go -package=mock
type Service interface {
	Mark(ctx context.Context, actor authz.Actor, req MarkAttendanceRequest) (AttendanceResponse, error)
	Update(ctx context.Context, actor authz.Actor, recordID string, req UpdateAttendanceRequest) (AttendanceResponse, error)
	ListMonth(ctx context.Context, actor authz.Actor, q ListAttendanceQuery) ([]AttendanceResponse, error)
	LockMonth(ctx context.Context, companyID string, month, year int) (int64, error)

	// Writes on behalf of the leave lifecycle.
	PutLeaveDay(ctx context.Context, companyID, employeeID string, date time.Time, editorID string) error
	RevertLeaveDay(ctx context.Context, companyID, employeeID string, date time.Time, editorID string) error

	// Write on behalf of an approved regularization.
	ApplyCorrection(ctx context.Context, companyID, employeeID string, date time.Time, patch CorrectionPatch) (AttendanceResponse, error)

	// Scheduled maintenance passes.
	ResolvePunches(ctx context.Context, date time.Time) (ResolveResult, error)
	CorrectMissingCheckouts(ctx context.Context, now time.Time) (int, error)
	SweepAbsences(ctx context.Context, date time.Time) (SweepResult, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	punches   punch.Repository
	employees employee.Repository
	holidays  holiday.Repository
	rules     workrules.Service
	authz     authz.Service
	leaves    LeaveChecker
	auditor   audit.Recorder
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	punches punch.Repository,
	employees employee.Repository,
	holidays holiday.Repository,
	rules workrules.Service,
	authzService authz.Service,
	leaves LeaveChecker,
	auditor audit.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("attendance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("attendance.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		punches:   punches,
		employees: employees,
		holidays:  holidays,
		rules:     rules,
		authz:     authzService,
		leaves:    leaves,
		auditor:   auditor,
		logger:    l,
	}
}

func (s *service) Mark(ctx context.Context, actor authz.Actor, req MarkAttendanceRequest) (AttendanceResponse, error) {
	s.logger.Debug("mark attendance requested",
		zap.String("actor_id", actor.EmployeeID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("date", req.Date),
	)

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidDate
	}
	checkIn, err := parseOptionalTimestamp(req.CheckIn)
	if err != nil {
		return AttendanceResponse{}, err
	}
	checkOut, err := parseOptionalTimestamp(req.CheckOut)
	if err != nil {
		return AttendanceResponse{}, err
	}

	emp, err := s.employees.FindByIDAndCompany(ctx, actor.CompanyID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrEmployeeNotFound
		}
		return AttendanceResponse{}, err
	}

	rel := actor.RelationTo(req.EmployeeID, managerIDOf(emp))
	allowed, err := s.authz.Allowed(actor, authz.OpAttendanceMark, rel)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if !allowed {
		return AttendanceResponse{}, attendanceerrors.ErrForbidden
	}
	rules := s.rules.Get(actor.CompanyID)
	if rel == authz.RelOwn && !authz.CanMarkOwnAttendance(actor, rules.AllowSelfClockIn) {
		if actor.IsHR() {
			return AttendanceResponse{}, attendanceerrors.ErrHRSelfAttendance
		}
		return AttendanceResponse{}, attendanceerrors.ErrSelfClockInDisabled
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("mark attendance begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByEmployeeAndDate(ctx, actor.CompanyID, req.EmployeeID, date)
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return AttendanceResponse{}, err
	}
	if exists && row.IsLocked {
		return AttendanceResponse{}, attendanceerrors.ErrRecordLocked
	}
	if !exists {
		row = &Attendance{
			ID:             uuid.New(),
			CompanyID:      emp.CompanyID,
			EmployeeID:     emp.ID,
			AttendanceDate: date,
			Source:         SourceManual,
		}
	}

	if checkIn != nil {
		row.CheckIn = checkIn
	}
	if checkOut != nil {
		row.CheckOut = checkOut
	}
	if req.Notes != nil {
		row.Notes = req.Notes
	}
	if row.CheckOut != nil && row.CheckIn == nil {
		return AttendanceResponse{}, attendanceerrors.ErrCheckOutWithoutCheckIn
	}
	if exists {
		row.EditedBy = parseUUIDPtr(actor.EmployeeID)
	}

	applyDerivation(row, rules, req.Status)

	if exists {
		err = qtx.Update(ctx, row)
	} else {
		err = qtx.Create(ctx, row)
	}
	if err != nil {
		s.logger.Error("mark attendance persist failed",
			zap.String("employee_id", req.EmployeeID),
			zap.Error(err),
		)
		return AttendanceResponse{}, err
	}

	if err := s.auditor.Record(ctx, tx, audit.Entry{
		Action:     "attendance.marked",
		ActorID:    actor.EmployeeID,
		CompanyID:  actor.CompanyID,
		EntityType: "attendance",
		EntityID:   row.ID.String(),
		Detail: map[string]any{
			"employee_id": req.EmployeeID,
			"date":        req.Date,
			"status":      row.Status,
		},
	}); err != nil {
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("attendance marked",
		zap.String("employee_id", req.EmployeeID),
		zap.String("date", req.Date),
		zap.String("status", row.Status),
	)
	return mapToResponse(*row), nil
}

func (s *service) Update(ctx context.Context, actor authz.Actor, recordID string, req UpdateAttendanceRequest) (AttendanceResponse, error) {
	if _, err := uuid.Parse(recordID); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrRecordNotFound
	}
	checkIn, err := parseOptionalTimestamp(req.CheckIn)
	if err != nil {
		return AttendanceResponse{}, err
	}
	checkOut, err := parseOptionalTimestamp(req.CheckOut)
	if err != nil {
		return AttendanceResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update attendance begin tx failed", zap.Error(err))
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByID(ctx, actor.CompanyID, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, attendanceerrors.ErrRecordNotFound
		}
		return AttendanceResponse{}, err
	}
	if row.IsLocked {
		return AttendanceResponse{}, attendanceerrors.ErrRecordLocked
	}

	rel := actor.RelationTo(row.EmployeeID.String(), "")
	allowed, err := s.authz.Allowed(actor, authz.OpAttendanceUpdate, rel)
	if err != nil {
		return AttendanceResponse{}, err
	}
	if !allowed {
		return AttendanceResponse{}, attendanceerrors.ErrForbidden
	}
	if rel == authz.RelOwn && actor.IsHR() && !actor.IsAdmin() {
		return AttendanceResponse{}, attendanceerrors.ErrHRSelfAttendance
	}

	if checkIn != nil {
		row.CheckIn = checkIn
	}
	if checkOut != nil {
		row.CheckOut = checkOut
	}
	if req.Notes != nil {
		row.Notes = req.Notes
	}
	if row.CheckOut != nil && row.CheckIn == nil {
		return AttendanceResponse{}, attendanceerrors.ErrCheckOutWithoutCheckIn
	}
	row.EditedBy = parseUUIDPtr(actor.EmployeeID)
	row.EditReason = &req.Reason
	row.Source = SourceAdjusted

	applyDerivation(row, s.rules.Get(actor.CompanyID), req.Status)

	if err := qtx.Update(ctx, row); err != nil {
		s.logger.Error("update attendance persist failed",
			zap.String("record_id", recordID),
			zap.Error(err),
		)
		return AttendanceResponse{}, err
	}
	if err := s.auditor.Record(ctx, tx, audit.Entry{
		Action:     "attendance.updated",
		ActorID:    actor.EmployeeID,
		CompanyID:  actor.CompanyID,
		EntityType: "attendance",
		EntityID:   row.ID.String(),
		Detail: map[string]any{
			"status": row.Status,
			"reason": req.Reason,
		},
	}); err != nil {
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}

	s.logger.Info("attendance updated",
		zap.String("record_id", recordID),
		zap.String("status", row.Status),
	)
	return mapToResponse(*row), nil
}

func (s *service) ListMonth(ctx context.Context, actor authz.Actor, q ListAttendanceQuery) ([]AttendanceResponse, error) {
	target := q.EmployeeID
	if target == "" {
		target = actor.EmployeeID
	}

	rel := authz.RelOwn
	if target != actor.EmployeeID {
		emp, err := s.employees.FindByIDAndCompany(ctx, actor.CompanyID, target)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, attendanceerrors.ErrEmployeeNotFound
			}
			return nil, err
		}
		rel = actor.RelationTo(target, managerIDOf(emp))
	}
	allowed, err := s.authz.Allowed(actor, authz.OpAttendanceRead, rel)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, attendanceerrors.ErrForbidden
	}

	rows, err := s.repo.FindByEmployeeAndMonth(ctx, actor.CompanyID, target, q.Month, q.Year)
	if err != nil {
		return nil, err
	}
	res := make([]AttendanceResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

// LockMonth freezes every record of the month. Re-running it is harmless:
// already-locked rows are not counted again.
func (s *service) LockMonth(ctx context.Context, companyID string, month, year int) (int64, error) {
	count, err := s.repo.LockMonth(ctx, companyID, month, year)
	if err != nil {
		s.logger.Error("lock month failed",
			zap.String("company_id", companyID),
			zap.Int("month", month),
			zap.Int("year", year),
			zap.Error(err),
		)
		return 0, err
	}
	s.logger.Info("attendance month locked",
		zap.String("company_id", companyID),
		zap.Int("month", month),
		zap.Int("year", year),
		zap.Int64("count", count),
	)
	return count, nil
}

func (s *service) PutLeaveDay(ctx context.Context, companyID, employeeID string, date time.Time, editorID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	reason := "leave approved"
	row, err := qtx.FindByEmployeeAndDate(ctx, companyID, employeeID, date)
	switch {
	case err == nil:
		if row.IsLocked {
			return attendanceerrors.ErrRecordLocked
		}
		if row.Status == StatusOnLeave {
			return tx.Commit()
		}
		row.Status = StatusOnLeave
		row.WorkHours = 0
		row.OvertimeMinutes = 0
		row.LateMinutes = 0
		row.EditedBy = parseUUIDPtr(editorID)
		row.EditReason = &reason
		err = qtx.Update(ctx, row)
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = &Attendance{
			ID:             uuid.New(),
			CompanyID:      uuid.MustParse(companyID),
			EmployeeID:     uuid.MustParse(employeeID),
			AttendanceDate: date,
			Status:         StatusOnLeave,
			Source:         SourceManual,
			EditedBy:       parseUUIDPtr(editorID),
			EditReason:     &reason,
		}
		err = qtx.Create(ctx, row)
		if err != nil && isUniqueViolation(err) {
			// Another writer created the day first; the retry path is the
			// update branch on the caller's next attempt.
			s.logger.Warn("leave day insert raced, leaving existing record",
				zap.String("employee_id", employeeID),
				zap.Time("date", date),
			)
			return nil
		}
	default:
		return err
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// RevertLeaveDay undoes PutLeaveDay after a cancellation. Only rows still
// ON_LEAVE are touched; anything else means the day was re-derived since.
func (s *service) RevertLeaveDay(ctx context.Context, companyID, employeeID string, date time.Time, editorID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByEmployeeAndDate(ctx, companyID, employeeID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if row.Status != StatusOnLeave {
		return nil
	}
	if row.IsLocked {
		s.logger.Warn("leave day revert skipped, record locked",
			zap.String("employee_id", employeeID),
			zap.Time("date", date),
		)
		return nil
	}

	reason := "leave cancelled"
	row.EditedBy = parseUUIDPtr(editorID)
	row.EditReason = &reason
	applyDerivation(row, s.rules.Get(companyID), nil)

	if err := qtx.Update(ctx, row); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) ApplyCorrection(ctx context.Context, companyID, employeeID string, date time.Time, patch CorrectionPatch) (AttendanceResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AttendanceResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByEmployeeAndDate(ctx, companyID, employeeID, date)
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return AttendanceResponse{}, err
	}
	if exists && row.IsLocked {
		return AttendanceResponse{}, attendanceerrors.ErrRecordLocked
	}
	if !exists {
		row = &Attendance{
			ID:             uuid.New(),
			CompanyID:      uuid.MustParse(companyID),
			EmployeeID:     uuid.MustParse(employeeID),
			AttendanceDate: date,
		}
	}

	if patch.CheckIn != nil {
		row.CheckIn = patch.CheckIn
	}
	if patch.CheckOut != nil {
		row.CheckOut = patch.CheckOut
	}
	row.Source = SourceAdjusted
	row.EditedBy = parseUUIDPtr(patch.EditorID)
	row.EditReason = &patch.Reason

	applyDerivation(row, s.rules.Get(companyID), patch.Status)

	if exists {
		err = qtx.Update(ctx, row)
	} else {
		err = qtx.Create(ctx, row)
	}
	if err != nil {
		s.logger.Error("apply correction persist failed",
			zap.String("employee_id", employeeID),
			zap.Time("date", date),
			zap.Error(err),
		)
		return AttendanceResponse{}, err
	}
	if err := s.auditor.Record(ctx, tx, audit.Entry{
		Action:     "attendance.corrected",
		ActorID:    patch.EditorID,
		CompanyID:  companyID,
		EntityType: "attendance",
		EntityID:   row.ID.String(),
		Detail: map[string]any{
			"employee_id": employeeID,
			"date":        date.Format("2006-01-02"),
			"status":      row.Status,
			"reason":      patch.Reason,
		},
	}); err != nil {
		return AttendanceResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return AttendanceResponse{}, err
	}
	return mapToResponse(*row), nil
}

func parseOptionalTimestamp(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		return nil, attendanceerrors.ErrInvalidTimestamp
	}
	t = t.UTC()
	return &t, nil
}

func parseUUIDPtr(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}

func managerIDOf(emp *employee.Employee) string {
	if emp.ManagerID == nil {
		return ""
	}
	return emp.ManagerID.String()
}

func mapToResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:              a.ID.String(),
		EmployeeID:      a.EmployeeID.String(),
		Date:            a.AttendanceDate.Format("2006-01-02"),
		Status:          a.Status,
		WorkHours:       a.WorkHours,
		OvertimeMinutes: a.OvertimeMinutes,
		LateMinutes:     a.LateMinutes,
		IsLocked:        a.IsLocked,
		Source:          a.Source,
		EditReason:      a.EditReason,
		Notes:           a.Notes,
	}
	if a.CheckIn != nil {
		v := a.CheckIn.Format(time.RFC3339)
		resp.CheckIn = &v
	}
	if a.CheckOut != nil {
		v := a.CheckOut.Format(time.RFC3339)
		resp.CheckOut = &v
	}
	if a.EditedBy != nil {
		v := a.EditedBy.String()
		resp.EditedBy = &v
	}
	return resp
}
