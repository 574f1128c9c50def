package regularization

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Vishal6374/hr-harmony-sub000/internal/attendance"
	"github.com/Vishal6374/hr-harmony-sub000/internal/audit"
	"github.com/Vishal6374/hr-harmony-sub000/internal/authz"
	"github.com/Vishal6374/hr-harmony-sub000/internal/employee"
	regularizationerrors "github.com/Vishal6374/hr-harmony-sub000/internal/regularization/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Corrector is the slice of the attendance engine a review needs: patching
// one employee-day. Satisfied by the attendance service.
type Corrector interface {
	ApplyCorrection(ctx context.Context, companyID, employeeID string, date time.Time, patch attendance.CorrectionPatch) (attendance.AttendanceResponse, error)
}

//go:generate mockgen -source=regularization_service.go -destination=mock/regularization_service_mock.go -package=mock
type Service interface {
	Request(ctx context.Context, actor authz.Actor, req CreateRegularizationRequest) (RegularizationResponse, error)
	List(ctx context.Context, actor authz.Actor, q ListRegularizationQuery) ([]RegularizationResponse, error)
	GetByID(ctx context.Context, actor authz.Actor, id string) (RegularizationResponse, error)
	Process(ctx context.Context, actor authz.Actor, id string, approve bool, note string) (RegularizationResponse, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	employees employee.Repository
	authz     authz.Service
	corrector Corrector
	auditor   audit.Recorder
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	authzService authz.Service,
	corrector Corrector,
	auditor audit.Recorder,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("regularization.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("regularization.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		employees: employees,
		authz:     authzService,
		corrector: corrector,
		auditor:   auditor,
		logger:    l,
	}
}

func (s *service) Request(ctx context.Context, actor authz.Actor, req CreateRegularizationRequest) (RegularizationResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return RegularizationResponse{}, regularizationerrors.ErrInvalidDate
	}

	emp, err := s.employees.FindByIDAndCompany(ctx, actor.CompanyID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RegularizationResponse{}, regularizationerrors.ErrEmployeeNotFound
		}
		return RegularizationResponse{}, err
	}

	rel := actor.RelationTo(req.EmployeeID, managerIDOf(emp))
	allowed, err := s.authz.Allowed(actor, authz.OpRegularizeRequest, rel)
	if err != nil {
		return RegularizationResponse{}, err
	}
	if !allowed {
		return RegularizationResponse{}, regularizationerrors.ErrForbidden
	}

	checkIn, err := parseOptionalTimestamp(req.CheckIn)
	if err != nil {
		return RegularizationResponse{}, err
	}
	checkOut, err := parseOptionalTimestamp(req.CheckOut)
	if err != nil {
		return RegularizationResponse{}, err
	}
	if err := validateProposal(req.RequestType, checkIn, checkOut, req.Status); err != nil {
		return RegularizationResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("request regularization begin tx failed", zap.Error(err))
		return RegularizationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	pending, err := qtx.HasPendingForDate(ctx, actor.CompanyID, req.EmployeeID, date)
	if err != nil {
		return RegularizationResponse{}, err
	}
	if pending {
		return RegularizationResponse{}, regularizationerrors.ErrDuplicatePending
	}

	r := &RegularizationRequest{
		ID:               uuid.New(),
		CompanyID:        emp.CompanyID,
		EmployeeID:       emp.ID,
		AttendanceDate:   date,
		RequestType:      req.RequestType,
		ProposedCheckIn:  checkIn,
		ProposedCheckOut: checkOut,
		ProposedStatus:   req.Status,
		Reason:           req.Reason,
		Status:           StatusPending,
	}
	if err := qtx.Create(ctx, r); err != nil {
		s.logger.Error("request regularization persist failed", zap.Error(err))
		return RegularizationResponse{}, err
	}
	if err := s.auditor.Record(ctx, tx, audit.Entry{
		Action:     "regularization.requested",
		ActorID:    actor.EmployeeID,
		CompanyID:  actor.CompanyID,
		EntityType: "regularization_request",
		EntityID:   r.ID.String(),
		Detail: map[string]any{
			"employee_id":  req.EmployeeID,
			"date":         req.Date,
			"request_type": req.RequestType,
		},
	}); err != nil {
		return RegularizationResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return RegularizationResponse{}, err
	}

	s.logger.Info("regularization requested",
		zap.String("request_id", r.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("date", req.Date),
		zap.String("request_type", req.RequestType),
	)
	return mapToResponse(*r), nil
}

// validateProposal rejects a request whose proposed values do not carry the
// fields its type promises to change.
func validateProposal(requestType string, checkIn, checkOut *time.Time, status *string) error {
	switch requestType {
	case TypeCheckIn:
		if checkIn == nil {
			return regularizationerrors.ErrMissingProposedValue
		}
	case TypeCheckOut:
		if checkOut == nil {
			return regularizationerrors.ErrMissingProposedValue
		}
	case TypeBoth:
		if checkIn == nil || checkOut == nil {
			return regularizationerrors.ErrMissingProposedValue
		}
	case TypeStatusChange:
		if status == nil || *status == "" {
			return regularizationerrors.ErrMissingProposedValue
		}
	}
	return nil
}

func (s *service) List(ctx context.Context, actor authz.Actor, q ListRegularizationQuery) ([]RegularizationResponse, error) {
	var (
		rows []RegularizationRequest
		err  error
	)
	switch {
	case q.EmployeeID != "" && q.EmployeeID != actor.EmployeeID:
		if !actor.Privileged() {
			return nil, regularizationerrors.ErrForbidden
		}
		rows, err = s.repo.FindByEmployee(ctx, actor.CompanyID, q.EmployeeID, q.Status)
	case actor.Privileged():
		rows, err = s.repo.FindAllByCompany(ctx, actor.CompanyID, q.Status)
	default:
		rows, err = s.repo.FindByEmployee(ctx, actor.CompanyID, actor.EmployeeID, q.Status)
	}
	if err != nil {
		return nil, err
	}
	res := make([]RegularizationResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, actor authz.Actor, id string) (RegularizationResponse, error) {
	r, err := s.repo.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RegularizationResponse{}, regularizationerrors.ErrRequestNotFound
		}
		return RegularizationResponse{}, err
	}
	if r.EmployeeID.String() != actor.EmployeeID && !actor.Privileged() {
		return RegularizationResponse{}, regularizationerrors.ErrForbidden
	}
	return mapToResponse(*r), nil
}

// Process resolves a pending request. The attendance patch lands first in
// its own transaction; the request flips to APPROVED only once the record
// actually changed. A locked month therefore leaves the request pending for
// a later retry instead of marking it approved with nothing applied.
func (s *service) Process(ctx context.Context, actor authz.Actor, id string, approve bool, note string) (RegularizationResponse, error) {
	if !approve && note == "" {
		return RegularizationResponse{}, regularizationerrors.ErrNoteRequired
	}

	r, err := s.repo.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RegularizationResponse{}, regularizationerrors.ErrRequestNotFound
		}
		return RegularizationResponse{}, err
	}
	if r.IsResolved() {
		return RegularizationResponse{}, regularizationerrors.ErrAlreadyResolved
	}
	if r.EmployeeID.String() == actor.EmployeeID {
		return RegularizationResponse{}, regularizationerrors.ErrSelfReview
	}

	if approve {
		patch := attendance.CorrectionPatch{
			EditorID: actor.EmployeeID,
			Reason:   "regularization: " + r.Reason,
		}
		switch r.RequestType {
		case TypeCheckIn:
			patch.CheckIn = r.ProposedCheckIn
		case TypeCheckOut:
			patch.CheckOut = r.ProposedCheckOut
		case TypeBoth:
			patch.CheckIn = r.ProposedCheckIn
			patch.CheckOut = r.ProposedCheckOut
		case TypeStatusChange:
			patch.Status = r.ProposedStatus
		}
		if _, err := s.corrector.ApplyCorrection(ctx,
			actor.CompanyID, r.EmployeeID.String(), r.AttendanceDate, patch); err != nil {
			s.logger.Warn("regularization correction rejected",
				zap.String("request_id", id),
				zap.Error(err),
			)
			return RegularizationResponse{}, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RegularizationResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// Re-read under the transaction: a concurrent reviewer may have
	// resolved it since the check above.
	r, err = qtx.FindByIDAndCompany(ctx, actor.CompanyID, id)
	if err != nil {
		return RegularizationResponse{}, err
	}
	if r.IsResolved() {
		return RegularizationResponse{}, regularizationerrors.ErrAlreadyResolved
	}

	now := time.Now().UTC()
	actorUUID := uuid.MustParse(actor.EmployeeID)
	r.ReviewedBy = &actorUUID
	r.ReviewedAt = &now
	if note != "" {
		r.ReviewNote = &note
	}
	if approve {
		r.Status = StatusApproved
	} else {
		r.Status = StatusRejected
	}

	if err := qtx.Update(ctx, r); err != nil {
		return RegularizationResponse{}, err
	}
	if err := s.auditor.Record(ctx, tx, audit.Entry{
		Action:     "regularization.processed",
		ActorID:    actor.EmployeeID,
		CompanyID:  actor.CompanyID,
		EntityType: "regularization_request",
		EntityID:   id,
		Detail:     map[string]any{"approved": approve, "status": r.Status},
	}); err != nil {
		return RegularizationResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return RegularizationResponse{}, err
	}

	s.logger.Info("regularization processed",
		zap.String("request_id", id),
		zap.Bool("approved", approve),
	)
	return mapToResponse(*r), nil
}

func parseOptionalTimestamp(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return nil, regularizationerrors.ErrInvalidTimestamp
	}
	utc := t.UTC()
	return &utc, nil
}

func managerIDOf(emp *employee.Employee) string {
	if emp.ManagerID == nil {
		return ""
	}
	return emp.ManagerID.String()
}

func mapToResponse(r RegularizationRequest) RegularizationResponse {
	resp := RegularizationResponse{
		ID:          r.ID.String(),
		EmployeeID:  r.EmployeeID.String(),
		Date:        r.AttendanceDate.Format("2006-01-02"),
		RequestType: r.RequestType,
		Status:      r.ProposedStatus,
		Reason:      r.Reason,
		State:       r.Status,
		ReviewNote:  r.ReviewNote,
	}
	if r.ProposedCheckIn != nil {
		v := r.ProposedCheckIn.Format(time.RFC3339)
		resp.CheckIn = &v
	}
	if r.ProposedCheckOut != nil {
		v := r.ProposedCheckOut.Format(time.RFC3339)
		resp.CheckOut = &v
	}
	if r.ReviewedBy != nil {
		v := r.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	return resp
}
