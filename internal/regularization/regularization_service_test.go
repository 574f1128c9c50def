package regularization

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/Vishal6374/hr-harmony-sub000/internal/attendance"
	attendanceerrors "github.com/Vishal6374/hr-harmony-sub000/internal/attendance/errors"
	"github.com/Vishal6374/hr-harmony-sub000/internal/audit"
	"github.com/Vishal6374/hr-harmony-sub000/internal/authz"
	"github.com/Vishal6374/hr-harmony-sub000/internal/employee"
	regularizationerrors "github.com/Vishal6374/hr-harmony-sub000/internal/regularization/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	store map[string]*RegularizationRequest
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{store: make(map[string]*RegularizationRequest)}
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, req *RegularizationRequest) error {
	cp := *req
	f.store[req.ID.String()] = &cp
	return nil
}

func (f *fakeRepo) FindByIDAndCompany(ctx context.Context, companyID, id string) (*RegularizationRequest, error) {
	if r, ok := f.store[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindAllByCompany(ctx context.Context, companyID, status string) ([]RegularizationRequest, error) {
	var rows []RegularizationRequest
	for _, r := range f.store {
		if status == "" || r.Status == status {
			rows = append(rows, *r)
		}
	}
	return rows, nil
}

func (f *fakeRepo) FindByEmployee(ctx context.Context, companyID, employeeID, status string) ([]RegularizationRequest, error) {
	var rows []RegularizationRequest
	for _, r := range f.store {
		if r.EmployeeID.String() == employeeID && (status == "" || r.Status == status) {
			rows = append(rows, *r)
		}
	}
	return rows, nil
}

func (f *fakeRepo) Update(ctx context.Context, req *RegularizationRequest) error {
	cp := *req
	f.store[req.ID.String()] = &cp
	return nil
}

func (f *fakeRepo) HasPendingForDate(ctx context.Context, companyID, employeeID string, date time.Time) (bool, error) {
	for _, r := range f.store {
		if r.EmployeeID.String() == employeeID &&
			r.AttendanceDate.Format("2006-01-02") == date.Format("2006-01-02") &&
			r.Status == StatusPending {
			return true, nil
		}
	}
	return false, nil
}

type fakeEmployees struct {
	byID map[string]*employee.Employee
}

func (f *fakeEmployees) FindByIDAndCompany(ctx context.Context, companyID, id string) (*employee.Employee, error) {
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployees) FindActiveByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployees) FindAllActive(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployees) FindByDeviceUserID(ctx context.Context, deviceUserID string) (*employee.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployees) FindByIDsAndCompany(ctx context.Context, companyID string, ids []string) ([]employee.Employee, error) {
	return nil, nil
}

type fakeCorrector struct {
	patches []attendance.CorrectionPatch
	err     error
}

func (f *fakeCorrector) ApplyCorrection(ctx context.Context, companyID, employeeID string, date time.Time, patch attendance.CorrectionPatch) (attendance.AttendanceResponse, error) {
	if f.err != nil {
		return attendance.AttendanceResponse{}, f.err
	}
	f.patches = append(f.patches, patch)
	return attendance.AttendanceResponse{}, nil
}

type noopAuditor struct{}

func (noopAuditor) Record(ctx context.Context, tx *sql.Tx, entry audit.Entry) error { return nil }

type testEnv struct {
	svc       Service
	repo      *fakeRepo
	employees *fakeEmployees
	corrector *fakeCorrector
	mock      sqlmock.Sqlmock
	close     func()
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)

	authzService, err := authz.NewService()
	assert.NoError(t, err)

	env := &testEnv{
		repo:      newFakeRepo(),
		employees: &fakeEmployees{byID: map[string]*employee.Employee{}},
		corrector: &fakeCorrector{},
		mock:      mock,
		close:     func() { db.Close() },
	}
	env.svc = NewService(db, env.repo, env.employees, authzService, env.corrector, noopAuditor{})
	return env
}

func (e *testEnv) addEmployee(companyID uuid.UUID, role string) *employee.Employee {
	emp := &employee.Employee{
		ID:        uuid.New(),
		CompanyID: companyID,
		Role:      role,
		IsActive:  true,
	}
	e.employees.byID[emp.ID.String()] = emp
	return emp
}

func actorFor(emp *employee.Employee) authz.Actor {
	return authz.Actor{
		EmployeeID: emp.ID.String(),
		CompanyID:  emp.CompanyID.String(),
		Role:       emp.Role,
	}
}

func strPtr(s string) *string { return &s }

func TestService_Request_CreatesPending(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	companyID := uuid.New()
	emp := env.addEmployee(companyID, authz.RoleEmployee)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	resp, err := env.svc.Request(context.Background(), actorFor(emp), CreateRegularizationRequest{
		EmployeeID:  emp.ID.String(),
		Date:        "2025-03-03",
		RequestType: TypeCheckOut,
		CheckOut:    strPtr("2025-03-03T18:30:00Z"),
		Reason:      "forgot to punch out",
	})
	assert.NoError(t, err)
	assert.Equal(t, StatusPending, resp.State)
	assert.Equal(t, TypeCheckOut, resp.RequestType)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestService_Request_DuplicatePending(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	companyID := uuid.New()
	emp := env.addEmployee(companyID, authz.RoleEmployee)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	_, err := env.svc.Request(context.Background(), actorFor(emp), CreateRegularizationRequest{
		EmployeeID:  emp.ID.String(),
		Date:        "2025-03-03",
		RequestType: TypeCheckOut,
		CheckOut:    strPtr("2025-03-03T18:30:00Z"),
		Reason:      "forgot to punch out",
	})
	assert.NoError(t, err)

	env.mock.ExpectBegin()
	env.mock.ExpectRollback()
	_, err = env.svc.Request(context.Background(), actorFor(emp), CreateRegularizationRequest{
		EmployeeID:  emp.ID.String(),
		Date:        "2025-03-03",
		RequestType: TypeCheckIn,
		CheckIn:     strPtr("2025-03-03T09:00:00Z"),
		Reason:      "device missed me",
	})
	assert.ErrorIs(t, err, regularizationerrors.ErrDuplicatePending)
}

func TestService_Request_MissingProposedValue(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	companyID := uuid.New()
	emp := env.addEmployee(companyID, authz.RoleEmployee)

	_, err := env.svc.Request(context.Background(), actorFor(emp), CreateRegularizationRequest{
		EmployeeID:  emp.ID.String(),
		Date:        "2025-03-03",
		RequestType: TypeBoth,
		CheckIn:     strPtr("2025-03-03T09:00:00Z"),
		Reason:      "half the punches missing",
	})
	assert.ErrorIs(t, err, regularizationerrors.ErrMissingProposedValue)
}

func TestService_Request_CannotFileForOthers(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	companyID := uuid.New()
	emp := env.addEmployee(companyID, authz.RoleEmployee)
	other := env.addEmployee(companyID, authz.RoleEmployee)

	_, err := env.svc.Request(context.Background(), actorFor(emp), CreateRegularizationRequest{
		EmployeeID:  other.ID.String(),
		Date:        "2025-03-03",
		RequestType: TypeStatusChange,
		Status:      strPtr(attendance.StatusPresent),
		Reason:      "was there",
	})
	assert.ErrorIs(t, err, regularizationerrors.ErrForbidden)
}

func fileRequest(t *testing.T, env *testEnv, emp *employee.Employee, requestType string) RegularizationResponse {
	t.Helper()
	req := CreateRegularizationRequest{
		EmployeeID:  emp.ID.String(),
		Date:        "2025-03-03",
		RequestType: requestType,
		Reason:      "record is wrong",
	}
	switch requestType {
	case TypeCheckIn:
		req.CheckIn = strPtr("2025-03-03T09:00:00Z")
	case TypeCheckOut:
		req.CheckOut = strPtr("2025-03-03T18:30:00Z")
	case TypeBoth:
		req.CheckIn = strPtr("2025-03-03T09:00:00Z")
		req.CheckOut = strPtr("2025-03-03T18:30:00Z")
	case TypeStatusChange:
		req.Status = strPtr(attendance.StatusHalfDay)
	}
	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	resp, err := env.svc.Request(context.Background(), actorFor(emp), req)
	assert.NoError(t, err)
	return resp
}

func TestService_Process_ApproveAppliesOnlyTypedFields(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	companyID := uuid.New()
	hr := env.addEmployee(companyID, authz.RoleHR)
	emp := env.addEmployee(companyID, authz.RoleEmployee)

	resp := fileRequest(t, env, emp, TypeCheckOut)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	processed, err := env.svc.Process(context.Background(), actorFor(hr), resp.ID, true, "looks right")
	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, processed.State)

	assert.Len(t, env.corrector.patches, 1)
	patch := env.corrector.patches[0]
	assert.Nil(t, patch.CheckIn)
	assert.Nil(t, patch.Status)
	assert.NotNil(t, patch.CheckOut)
	assert.Equal(t, "2025-03-03T18:30:00Z", patch.CheckOut.Format(time.RFC3339))
	assert.Equal(t, hr.ID.String(), patch.EditorID)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestService_Process_RejectTouchesNothing(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	companyID := uuid.New()
	hr := env.addEmployee(companyID, authz.RoleHR)
	emp := env.addEmployee(companyID, authz.RoleEmployee)

	resp := fileRequest(t, env, emp, TypeStatusChange)

	_, err := env.svc.Process(context.Background(), actorFor(hr), resp.ID, false, "")
	assert.ErrorIs(t, err, regularizationerrors.ErrNoteRequired)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	processed, err := env.svc.Process(context.Background(), actorFor(hr), resp.ID, false, "camera says otherwise")
	assert.NoError(t, err)
	assert.Equal(t, StatusRejected, processed.State)
	assert.Empty(t, env.corrector.patches)
}

func TestService_Process_AlreadyResolved(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	companyID := uuid.New()
	hr := env.addEmployee(companyID, authz.RoleHR)
	emp := env.addEmployee(companyID, authz.RoleEmployee)

	resp := fileRequest(t, env, emp, TypeCheckIn)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	_, err := env.svc.Process(context.Background(), actorFor(hr), resp.ID, true, "")
	assert.NoError(t, err)

	_, err = env.svc.Process(context.Background(), actorFor(hr), resp.ID, true, "")
	assert.ErrorIs(t, err, regularizationerrors.ErrAlreadyResolved)
}

func TestService_Process_LockedRecordStaysPending(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	companyID := uuid.New()
	hr := env.addEmployee(companyID, authz.RoleHR)
	emp := env.addEmployee(companyID, authz.RoleEmployee)

	resp := fileRequest(t, env, emp, TypeCheckOut)
	env.corrector.err = attendanceerrors.ErrRecordLocked

	_, err := env.svc.Process(context.Background(), actorFor(hr), resp.ID, true, "")
	assert.ErrorIs(t, err, attendanceerrors.ErrRecordLocked)

	// The request survives for a retry after the month unlocks.
	stored := env.repo.store[resp.ID]
	assert.Equal(t, StatusPending, stored.Status)
}

func TestService_Process_SelfReviewBlocked(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	companyID := uuid.New()
	hr := env.addEmployee(companyID, authz.RoleHR)

	resp := fileRequest(t, env, hr, TypeCheckOut)

	_, err := env.svc.Process(context.Background(), actorFor(hr), resp.ID, true, "")
	assert.ErrorIs(t, err, regularizationerrors.ErrSelfReview)
}

func TestService_List_EmployeeSeesOnlyOwn(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	companyID := uuid.New()
	hr := env.addEmployee(companyID, authz.RoleHR)
	emp := env.addEmployee(companyID, authz.RoleEmployee)
	other := env.addEmployee(companyID, authz.RoleEmployee)

	fileRequest(t, env, emp, TypeCheckIn)
	fileRequest(t, env, other, TypeCheckOut)

	own, err := env.svc.List(context.Background(), actorFor(emp), ListRegularizationQuery{})
	assert.NoError(t, err)
	assert.Len(t, own, 1)

	_, err = env.svc.List(context.Background(), actorFor(emp), ListRegularizationQuery{EmployeeID: other.ID.String()})
	assert.ErrorIs(t, err, regularizationerrors.ErrForbidden)

	all, err := env.svc.List(context.Background(), actorFor(hr), ListRegularizationQuery{})
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}
