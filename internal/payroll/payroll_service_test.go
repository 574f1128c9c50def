package payroll

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/Vishal6374/hr-harmony-sub000/internal/attendance"
	"github.com/Vishal6374/hr-harmony-sub000/internal/audit"
	"github.com/Vishal6374/hr-harmony-sub000/internal/authz"
	"github.com/Vishal6374/hr-harmony-sub000/internal/employee"
	"github.com/Vishal6374/hr-harmony-sub000/internal/events"
	"github.com/Vishal6374/hr-harmony-sub000/internal/messaging/kafka"
	payrollerrors "github.com/Vishal6374/hr-harmony-sub000/internal/payroll/errors"
	"github.com/Vishal6374/hr-harmony-sub000/internal/reimbursement"
	"github.com/Vishal6374/hr-harmony-sub000/internal/workrules"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRepo struct {
	batches map[string]*PayrollBatch
	slips   map[string]*SalarySlip
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		batches: make(map[string]*PayrollBatch),
		slips:   make(map[string]*SalarySlip),
	}
}

func (f *fakeRepo) WithTx(tx *sql.Tx) Repository { return f }

func (f *fakeRepo) CreateBatch(ctx context.Context, b *PayrollBatch) error {
	cp := *b
	f.batches[b.ID.String()] = &cp
	return nil
}

func (f *fakeRepo) UpdateBatch(ctx context.Context, b *PayrollBatch) error {
	cp := *b
	f.batches[b.ID.String()] = &cp
	return nil
}

func (f *fakeRepo) FindBatchByID(ctx context.Context, companyID, id string) (*PayrollBatch, error) {
	if b, ok := f.batches[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindActiveBatch(ctx context.Context, companyID string, month, year int) (*PayrollBatch, error) {
	for _, b := range f.batches {
		if b.Month == month && b.Year == year && b.Status != BatchStatusCancelled {
			cp := *b
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListBatches(ctx context.Context, companyID string, year int, status string) ([]PayrollBatch, error) {
	var rows []PayrollBatch
	for _, b := range f.batches {
		if (year == 0 || b.Year == year) && (status == "" || b.Status == status) {
			rows = append(rows, *b)
		}
	}
	return rows, nil
}

func (f *fakeRepo) CreateSlip(ctx context.Context, s *SalarySlip) error {
	for _, existing := range f.slips {
		if existing.EmployeeID == s.EmployeeID && existing.Month == s.Month && existing.Year == s.Year {
			return fmt.Errorf("duplicate slip for employee %s", s.EmployeeID)
		}
	}
	cp := *s
	f.slips[s.ID.String()] = &cp
	return nil
}

func (f *fakeRepo) UpdateSlip(ctx context.Context, s *SalarySlip) error {
	cp := *s
	f.slips[s.ID.String()] = &cp
	return nil
}

func (f *fakeRepo) FindSlipByID(ctx context.Context, companyID, id string) (*SalarySlip, error) {
	if s, ok := f.slips[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindSlipsByBatch(ctx context.Context, companyID, batchID string) ([]SalarySlip, error) {
	var rows []SalarySlip
	for _, s := range f.slips {
		if s.BatchID.String() == batchID {
			rows = append(rows, *s)
		}
	}
	return rows, nil
}

func (f *fakeRepo) FindSlipByEmployee(ctx context.Context, companyID, employeeID string, month, year int) (*SalarySlip, error) {
	for _, s := range f.slips {
		if s.EmployeeID.String() == employeeID && s.Month == month && s.Year == year {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) DeleteSlipsByBatchAndEmployees(ctx context.Context, companyID, batchID string, employeeIDs []string) error {
	byEmployee := make(map[string]bool, len(employeeIDs))
	for _, id := range employeeIDs {
		byEmployee[id] = true
	}
	for key, s := range f.slips {
		if s.BatchID.String() == batchID && byEmployee[s.EmployeeID.String()] {
			delete(f.slips, key)
		}
	}
	return nil
}

func (f *fakeRepo) DeleteSlipsByBatch(ctx context.Context, companyID, batchID string) error {
	for key, s := range f.slips {
		if s.BatchID.String() == batchID {
			delete(f.slips, key)
		}
	}
	return nil
}

func (f *fakeRepo) MarkSlipsPaid(ctx context.Context, companyID, batchID string) (int64, error) {
	var n int64
	for _, s := range f.slips {
		if s.BatchID.String() == batchID && s.Status != SlipStatusPaid {
			s.Status = SlipStatusPaid
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) SumNetByBatch(ctx context.Context, companyID, batchID string) (int64, error) {
	var total int64
	for _, s := range f.slips {
		if s.BatchID.String() == batchID {
			total += s.NetSalary
		}
	}
	return total, nil
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
	var rows []employee.Employee
	for _, e := range f.byID {
		if e.CompanyID.String() == companyID && e.IsActive {
			rows = append(rows, *e)
		}
	}
	return rows, nil
}

func (f *fakeEmployees) FindAllActive(ctx context.Context) ([]employee.Employee, error) {
	var rows []employee.Employee
	for _, e := range f.byID {
		if e.IsActive {
			rows = append(rows, *e)
		}
	}
	return rows, nil
}

func (f *fakeEmployees) FindByDeviceUserID(ctx context.Context, deviceUserID string) (*employee.Employee, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployees) FindByIDsAndCompany(ctx context.Context, companyID string, ids []string) ([]employee.Employee, error) {
	var rows []employee.Employee
	for _, id := range ids {
		if e, ok := f.byID[id]; ok && e.CompanyID.String() == companyID {
			rows = append(rows, *e)
		}
	}
	return rows, nil
}

type fakeAttendanceSource struct {
	records     map[string][]attendance.Attendance
	failFor     map[string]bool
	lockedMonth int
	lockedYear  int
	lockCalls   int
}

func monthKey(employeeID string, month, year int) string {
	return fmt.Sprintf("%s|%d|%d", employeeID, month, year)
}

func (f *fakeAttendanceSource) FindByEmployeeAndMonth(ctx context.Context, companyID, employeeID string, month, year int) ([]attendance.Attendance, error) {
	if f.failFor[employeeID] {
		return nil, fmt.Errorf("attendance unavailable for %s", employeeID)
	}
	return f.records[monthKey(employeeID, month, year)], nil
}

func (f *fakeAttendanceSource) LockMonth(ctx context.Context, companyID string, month, year int) (int64, error) {
	f.lockCalls++
	f.lockedMonth = month
	f.lockedYear = year
	return int64(len(f.records)), nil
}

type fakeReimbursements struct {
	unpaid     map[string]int64
	paidBatch  string
	paidEmployees []string
}

func (f *fakeReimbursements) WithTx(tx *sql.Tx) reimbursement.Repository { return f }

func (f *fakeReimbursements) SumApprovedUnpaid(ctx context.Context, companyID, employeeID string) (int64, error) {
	return f.unpaid[employeeID], nil
}

func (f *fakeReimbursements) MarkPaidByBatch(ctx context.Context, companyID, batchID string, employeeIDs []string) error {
	f.paidBatch = batchID
	f.paidEmployees = employeeIDs
	return nil
}

type fakeRules struct {
	rules workrules.Rules
}

func (f *fakeRules) Init(ctx context.Context) error       { return nil }
func (f *fakeRules) Get(companyID string) workrules.Rules { return f.rules }
func (f *fakeRules) GetResponse(ctx context.Context, companyID string) (workrules.WorkRulesResponse, error) {
	return workrules.WorkRulesResponse{}, nil
}
func (f *fakeRules) Update(ctx context.Context, companyID, actorID string, req workrules.UpdateWorkRulesRequest) (workrules.WorkRulesResponse, error) {
	return workrules.WorkRulesResponse{}, nil
}

type fakeOutbox struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

type noopAuditor struct{}

func (noopAuditor) Record(ctx context.Context, tx *sql.Tx, entry audit.Entry) error { return nil }

type testEnv struct {
	svc            Service
	repo           *fakeRepo
	employees      *fakeEmployees
	attendances    *fakeAttendanceSource
	reimbursements *fakeReimbursements
	outbox         *fakeOutbox
	companyID      uuid.UUID
	mock           sqlmock.Sqlmock
	close          func()
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
		attendances: &fakeAttendanceSource{
			records: map[string][]attendance.Attendance{},
			failFor: map[string]bool{},
		},
		reimbursements: &fakeReimbursements{unpaid: map[string]int64{}},
		outbox:         &fakeOutbox{},
		companyID:      uuid.New(),
		mock:           mock,
		close:          func() { db.Close() },
	}
	env.svc = NewService(db, env.repo, env.employees, env.attendances,
		env.reimbursements, &fakeRules{rules: workrules.Defaults()},
		authzService, env.outbox, noopAuditor{})
	return env
}

func (e *testEnv) addEmployee(salary int64) *employee.Employee {
	emp := &employee.Employee{
		ID:            uuid.New(),
		CompanyID:     e.companyID,
		Role:          authz.RoleEmployee,
		MonthlySalary: salary,
		IsActive:      true,
	}
	e.employees.byID[emp.ID.String()] = emp
	return emp
}

// setMonth loads an attendance month of the given day counts.
func (e *testEnv) setMonth(emp *employee.Employee, month, year, present, half, absent int) {
	var records []attendance.Attendance
	add := func(status string, n int) {
		for i := 0; i < n; i++ {
			records = append(records, attendance.Attendance{Status: status})
		}
	}
	add(attendance.StatusPresent, present)
	add(attendance.StatusHalfDay, half)
	add(attendance.StatusAbsent, absent)
	e.attendances.records[monthKey(emp.ID.String(), month, year)] = records
}

func hrActor(companyID uuid.UUID) authz.Actor {
	return authz.Actor{
		EmployeeID: uuid.New().String(),
		CompanyID:  companyID.String(),
		Role:       authz.RoleHR,
	}
}

func TestComputeSlip_LossOfPayAndDeductions(t *testing.T) {
	// Salary 30,000.00 over a 30-day month: daily 1,000.00.
	// Two absences and one half day cost 2,500.00; PF is 12% of the
	// 50% basic; the salary sits in the zero-rate tax slab.
	amounts := computeSlip(slipInput{
		MonthlySalary: 3_000_000,
		DaysInMonth:   30,
		AbsentDays:    2,
		HalfDays:      1,
	}, workrules.Defaults())

	assert.Equal(t, int64(250_000), amounts.LossOfPay)
	assert.Equal(t, int64(1_500_000), amounts.Basic)
	assert.Equal(t, int64(180_000), amounts.PF)
	assert.Equal(t, int64(0), amounts.Tax)
	assert.Equal(t, int64(3_000_000), amounts.Gross)
	assert.Equal(t, int64(2_570_000), amounts.Net)
}

func TestComputeSlip_TaxSlabs(t *testing.T) {
	rules := workrules.Defaults()

	mid := computeSlip(slipInput{MonthlySalary: 6_000_000, DaysInMonth: 30}, rules)
	assert.Equal(t, int64(300_000), mid.Tax)

	top := computeSlip(slipInput{MonthlySalary: 20_000_000, DaysInMonth: 30}, rules)
	assert.Equal(t, int64(2_000_000), top.Tax)
}

func TestComputeSlip_ReimbursementsIntoGross(t *testing.T) {
	amounts := computeSlip(slipInput{
		MonthlySalary:  3_000_000,
		DaysInMonth:    30,
		Reimbursements: 45_000,
	}, workrules.Defaults())

	assert.Equal(t, int64(3_045_000), amounts.Gross)
	assert.Equal(t, amounts.Gross-amounts.TotalDeductions, amounts.Net)
}

func TestDivRound(t *testing.T) {
	assert.Equal(t, int64(33333), divRound(100_000, 3))
	assert.Equal(t, int64(50), divRound(100, 2))
	assert.Equal(t, int64(1), divRound(1, 2))
	assert.Equal(t, int64(0), divRound(100, 0))
}

func TestService_Generate_FullPopulation(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	one := env.addEmployee(3_000_000)
	two := env.addEmployee(3_000_000)
	env.setMonth(one, 9, 2025, 19, 1, 2)
	env.setMonth(two, 9, 2025, 22, 0, 0)
	env.reimbursements.unpaid[two.ID.String()] = 45_000

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	res, err := env.svc.Generate(context.Background(), hrActor(env.companyID), GeneratePayrollRequest{
		Month: 9, Year: 2025,
	})
	assert.NoError(t, err)
	assert.Equal(t, BatchStatusProcessed, res.Batch.Status)
	assert.Equal(t, 2, res.Batch.EmployeeCount)
	assert.Equal(t, 2, res.Batch.ProcessedCount)
	assert.Empty(t, res.Failed)

	// Batch total is the exact sum of the slip nets.
	var sum int64
	for _, slip := range res.Slips {
		sum += slip.NetSalary
	}
	assert.Equal(t, sum, res.Batch.TotalAmount)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestService_Generate_DuplicateMonthConflict(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	emp := env.addEmployee(3_000_000)
	env.setMonth(emp, 9, 2025, 22, 0, 0)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	_, err := env.svc.Generate(context.Background(), hrActor(env.companyID), GeneratePayrollRequest{Month: 9, Year: 2025})
	assert.NoError(t, err)

	env.mock.ExpectBegin()
	env.mock.ExpectRollback()
	_, err = env.svc.Generate(context.Background(), hrActor(env.companyID), GeneratePayrollRequest{Month: 9, Year: 2025})
	assert.ErrorIs(t, err, payrollerrors.ErrBatchExists)
}

func TestService_Generate_SelectiveIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	emp := env.addEmployee(3_000_000)
	env.setMonth(emp, 9, 2025, 20, 0, 2)

	req := GeneratePayrollRequest{Month: 9, Year: 2025, EmployeeIDs: []string{emp.ID.String()}}

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	first, err := env.svc.Generate(context.Background(), hrActor(env.companyID), req)
	assert.NoError(t, err)

	// Attendance was corrected between the runs; the re-run replaces the
	// slip instead of conflicting.
	env.setMonth(emp, 9, 2025, 21, 0, 1)
	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	second, err := env.svc.Generate(context.Background(), hrActor(env.companyID), req)
	assert.NoError(t, err)

	assert.Equal(t, first.Batch.ID, second.Batch.ID)
	assert.Len(t, env.repo.slips, 1)
	assert.Greater(t, second.Batch.TotalAmount, first.Batch.TotalAmount)
}

func TestService_Generate_SelectiveKeepsHeadcount(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	one := env.addEmployee(3_000_000)
	two := env.addEmployee(3_000_000)
	env.setMonth(one, 9, 2025, 22, 0, 0)
	env.setMonth(two, 9, 2025, 22, 0, 0)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	full, err := env.svc.Generate(context.Background(), hrActor(env.companyID), GeneratePayrollRequest{Month: 9, Year: 2025})
	assert.NoError(t, err)
	assert.Equal(t, 2, full.Batch.EmployeeCount)

	// Re-running one employee must not shrink the batch headcount to the
	// subset size.
	env.setMonth(one, 9, 2025, 21, 0, 1)
	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	rerun, err := env.svc.Generate(context.Background(), hrActor(env.companyID), GeneratePayrollRequest{
		Month: 9, Year: 2025, EmployeeIDs: []string{one.ID.String()},
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, rerun.Batch.EmployeeCount)
	assert.Equal(t, 2, rerun.Batch.ProcessedCount)
}

func TestService_Generate_PartialFailureVisible(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	good := env.addEmployee(3_000_000)
	bad := env.addEmployee(3_000_000)
	env.setMonth(good, 9, 2025, 22, 0, 0)
	env.attendances.failFor[bad.ID.String()] = true

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	res, err := env.svc.Generate(context.Background(), hrActor(env.companyID), GeneratePayrollRequest{Month: 9, Year: 2025})
	assert.NoError(t, err)
	assert.Equal(t, 2, res.Batch.EmployeeCount)
	assert.Equal(t, 1, res.Batch.ProcessedCount)
	assert.Equal(t, []string{bad.ID.String()}, res.Failed)
	assert.Equal(t, BatchStatusProcessed, res.Batch.Status)
}

func TestService_MarkPaid_Terminal(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	emp := env.addEmployee(3_000_000)
	env.setMonth(emp, 9, 2025, 22, 0, 0)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	res, err := env.svc.Generate(context.Background(), hrActor(env.companyID), GeneratePayrollRequest{Month: 9, Year: 2025})
	assert.NoError(t, err)

	admin := authz.Actor{EmployeeID: uuid.New().String(), CompanyID: env.companyID.String(), Role: authz.RoleAdmin}
	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	paid, err := env.svc.MarkPaid(context.Background(), admin, res.Batch.ID)
	assert.NoError(t, err)
	assert.Equal(t, BatchStatusPaid, paid.Status)

	for _, slip := range env.repo.slips {
		assert.Equal(t, SlipStatusPaid, slip.Status)
	}
	assert.Equal(t, res.Batch.ID, env.reimbursements.paidBatch)
	assert.Equal(t, 1, env.attendances.lockCalls)
	assert.Equal(t, 9, env.attendances.lockedMonth)
	assert.Equal(t, 2025, env.attendances.lockedYear)

	assert.Len(t, env.outbox.events, 1)
	assert.Equal(t, events.PayrollBatchPaidTopic, env.outbox.events[0].Topic)

	env.mock.ExpectBegin()
	env.mock.ExpectRollback()
	_, err = env.svc.MarkPaid(context.Background(), admin, res.Batch.ID)
	assert.ErrorIs(t, err, payrollerrors.ErrBatchPaid)
}

func TestService_MarkPaid_RequiresProcessed(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	batch := &PayrollBatch{
		ID:        uuid.New(),
		CompanyID: env.companyID,
		Month:     9,
		Year:      2025,
		Status:    BatchStatusDraft,
	}
	assert.NoError(t, env.repo.CreateBatch(context.Background(), batch))

	admin := authz.Actor{EmployeeID: uuid.New().String(), CompanyID: env.companyID.String(), Role: authz.RoleAdmin}
	env.mock.ExpectBegin()
	env.mock.ExpectRollback()
	_, err := env.svc.MarkPaid(context.Background(), admin, batch.ID.String())
	assert.ErrorIs(t, err, payrollerrors.ErrBatchNotProcessed)
}

func TestService_UpdateSlip_RecomputesAndResums(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	emp := env.addEmployee(3_000_000)
	env.setMonth(emp, 9, 2025, 22, 0, 0)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	res, err := env.svc.Generate(context.Background(), hrActor(env.companyID), GeneratePayrollRequest{Month: 9, Year: 2025})
	assert.NoError(t, err)
	slipID := res.Slips[0].ID

	other := int64(50_000)
	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	updated, err := env.svc.UpdateSlip(context.Background(), hrActor(env.companyID), slipID, UpdateSlipRequest{
		OtherDeductions: &other,
	})
	assert.NoError(t, err)
	assert.Equal(t, other, updated.OtherDeductions)
	assert.Equal(t, res.Slips[0].NetSalary-other, updated.NetSalary)

	batch := env.repo.batches[res.Batch.ID]
	assert.Equal(t, updated.NetSalary, batch.TotalAmount)
}

func TestService_UpdateSlip_PaidIsImmutable(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	emp := env.addEmployee(3_000_000)
	env.setMonth(emp, 9, 2025, 22, 0, 0)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	res, err := env.svc.Generate(context.Background(), hrActor(env.companyID), GeneratePayrollRequest{Month: 9, Year: 2025})
	assert.NoError(t, err)

	admin := authz.Actor{EmployeeID: uuid.New().String(), CompanyID: env.companyID.String(), Role: authz.RoleAdmin}
	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	_, err = env.svc.MarkPaid(context.Background(), admin, res.Batch.ID)
	assert.NoError(t, err)

	other := int64(1)
	env.mock.ExpectBegin()
	env.mock.ExpectRollback()
	_, err = env.svc.UpdateSlip(context.Background(), hrActor(env.companyID), res.Slips[0].ID, UpdateSlipRequest{
		OtherDeductions: &other,
	})
	assert.ErrorIs(t, err, payrollerrors.ErrSlipPaid)
}

func TestService_Preview_DoesNotPersist(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	emp := env.addEmployee(3_000_000)
	env.setMonth(emp, 9, 2025, 19, 1, 2)

	res, err := env.svc.Preview(context.Background(), hrActor(env.companyID), PreviewPayrollRequest{
		Month: 9, Year: 2025, EmployeeIDs: []string{emp.ID.String()},
	})
	assert.NoError(t, err)
	assert.Len(t, res.Slips, 1)
	assert.Equal(t, int64(2_570_000), res.Slips[0].NetSalary)
	assert.Equal(t, res.Slips[0].NetSalary, res.TotalAmount)

	assert.Empty(t, env.repo.batches)
	assert.Empty(t, env.repo.slips)
}

func TestService_CancelBatch_FreesMonth(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()

	emp := env.addEmployee(3_000_000)
	env.setMonth(emp, 9, 2025, 22, 0, 0)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	res, err := env.svc.Generate(context.Background(), hrActor(env.companyID), GeneratePayrollRequest{Month: 9, Year: 2025})
	assert.NoError(t, err)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	cancelled, err := env.svc.CancelBatch(context.Background(), hrActor(env.companyID), res.Batch.ID)
	assert.NoError(t, err)
	assert.Equal(t, BatchStatusCancelled, cancelled.Status)
	assert.Empty(t, env.repo.slips)

	env.mock.ExpectBegin()
	env.mock.ExpectCommit()
	_, err = env.svc.Generate(context.Background(), hrActor(env.companyID), GeneratePayrollRequest{Month: 9, Year: 2025})
	assert.NoError(t, err)
}
