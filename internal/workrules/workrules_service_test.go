package workrules_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/Vishal6374/hr-harmony-sub000/internal/workrules"
	workruleserrors "github.com/Vishal6374/hr-harmony-sub000/internal/workrules/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRulesRepo struct {
	rows []workrules.WorkRules
}

func (f *fakeRulesRepo) WithTx(tx *sql.Tx) workrules.Repository { return f }

func (f *fakeRulesRepo) Create(ctx context.Context, w *workrules.WorkRules) error {
	f.rows = append(f.rows, *w)
	return nil
}

func (f *fakeRulesRepo) FindActiveByCompany(ctx context.Context, companyID string) (*workrules.WorkRules, error) {
	var found *workrules.WorkRules
	for i := range f.rows {
		row := f.rows[i]
		if row.CompanyID.String() != companyID {
			continue
		}
		if found == nil || row.Version > found.Version {
			found = &f.rows[i]
		}
	}
	if found == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return found, nil
}

func (f *fakeRulesRepo) FindAllActive(ctx context.Context) ([]workrules.WorkRules, error) {
	latest := map[string]workrules.WorkRules{}
	for _, row := range f.rows {
		if cur, ok := latest[row.CompanyID.String()]; !ok || row.Version > cur.Version {
			latest[row.CompanyID.String()] = row
		}
	}
	out := make([]workrules.WorkRules, 0, len(latest))
	for _, row := range latest {
		out = append(out, row)
	}
	return out, nil
}

type recordingSubscriber struct {
	companyIDs []string
	years      []int
}

func (r *recordingSubscriber) SyncYearLimits(ctx context.Context, companyID string, year int) error {
	r.companyIDs = append(r.companyIDs, companyID)
	r.years = append(r.years, year)
	return nil
}

func validUpdate() workrules.UpdateWorkRulesRequest {
	return workrules.UpdateWorkRulesRequest{
		StandardWorkHours: 8,
		HalfDayThreshold:  4,
		AllowSelfClockIn:  true,
		AutoHalfDayCutoff: "18:00",
		WorkDayStart:      "09:30",
		LateGraceMinutes:  10,
		PFRateBps:         1200,
		BasicPctBps:       5000,
		LeaveTypeLimits:   map[string]int{"ANNUAL": 18, "SICK": 10},
	}
}

func TestWorkRulesService_GetFallsBackToDefaults(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := workrules.NewService(db, &fakeRulesRepo{})

	rules := svc.Get(uuid.New().String())
	assert.Equal(t, 0, rules.Version)
	assert.Equal(t, float64(8), rules.StandardWorkHours)
	assert.Equal(t, int64(1200), rules.PFRateBps)
	assert.Equal(t, workrules.FallbackAnnualLeaveDays, rules.LeaveLimit("ANNUAL"))
}

func TestWorkRulesService_UpdateVersionsAndCaches(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	repo := &fakeRulesRepo{}
	svc := workrules.NewService(db, repo)
	companyID := uuid.New().String()
	actorID := uuid.New().String()

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Update(context.Background(), companyID, actorID, validUpdate())
	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Version)

	// the cache serves the new snapshot without touching the repo again
	rules := svc.Get(companyID)
	assert.Equal(t, 1, rules.Version)
	assert.Equal(t, 18, rules.LeaveLimit("ANNUAL"))
	assert.Equal(t, 10, rules.LeaveLimit("SICK"))
	assert.Equal(t, workrules.FallbackAnnualLeaveDays, rules.LeaveLimit("CASUAL"))

	mock.ExpectBegin()
	mock.ExpectCommit()
	req := validUpdate()
	req.LateGraceMinutes = 20
	resp, err = svc.Update(context.Background(), companyID, actorID, req)
	assert.NoError(t, err)
	assert.Equal(t, 2, resp.Version)
	assert.Len(t, repo.rows, 2)
}

func TestWorkRulesService_UpdateRejectsBadThreshold(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := workrules.NewService(db, &fakeRulesRepo{})

	req := validUpdate()
	req.HalfDayThreshold = 8 // must stay below the standard day
	_, err := svc.Update(context.Background(), uuid.New().String(), uuid.New().String(), req)
	assert.ErrorIs(t, err, workruleserrors.ErrThresholdAboveStandard)
}

func TestWorkRulesService_UpdateRejectsBadClockTime(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := workrules.NewService(db, &fakeRulesRepo{})

	req := validUpdate()
	req.WorkDayStart = "9 am"
	_, err := svc.Update(context.Background(), uuid.New().String(), uuid.New().String(), req)
	assert.ErrorIs(t, err, workruleserrors.ErrInvalidClockTime)
}

func TestWorkRulesService_UpdateRejectsBadTimezone(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	svc := workrules.NewService(db, &fakeRulesRepo{})

	req := validUpdate()
	req.Timezone = "Jakarta" // not an IANA zone name
	_, err := svc.Update(context.Background(), uuid.New().String(), uuid.New().String(), req)
	assert.ErrorIs(t, err, workruleserrors.ErrInvalidTimezone)
}

func TestWorkRulesService_UpdateCarriesTimezoneAndLegacyDays(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	svc := workrules.NewService(db, &fakeRulesRepo{})
	companyID := uuid.New().String()

	req := validUpdate()
	req.Timezone = "Asia/Jakarta"
	req.LeaveTypeLimits = nil
	req.LegacyAnnualLeaveDays = 20

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := svc.Update(context.Background(), companyID, uuid.New().String(), req)
	assert.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", resp.Timezone)
	assert.Equal(t, 20, resp.LegacyAnnualLeaveDays)

	// With no per-type limit, the legacy aggregate wins over the fallback.
	rules := svc.Get(companyID)
	assert.Equal(t, "Asia/Jakarta", rules.Location().String())
	assert.Equal(t, 20, rules.LeaveLimit("ANNUAL"))
	assert.Equal(t, 20, rules.LeaveLimit("CASUAL"))
}

func TestWorkRulesService_UpdateNotifiesSubscriber(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()

	sub := &recordingSubscriber{}
	svc := workrules.NewServiceWithSubscriber(db, &fakeRulesRepo{}, sub)
	companyID := uuid.New().String()

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err := svc.Update(context.Background(), companyID, uuid.New().String(), validUpdate())
	assert.NoError(t, err)

	assert.Equal(t, []string{companyID}, sub.companyIDs)
	assert.Len(t, sub.years, 1)
}

func TestWorkRulesService_InitLoadsSnapshots(t *testing.T) {
	db, _, _ := sqlmock.New()
	defer db.Close()

	companyID := uuid.New()
	repo := &fakeRulesRepo{rows: []workrules.WorkRules{
		{
			ID:                uuid.New(),
			CompanyID:         companyID,
			Version:           3,
			StandardWorkHours: 9,
			HalfDayThreshold:  4.5,
			AutoHalfDayCutoff: "19:00",
			WorkDayStart:      "10:00",
			PFRateBps:         1000,
			BasicPctBps:       4000,
		},
	}}

	svc := workrules.NewService(db, repo)
	assert.NoError(t, svc.Init(context.Background()))

	rules := svc.Get(companyID.String())
	assert.Equal(t, 3, rules.Version)
	assert.Equal(t, float64(9), rules.StandardWorkHours)
	assert.Equal(t, int64(4000), rules.BasicPctBps)
}
