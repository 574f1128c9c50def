package workrules

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	workruleserrors "github.com/Vishal6374/hr-harmony-sub000/internal/workrules/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// FallbackAnnualLeaveDays applies when neither a per-type limit nor the
// legacy aggregate limit is configured.
const FallbackAnnualLeaveDays = 12

// Rules is the immutable snapshot services read on every call.
type Rules struct {
	Version           int
	Timezone          string
	StandardWorkHours float64
	HalfDayThreshold  float64
	AllowSelfClockIn  bool
	AutoHalfDayCutoff string
	WorkDayStart      string
	LateGraceMinutes  int
	PFRateBps         int64
	BasicPctBps       int64
	TaxSlabs          []TaxSlab
	LeaveTypeLimits   map[string]int
	LegacyAnnualDays  int
}

// Defaults is the version-0 snapshot used before a company writes its first
// explicit configuration.
func Defaults() Rules {
	return Rules{
		Version:           0,
		Timezone:          "UTC",
		StandardWorkHours: 8,
		HalfDayThreshold:  4,
		AllowSelfClockIn:  true,
		AutoHalfDayCutoff: "18:00",
		WorkDayStart:      "09:00",
		LateGraceMinutes:  15,
		PFRateBps:         1200,
		BasicPctBps:       5000,
		TaxSlabs: []TaxSlab{
			{MinSalary: 0, MaxSalary: 5_000_000, RateBps: 0},
			{MinSalary: 5_000_000, MaxSalary: 10_000_000, RateBps: 500},
			{MinSalary: 10_000_000, MaxSalary: 0, RateBps: 1000},
		},
		LeaveTypeLimits: map[string]int{},
	}
}

// Location resolves the configured company timezone. Clock-time rules such
// as work_day_start and the half-day cutoff are read on this clock. An empty
// or unloadable name falls back to UTC.
func (r Rules) Location() *time.Location {
	if r.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LeaveLimit resolves the annual entitlement for a leave type:
// typed limit, then the legacy aggregate, then the hard fallback.
func (r Rules) LeaveLimit(leaveType string) int {
	if days, ok := r.LeaveTypeLimits[leaveType]; ok {
		return days
	}
	if r.LegacyAnnualDays > 0 {
		return r.LegacyAnnualDays
	}
	return FallbackAnnualLeaveDays
}

// LimitSubscriber is notified after the leave limits change so open-year
// balances can be re-synced. Implemented by the leave service.
type LimitSubscriber interface {
	SyncYearLimits(ctx context.Context, companyID string, year int) error
}

//go:generate mockgen -source=workrules_service.go -destination=mock/workrules_service_mock.go -package=mock
type Service interface {
	// Init loads every company's active rules into memory. It must be
	// called once at startup before Get is used.
	Init(ctx context.Context) error
	Get(companyID string) Rules
	GetResponse(ctx context.Context, companyID string) (WorkRulesResponse, error)
	Update(ctx context.Context, companyID, actorID string, req UpdateWorkRulesRequest) (WorkRulesResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	sub    LimitSubscriber
	logger *zap.Logger

	mu    sync.RWMutex
	cache map[string]Rules
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	return NewServiceWithSubscriber(db, repo, nil, logger...)
}

func NewServiceWithSubscriber(db *sql.DB, repo Repository, sub LimitSubscriber, logger ...*zap.Logger) Service {
	l := zap.L().Named("workrules.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("workrules.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		sub:    sub,
		logger: l,
		cache:  make(map[string]Rules),
	}
}

func (s *service) Init(ctx context.Context) error {
	rows, err := s.repo.FindAllActive(ctx)
	if err != nil {
		s.logger.Error("load work rules failed", zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range rows {
		s.cache[row.CompanyID.String()] = toRules(row)
	}
	s.logger.Info("work rules loaded", zap.Int("companies", len(rows)))
	return nil
}

// Get returns the active snapshot for a company, or the defaults when the
// company never configured anything.
func (s *service) Get(companyID string) Rules {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.cache[companyID]; ok {
		return r
	}
	return Defaults()
}

func (s *service) GetResponse(ctx context.Context, companyID string) (WorkRulesResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return WorkRulesResponse{}, workruleserrors.ErrInvalidCompanyID
	}
	return mapToResponse(companyID, s.Get(companyID)), nil
}

func (s *service) Update(ctx context.Context, companyID, actorID string, req UpdateWorkRulesRequest) (WorkRulesResponse, error) {
	s.logger.Debug("update work rules requested",
		zap.String("company_id", companyID),
		zap.String("actor_id", actorID),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return WorkRulesResponse{}, workruleserrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return WorkRulesResponse{}, workruleserrors.ErrInvalidCompanyID
	}

	if req.HalfDayThreshold >= req.StandardWorkHours {
		return WorkRulesResponse{}, workruleserrors.ErrThresholdAboveStandard
	}
	for _, v := range []string{req.AutoHalfDayCutoff, req.WorkDayStart} {
		if _, err := time.Parse("15:04", v); err != nil {
			return WorkRulesResponse{}, workruleserrors.ErrInvalidClockTime
		}
	}
	tz := req.Timezone
	if tz == "" {
		tz = "UTC"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return WorkRulesResponse{}, workruleserrors.ErrInvalidTimezone
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update work rules begin tx failed", zap.Error(err))
		return WorkRulesResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	version := 1
	current, err := qtx.FindActiveByCompany(ctx, companyID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return WorkRulesResponse{}, err
	}
	if err == nil {
		version = current.Version + 1
	}

	slabs := make([]TaxSlab, len(req.TaxSlabs))
	for i, sl := range req.TaxSlabs {
		slabs[i] = TaxSlab{MinSalary: sl.MinSalary, MaxSalary: sl.MaxSalary, RateBps: sl.RateBps}
	}

	row := &WorkRules{
		ID:                uuid.New(),
		CompanyID:         companyUUID,
		Version:           version,
		Timezone:          tz,
		StandardWorkHours: req.StandardWorkHours,
		HalfDayThreshold:  req.HalfDayThreshold,
		AllowSelfClockIn:  req.AllowSelfClockIn,
		AutoHalfDayCutoff: req.AutoHalfDayCutoff,
		WorkDayStart:      req.WorkDayStart,
		LateGraceMinutes:  req.LateGraceMinutes,
		PFRateBps:         req.PFRateBps,
		BasicPctBps:       req.BasicPctBps,
		TaxSlabs:              slabs,
		LeaveTypeLimits:       req.LeaveTypeLimits,
		LegacyAnnualLeaveDays: req.LegacyAnnualLeaveDays,
		CreatedBy:             actorUUID,
	}

	if err := qtx.Create(ctx, row); err != nil {
		s.logger.Error("update work rules persist failed", zap.Error(err))
		return WorkRulesResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("update work rules commit failed", zap.Error(err))
		return WorkRulesResponse{}, err
	}

	rules := toRules(*row)
	s.mu.Lock()
	s.cache[companyID] = rules
	s.mu.Unlock()

	if s.sub != nil {
		year := time.Now().UTC().Year()
		if err := s.sub.SyncYearLimits(ctx, companyID, year); err != nil {
			s.logger.Error("sync leave balances after limit change failed",
				zap.String("company_id", companyID),
				zap.Int("year", year),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("work rules updated",
		zap.String("company_id", companyID),
		zap.Int("version", version),
	)
	return mapToResponse(companyID, rules), nil
}

func toRules(w WorkRules) Rules {
	return Rules{
		Version:           w.Version,
		Timezone:          w.Timezone,
		StandardWorkHours: w.StandardWorkHours,
		HalfDayThreshold:  w.HalfDayThreshold,
		AllowSelfClockIn:  w.AllowSelfClockIn,
		AutoHalfDayCutoff: w.AutoHalfDayCutoff,
		WorkDayStart:      w.WorkDayStart,
		LateGraceMinutes:  w.LateGraceMinutes,
		PFRateBps:         w.PFRateBps,
		BasicPctBps:       w.BasicPctBps,
		TaxSlabs:          w.TaxSlabs,
		LeaveTypeLimits:   w.LeaveTypeLimits,
		LegacyAnnualDays:  w.LegacyAnnualLeaveDays,
	}
}

func mapToResponse(companyID string, r Rules) WorkRulesResponse {
	return WorkRulesResponse{
		CompanyID:         companyID,
		Version:           r.Version,
		Timezone:          r.Timezone,
		StandardWorkHours: r.StandardWorkHours,
		HalfDayThreshold:  r.HalfDayThreshold,
		AllowSelfClockIn:  r.AllowSelfClockIn,
		AutoHalfDayCutoff: r.AutoHalfDayCutoff,
		WorkDayStart:      r.WorkDayStart,
		LateGraceMinutes:  r.LateGraceMinutes,
		PFRateBps:         r.PFRateBps,
		BasicPctBps:       r.BasicPctBps,
		TaxSlabs:              r.TaxSlabs,
		LeaveTypeLimits:       r.LeaveTypeLimits,
		LegacyAnnualLeaveDays: r.LegacyAnnualDays,
	}
}
