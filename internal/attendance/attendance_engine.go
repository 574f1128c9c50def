package attendance

import (
	"context"
	"errors"
	"time"

	attendanceerrors "github.com/Vishal6374/hr-harmony-sub000/internal/attendance/errors"
	"github.com/Vishal6374/hr-harmony-sub000/internal/punch"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResolvePunches turns the day's pending raw punches into attendance
// records: earliest IN becomes the check-in, latest OUT the check-out.
// Punches whose device user maps to no active employee are marked FAILED
// and left for the operator; everything consumed is marked PROCESSED so
// reruns are no-ops.
func (s *service) ResolvePunches(ctx context.Context, date time.Time) (ResolveResult, error) {
	result := ResolveResult{Date: date.Format("2006-01-02")}

	pending, err := s.punches.ListPendingByDate(ctx, date)
	if err != nil {
		s.logger.Error("list pending punches failed", zap.Error(err))
		return result, err
	}
	if len(pending) == 0 {
		return result, nil
	}

	groups := groupByDeviceUser(pending)
	for deviceUserID, rows := range groups {
		ids := punchIDs(rows)

		emp, err := s.employees.FindByDeviceUserID(ctx, deviceUserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn("punches for unknown device user",
					zap.String("device_user_id", deviceUserID),
					zap.Int("count", len(rows)),
				)
				if err := s.punches.UpdateStatus(ctx, ids, punch.StatusFailed); err != nil {
					return result, err
				}
				result.Failed++
				continue
			}
			return result, err
		}

		if err := s.resolveEmployeeDay(ctx, emp.CompanyID, emp.ID, date, rows); err != nil {
			s.logger.Error("resolve punches for employee failed",
				zap.String("employee_id", emp.ID.String()),
				zap.Error(err),
			)
			if err := s.punches.UpdateStatus(ctx, ids, punch.StatusFailed); err != nil {
				return result, err
			}
			result.Failed++
			continue
		}
		if err := s.punches.UpdateStatus(ctx, ids, punch.StatusProcessed); err != nil {
			return result, err
		}
		result.Resolved++
	}

	s.logger.Info("punches resolved",
		zap.String("date", result.Date),
		zap.Int("resolved", result.Resolved),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *service) resolveEmployeeDay(ctx context.Context, companyID, employeeID uuid.UUID, date time.Time, rows []punch.RawPunch) error {
	firstIn, lastOut := bracketPunches(rows)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	row, err := qtx.FindByEmployeeAndDate(ctx, companyID.String(), employeeID.String(), date)
	exists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if exists {
		if row.IsLocked {
			return attendanceerrors.ErrRecordLocked
		}
		// A leave or holiday day stays as written; presence punches on it
		// are a dispute for regularization, not the engine.
		if row.Status == StatusOnLeave || row.Status == StatusHoliday {
			s.logger.Warn("punches on a leave or holiday day ignored",
				zap.String("employee_id", employeeID.String()),
				zap.String("date", date.Format("2006-01-02")),
			)
			return tx.Commit()
		}
	} else {
		row = &Attendance{
			ID:             uuid.New(),
			CompanyID:      companyID,
			EmployeeID:     employeeID,
			AttendanceDate: date,
			Source:         SourceBiometric,
		}
	}

	if firstIn != nil && (row.CheckIn == nil || firstIn.Before(*row.CheckIn)) {
		row.CheckIn = firstIn
	}
	if lastOut != nil && (row.CheckOut == nil || lastOut.After(*row.CheckOut)) {
		row.CheckOut = lastOut
	}
	if row.Source != SourceAdjusted {
		row.Source = SourceBiometric
	}

	applyDerivation(row, s.rules.Get(companyID.String()), nil)

	if exists {
		err = qtx.Update(ctx, row)
	} else {
		err = qtx.Create(ctx, row)
	}
	if err != nil {
		return err
	}
	return tx.Commit()
}

// bracketPunches picks the day's check-in and check-out candidates. AUTO
// punches count for both ends; a single punch yields only a check-in.
func bracketPunches(rows []punch.RawPunch) (firstIn, lastOut *time.Time) {
	for i := range rows {
		p := rows[i]
		if p.Direction == punch.DirectionIn || p.Direction == punch.DirectionAuto {
			if firstIn == nil || p.PunchedAt.Before(*firstIn) {
				t := p.PunchedAt
				firstIn = &t
			}
		}
		if p.Direction == punch.DirectionOut || p.Direction == punch.DirectionAuto {
			if lastOut == nil || p.PunchedAt.After(*lastOut) {
				t := p.PunchedAt
				lastOut = &t
			}
		}
	}
	if firstIn != nil && lastOut != nil && lastOut.Equal(*firstIn) {
		lastOut = nil
	}
	return firstIn, lastOut
}

func groupByDeviceUser(rows []punch.RawPunch) map[string][]punch.RawPunch {
	groups := make(map[string][]punch.RawPunch)
	for _, p := range rows {
		groups[p.DeviceUserID] = append(groups[p.DeviceUserID], p)
	}
	return groups
}

func punchIDs(rows []punch.RawPunch) []string {
	ids := make([]string, len(rows))
	for i, p := range rows {
		ids[i] = p.ID.String()
	}
	return ids
}

// CorrectMissingCheckouts demotes stale PRESENT records with no check-out
// to HALF_DAY. Past dates are corrected unconditionally; today only once
// the configured cutoff clock time has passed. The pass is idempotent: a
// corrected record is no longer PRESENT and never matches again.
func (s *service) CorrectMissingCheckouts(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	stale, err := s.repo.FindStaleCheckouts(ctx, today)
	if err != nil {
		s.logger.Error("find stale checkouts failed", zap.Error(err))
		return 0, err
	}

	corrected := 0
	for i := range stale {
		row := stale[i]
		if sameDay(row.AttendanceDate, today) {
			rules := s.rules.Get(row.CompanyID.String())
			cutoff, err := time.Parse("15:04", rules.AutoHalfDayCutoff)
			if err != nil {
				continue
			}
			// The cutoff is a wall-clock time in the company timezone.
			local := now.In(rules.Location())
			cutoffAt := time.Date(local.Year(), local.Month(), local.Day(),
				cutoff.Hour(), cutoff.Minute(), 0, 0, rules.Location())
			if local.Before(cutoffAt) {
				continue
			}
		}

		row.Status = StatusHalfDay
		appendNote(&row, "auto half-day: no check-out recorded")
		if err := s.repo.Update(ctx, &row); err != nil {
			s.logger.Error("half-day correction persist failed",
				zap.String("record_id", row.ID.String()),
				zap.Error(err),
			)
			continue
		}
		corrected++
	}

	if corrected > 0 {
		s.logger.Info("missing checkouts corrected", zap.Int("count", corrected))
	}
	return corrected, nil
}

// SweepAbsences files the day for every active employee who left no trace:
// ON_LEAVE when an approved leave covers the day, ABSENT otherwise.
// Weekends and holidays are skipped, existing records are never touched,
// and a lost insert race counts as skipped, so reruns are safe.
func (s *service) SweepAbsences(ctx context.Context, date time.Time) (SweepResult, error) {
	result := SweepResult{Date: date.Format("2006-01-02")}

	if isWeekend(date) {
		s.logger.Debug("absence sweep skipped, weekend", zap.String("date", result.Date))
		return result, nil
	}

	employees, err := s.employees.FindAllActive(ctx)
	if err != nil {
		s.logger.Error("list active employees failed", zap.Error(err))
		return result, err
	}

	holidayByCompany := make(map[string]bool)
	existingByCompany := make(map[string]map[string]bool)

	for i := range employees {
		emp := employees[i]
		companyID := emp.CompanyID.String()

		isHol, ok := holidayByCompany[companyID]
		if !ok {
			isHol, err = s.holidays.IsHoliday(ctx, companyID, date)
			if err != nil {
				return result, err
			}
			holidayByCompany[companyID] = isHol
		}
		if isHol {
			result.Skipped++
			continue
		}

		seen, ok := existingByCompany[companyID]
		if !ok {
			rows, err := s.repo.FindByCompanyAndDate(ctx, companyID, date)
			if err != nil {
				return result, err
			}
			seen = make(map[string]bool, len(rows))
			for _, r := range rows {
				seen[r.EmployeeID.String()] = true
			}
			existingByCompany[companyID] = seen
		}
		if seen[emp.ID.String()] {
			result.Skipped++
			continue
		}

		onLeave, err := s.leaves.HasApprovedLeave(ctx, companyID, emp.ID.String(), date)
		if err != nil {
			return result, err
		}

		status := StatusAbsent
		if onLeave {
			status = StatusOnLeave
		}
		row := &Attendance{
			ID:             uuid.New(),
			CompanyID:      emp.CompanyID,
			EmployeeID:     emp.ID,
			AttendanceDate: date,
			Status:         status,
			Source:         SourceManual,
		}
		if err := s.repo.Create(ctx, row); err != nil {
			if isUniqueViolation(err) {
				result.Skipped++
				continue
			}
			s.logger.Error("sweep insert failed",
				zap.String("employee_id", emp.ID.String()),
				zap.Error(err),
			)
			return result, err
		}
		if onLeave {
			result.OnLeave++
		} else {
			result.Absent++
		}
	}

	s.logger.Info("absence sweep done",
		zap.String("date", result.Date),
		zap.Int("absent", result.Absent),
		zap.Int("on_leave", result.OnLeave),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
