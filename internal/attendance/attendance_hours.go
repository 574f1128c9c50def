package attendance

import (
	"math"
	"time"

	"github.com/Vishal6374/hr-harmony-sub000/internal/workrules"
)

// computeWorkHours is the hours rule for one day. A negative span means an
// overnight shift, so a day is added before rounding to two decimals.
func computeWorkHours(checkIn, checkOut time.Time) float64 {
	d := checkOut.Sub(checkIn)
	if d < 0 {
		d += 24 * time.Hour
	}
	return math.Round(d.Hours()*100) / 100
}

func classifyByHours(hours float64, rules workrules.Rules) string {
	switch {
	case hours < rules.HalfDayThreshold:
		return StatusAbsent
	case hours < rules.StandardWorkHours:
		return StatusHalfDay
	default:
		return StatusPresent
	}
}

// deriveStatus classifies a day when the caller supplied no explicit status.
// A lone check-in is provisionally PRESENT until the checkout correction
// pass demotes it.
func deriveStatus(checkIn, checkOut *time.Time, date time.Time, rules workrules.Rules) string {
	switch {
	case checkIn != nil && checkOut != nil:
		return classifyByHours(computeWorkHours(*checkIn, *checkOut), rules)
	case checkIn != nil:
		return StatusPresent
	default:
		if isWeekend(date) {
			return StatusWeekend
		}
		return StatusAbsent
	}
}

func isWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func overtimeMinutes(hours float64, rules workrules.Rules) int {
	extra := hours - rules.StandardWorkHours
	if extra <= 0 {
		return 0
	}
	return int(math.Round(extra * 60))
}

// lateMinutes measures the check-in against the configured day start, read
// on the company clock. Punches arrive normalized to UTC, so the timestamp
// is shifted into the company timezone before comparing wall times. Inside
// the grace window lateness is zero; past it, the full delta from day start
// counts.
func lateMinutes(checkIn, date time.Time, rules workrules.Rules) int {
	start, err := time.Parse("15:04", rules.WorkDayStart)
	if err != nil {
		return 0
	}
	loc := rules.Location()
	in := checkIn.In(loc)
	dayStart := time.Date(date.Year(), date.Month(), date.Day(),
		start.Hour(), start.Minute(), 0, 0, loc)
	grace := dayStart.Add(time.Duration(rules.LateGraceMinutes) * time.Minute)
	if !in.After(grace) {
		return 0
	}
	return int(in.Sub(dayStart).Minutes())
}

// applyDerivation recomputes hours and the minute counters from the
// timestamps on the record. An explicit status always wins over the derived
// one.
func applyDerivation(row *Attendance, rules workrules.Rules, explicitStatus *string) {
	row.WorkHours = 0
	row.OvertimeMinutes = 0
	row.LateMinutes = 0

	if row.CheckIn != nil && row.CheckOut != nil {
		row.WorkHours = computeWorkHours(*row.CheckIn, *row.CheckOut)
		row.OvertimeMinutes = overtimeMinutes(row.WorkHours, rules)
	}
	if row.CheckIn != nil {
		row.LateMinutes = lateMinutes(*row.CheckIn, row.AttendanceDate, rules)
	}

	if explicitStatus != nil && *explicitStatus != "" {
		row.Status = *explicitStatus
		return
	}
	row.Status = deriveStatus(row.CheckIn, row.CheckOut, row.AttendanceDate, rules)
}

func appendNote(row *Attendance, note string) {
	if row.Notes == nil || *row.Notes == "" {
		row.Notes = &note
		return
	}
	joined := *row.Notes + "; " + note
	row.Notes = &joined
}
