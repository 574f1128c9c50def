package workrules

type UpdateWorkRulesRequest struct {
	Timezone          string         `json:"timezone"`
	StandardWorkHours float64        `json:"standard_work_hours" binding:"required,gt=0"`
	HalfDayThreshold  float64        `json:"half_day_threshold" binding:"required,gt=0"`
	AllowSelfClockIn  bool           `json:"allow_self_clock_in"`
	AutoHalfDayCutoff string         `json:"auto_half_day_cutoff" binding:"required"`
	WorkDayStart      string         `json:"work_day_start" binding:"required"`
	LateGraceMinutes  int            `json:"late_grace_minutes" binding:"gte=0"`
	PFRateBps         int64          `json:"pf_rate_bps" binding:"gte=0"`
	BasicPctBps       int64          `json:"basic_pct_bps" binding:"gt=0,lte=10000"`
	TaxSlabs          []TaxSlabInput `json:"tax_slabs"`
	LeaveTypeLimits   map[string]int `json:"leave_type_limits"`
	// Aggregate annual allowance honored when a leave type has no entry in
	// leave_type_limits.
	LegacyAnnualLeaveDays int `json:"legacy_annual_leave_days" binding:"gte=0"`
}

type TaxSlabInput struct {
	MinSalary int64 `json:"min_salary" binding:"gte=0"`
	MaxSalary int64 `json:"max_salary" binding:"gte=0"`
	RateBps   int64 `json:"rate_bps" binding:"gte=0"`
}

type WorkRulesResponse struct {
	CompanyID         string         `json:"company_id"`
	Version           int            `json:"version"`
	Timezone          string         `json:"timezone"`
	StandardWorkHours float64        `json:"standard_work_hours"`
	HalfDayThreshold  float64        `json:"half_day_threshold"`
	AllowSelfClockIn  bool           `json:"allow_self_clock_in"`
	AutoHalfDayCutoff string         `json:"auto_half_day_cutoff"`
	WorkDayStart      string         `json:"work_day_start"`
	LateGraceMinutes  int            `json:"late_grace_minutes"`
	PFRateBps         int64          `json:"pf_rate_bps"`
	BasicPctBps       int64          `json:"basic_pct_bps"`
	TaxSlabs          []TaxSlab      `json:"tax_slabs"`
	LeaveTypeLimits   map[string]int `json:"leave_type_limits"`

	LegacyAnnualLeaveDays int `json:"legacy_annual_leave_days"`
}
