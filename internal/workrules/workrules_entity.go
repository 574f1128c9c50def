package workrules

import (
	"time"

	"github.com/google/uuid"
)

// WorkRules is an append-only, versioned row: updates insert version n+1,
// the highest version per company is the active one.
type WorkRules struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;index:idx_work_rules_company_version,unique"`
	Version   int       `gorm:"column:version;type:int;not null;index:idx_work_rules_company_version,unique"`

	Timezone          string  `gorm:"column:timezone;type:varchar(64);not null;default:'UTC'"`
	StandardWorkHours float64 `gorm:"column:standard_work_hours;not null;default:8"`
	HalfDayThreshold  float64 `gorm:"column:half_day_threshold;not null;default:4"`
	AllowSelfClockIn  bool    `gorm:"column:allow_self_clock_in;not null;default:true"`
	AutoHalfDayCutoff string  `gorm:"column:auto_half_day_cutoff;type:varchar(5);not null;default:'18:00'"`
	WorkDayStart      string  `gorm:"column:work_day_start;type:varchar(5);not null;default:'09:00'"`
	LateGraceMinutes  int     `gorm:"column:late_grace_minutes;not null;default:15"`

	// Deduction rates are configuration, not logic. Rates in basis points,
	// money in the smallest unit (cents) to avoid floating point error.
	PFRateBps   int64     `gorm:"column:pf_rate_bps;type:bigint;not null;default:1200"`
	BasicPctBps int64     `gorm:"column:basic_pct_bps;type:bigint;not null;default:5000"`
	TaxSlabs    []TaxSlab `gorm:"column:tax_slabs;serializer:json"`

	LeaveTypeLimits       map[string]int `gorm:"column:leave_type_limits;serializer:json"`
	LegacyAnnualLeaveDays int            `gorm:"column:legacy_annual_leave_days;not null;default:0"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (WorkRules) TableName() string {
	return "work_rules"
}

// TaxSlab taxes the whole monthly salary at RateBps when the salary falls
// inside [MinSalary, MaxSalary). MaxSalary 0 means unbounded.
type TaxSlab struct {
	MinSalary int64 `json:"min_salary"`
	MaxSalary int64 `json:"max_salary"`
	RateBps   int64 `json:"rate_bps"`
}
