package attendance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPresent = "PRESENT"
	StatusAbsent  = "ABSENT"
	StatusHalfDay = "HALF_DAY"
	StatusOnLeave = "ON_LEAVE"
	StatusHoliday = "HOLIDAY"
	StatusWeekend = "WEEKEND"
)

const (
	SourceBiometric = "BIOMETRIC"
	SourceManual    = "MANUAL"
	SourceAdjusted  = "ADJUSTED"
)

// Attendance is the single derived fact for one employee-day. The unique
// index on (employee_id, attendance_date) is the concurrency guard: a
// second writer for the same day must coalesce into an update or fail.
type Attendance struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID       uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID      uuid.UUID      `gorm:"column:employee_id;type:uuid;not null;index:idx_attendances_employee_date,unique"`
	AttendanceDate  time.Time      `gorm:"column:attendance_date;type:date;not null;index:idx_attendances_employee_date,unique"`
	CheckIn         *time.Time     `gorm:"column:check_in;type:timestamptz"`
	CheckOut        *time.Time     `gorm:"column:check_out;type:timestamptz"`
	Status          string         `gorm:"column:status;type:varchar(20);not null;default:PRESENT"`
	WorkHours       float64        `gorm:"column:work_hours;type:numeric(5,2);not null;default:0"`
	OvertimeMinutes int            `gorm:"column:overtime_minutes;not null;default:0"`
	LateMinutes     int            `gorm:"column:late_minutes;not null;default:0"`
	IsLocked        bool           `gorm:"column:is_locked;not null;default:false;index"`
	Source          string         `gorm:"column:source;type:varchar(30);not null;default:MANUAL"`
	EditedBy        *uuid.UUID     `gorm:"column:edited_by;type:uuid"`
	EditReason      *string        `gorm:"column:edit_reason;type:text"`
	Notes           *string        `gorm:"column:notes;type:text"`
	CreatedAt       time.Time      `gorm:"column:created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Attendance) TableName() string {
	return "attendances"
}
