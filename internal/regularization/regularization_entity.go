package regularization

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

const (
	TypeCheckIn      = "CHECK_IN"
	TypeCheckOut     = "CHECK_OUT"
	TypeBoth         = "BOTH"
	TypeStatusChange = "STATUS_CHANGE"
)

// RegularizationRequest is an employee's dispute of one attendance day:
// which fields they want corrected, to what, and why.
type RegularizationRequest struct {
	ID               uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID        uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID       uuid.UUID      `gorm:"column:employee_id;type:uuid;not null;index:idx_regularizations_employee_date"`
	AttendanceDate   time.Time      `gorm:"column:attendance_date;type:date;not null;index:idx_regularizations_employee_date"`
	RequestType      string         `gorm:"column:request_type;type:varchar(20);not null"`
	ProposedCheckIn  *time.Time     `gorm:"column:proposed_check_in;type:timestamptz"`
	ProposedCheckOut *time.Time     `gorm:"column:proposed_check_out;type:timestamptz"`
	ProposedStatus   *string        `gorm:"column:proposed_status;type:varchar(20)"`
	Reason           string         `gorm:"column:reason;type:text;not null"`
	Status           string         `gorm:"column:status;type:varchar(20);not null;default:'PENDING';index"`
	ReviewedBy       *uuid.UUID     `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt       *time.Time     `gorm:"column:reviewed_at;type:timestamptz"`
	ReviewNote       *string        `gorm:"column:review_note;type:text"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (RegularizationRequest) TableName() string {
	return "regularization_requests"
}

func (r *RegularizationRequest) IsResolved() bool {
	return r.Status != StatusPending
}
