package leave

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPendingManager = "PENDING_MANAGER"
	StatusPendingHR      = "PENDING_HR"
	StatusApproved       = "APPROVED"
	StatusRejected       = "REJECTED"
	StatusCancelled      = "CANCELLED"
	StatusWithdrawn      = "WITHDRAWN"
)

type LeaveRequest struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_leave_requests_company_status"`
	EmployeeID uuid.UUID  `gorm:"type:uuid;not null;index:idx_leave_requests_employee_dates"`
	ManagerID  *uuid.UUID `gorm:"type:uuid;index"`

	LeaveType string    `gorm:"type:varchar(30);not null;default:'ANNUAL'"`
	StartDate time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	EndDate   time.Time `gorm:"type:date;not null;index:idx_leave_requests_employee_dates"`
	TotalDays int       `gorm:"type:int;not null;default:1"`
	Reason    string    `gorm:"type:text"`

	Status           string     `gorm:"type:varchar(20);not null;default:'PENDING_MANAGER';index:idx_leave_requests_company_status"`
	ManagerDecidedBy *uuid.UUID `gorm:"type:uuid"`
	ManagerDecidedAt *time.Time
	DecidedBy        *uuid.UUID `gorm:"type:uuid"`
	DecidedAt        *time.Time
	DecisionRemarks  *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}

// LeaveBalance is the per-employee, per-type, per-year ledger. remaining is
// always total - used; it is never stored.
type LeaveBalance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID  uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index:idx_leave_balances_key,unique"`
	LeaveType  string    `gorm:"type:varchar(30);not null;index:idx_leave_balances_key,unique"`
	Year       int       `gorm:"type:int;not null;index:idx_leave_balances_key,unique"`
	TotalDays  int       `gorm:"type:int;not null;default:0"`
	UsedDays   int       `gorm:"type:int;not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

func (b LeaveBalance) Remaining() int {
	return b.TotalDays - b.UsedDays
}

func (l LeaveRequest) IsPending() bool {
	return l.Status == StatusPendingManager || l.Status == StatusPendingHR
}

// Unreviewed reports whether no decision at any level has been recorded
// yet. A request routed straight to HR stays unreviewed at PENDING_HR, so
// its owner can still edit or delete it there.
func (l LeaveRequest) Unreviewed() bool {
	switch l.Status {
	case StatusPendingManager:
		return true
	case StatusPendingHR:
		return l.ManagerDecidedAt == nil
	default:
		return false
	}
}

func (l LeaveRequest) IsTerminal() bool {
	switch l.Status {
	case StatusRejected, StatusCancelled, StatusWithdrawn:
		return true
	default:
		return false
	}
}
