package payroll

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	BatchStatusDraft     = "DRAFT"
	BatchStatusProcessed = "PROCESSED"
	BatchStatusPaid      = "PAID"
	BatchStatusCancelled = "CANCELLED"
)

const (
	SlipStatusProcessed = "PROCESSED"
	SlipStatusPaid      = "PAID"
)

// PayrollBatch is the monthly run summary. At most one non-cancelled batch
// may exist per (company, month, year); cancelling frees the slot.
type PayrollBatch struct {
	ID             uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID      uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index:idx_payroll_batches_period"`
	Month          int            `gorm:"column:month;not null;index:idx_payroll_batches_period"`
	Year           int            `gorm:"column:year;not null;index:idx_payroll_batches_period"`
	Status         string         `gorm:"column:status;type:varchar(20);not null;default:'DRAFT';index"`
	EmployeeCount  int            `gorm:"column:employee_count;not null;default:0"`
	ProcessedCount int            `gorm:"column:processed_count;not null;default:0"`
	TotalAmount    int64          `gorm:"column:total_amount;type:bigint;not null;default:0"`
	ProcessedBy    *uuid.UUID     `gorm:"column:processed_by;type:uuid"`
	PaidBy         *uuid.UUID     `gorm:"column:paid_by;type:uuid"`
	PaidAt         *time.Time     `gorm:"column:paid_at;type:timestamptz"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (PayrollBatch) TableName() string {
	return "payroll_batches"
}

func (b *PayrollBatch) IsPaid() bool {
	return b.Status == BatchStatusPaid
}

// SalarySlip is one employee's computed pay for a month. All amounts are in
// cents; gross and net are always recomputed from the components, never
// patched directly.
type SalarySlip struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID          uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	BatchID            uuid.UUID      `gorm:"column:batch_id;type:uuid;not null;index"`
	EmployeeID         uuid.UUID      `gorm:"column:employee_id;type:uuid;not null;index:idx_salary_slips_period,unique"`
	Month              int            `gorm:"column:month;not null;index:idx_salary_slips_period,unique"`
	Year               int            `gorm:"column:year;not null;index:idx_salary_slips_period,unique"`
	BasicSalary        int64          `gorm:"column:basic_salary;type:bigint;not null;default:0"`
	Allowances         int64          `gorm:"column:allowances;type:bigint;not null;default:0"`
	ReimbursementTotal int64          `gorm:"column:reimbursement_total;type:bigint;not null;default:0"`
	GrossSalary        int64          `gorm:"column:gross_salary;type:bigint;not null;default:0"`
	LossOfPay          int64          `gorm:"column:loss_of_pay;type:bigint;not null;default:0"`
	PFDeduction        int64          `gorm:"column:pf_deduction;type:bigint;not null;default:0"`
	TaxDeduction       int64          `gorm:"column:tax_deduction;type:bigint;not null;default:0"`
	OtherDeductions    int64          `gorm:"column:other_deductions;type:bigint;not null;default:0"`
	TotalDeductions    int64          `gorm:"column:total_deductions;type:bigint;not null;default:0"`
	NetSalary          int64          `gorm:"column:net_salary;type:bigint;not null;default:0"`
	PresentDays        int            `gorm:"column:present_days;not null;default:0"`
	HalfDays           int            `gorm:"column:half_days;not null;default:0"`
	AbsentDays         int            `gorm:"column:absent_days;not null;default:0"`
	Status             string         `gorm:"column:status;type:varchar(20);not null;default:'PROCESSED'"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt          gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (SalarySlip) TableName() string {
	return "salary_slips"
}
