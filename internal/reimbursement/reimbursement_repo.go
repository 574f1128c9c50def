// Package reimbursement reads approved expense claims owned by another
// module; payroll folds unpaid ones into gross pay and stamps the batch
// that settled them.
package reimbursement

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/connection"

	"gorm.io/gorm"
)

const (
	StatusApproved = "APPROVED"
	StatusPaid     = "PAID"
)

type Reimbursement struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID  `gorm:"column:company_id;type:uuid;not null;index"`
	EmployeeID    uuid.UUID  `gorm:"column:employee_id;type:uuid;not null;index"`
	Description   string     `gorm:"column:description;type:text"`
	Amount        int64      `gorm:"column:amount;type:bigint;not null"`
	Status        string     `gorm:"column:status;type:varchar(20);not null;default:'PENDING'"`
	PaidInBatchID *uuid.UUID `gorm:"column:paid_in_batch_id;type:uuid;index"`
	CreatedAt     time.Time  `gorm:"column:created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (Reimbursement) TableName() string {
	return "reimbursements"
}

//go:generate mockgen -source=reimbursement_repo.go -destination=mock/reimbursement_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	SumApprovedUnpaid(ctx context.Context, companyID, employeeID string) (int64, error)
	MarkPaidByBatch(ctx context.Context, companyID, batchID string, employeeIDs []string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: connection.TxBound(r.db, tx)}
}

func (r *repository) SumApprovedUnpaid(ctx context.Context, companyID, employeeID string) (int64, error) {
	var total sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&Reimbursement{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("status = ?", StatusApproved).
		Where("paid_in_batch_id IS NULL").
		Scan(&total).Error
	return total.Int64, err
}

func (r *repository) MarkPaidByBatch(ctx context.Context, companyID, batchID string, employeeIDs []string) error {
	if len(employeeIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&Reimbursement{}).
		Where("company_id = ?", companyID).
		Where("employee_id IN ?", employeeIDs).
		Where("status = ?", StatusApproved).
		Where("paid_in_batch_id IS NULL").
		Updates(map[string]any{
			"status":           StatusPaid,
			"paid_in_batch_id": batchID,
		}).Error
}
