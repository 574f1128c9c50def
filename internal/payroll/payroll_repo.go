package payroll

import (
	"context"
	"database/sql"

	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreateBatch(ctx context.Context, b *PayrollBatch) error
	UpdateBatch(ctx context.Context, b *PayrollBatch) error
	FindBatchByID(ctx context.Context, companyID, id string) (*PayrollBatch, error)
	FindActiveBatch(ctx context.Context, companyID string, month, year int) (*PayrollBatch, error)
	ListBatches(ctx context.Context, companyID string, year int, status string) ([]PayrollBatch, error)

	CreateSlip(ctx context.Context, s *SalarySlip) error
	UpdateSlip(ctx context.Context, s *SalarySlip) error
	FindSlipByID(ctx context.Context, companyID, id string) (*SalarySlip, error)
	FindSlipsByBatch(ctx context.Context, companyID, batchID string) ([]SalarySlip, error)
	FindSlipByEmployee(ctx context.Context, companyID, employeeID string, month, year int) (*SalarySlip, error)
	DeleteSlipsByBatchAndEmployees(ctx context.Context, companyID, batchID string, employeeIDs []string) error
	DeleteSlipsByBatch(ctx context.Context, companyID, batchID string) error
	MarkSlipsPaid(ctx context.Context, companyID, batchID string) (int64, error)
	SumNetByBatch(ctx context.Context, companyID, batchID string) (int64, error)
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

func (r *repository) CreateBatch(ctx context.Context, b *PayrollBatch) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) UpdateBatch(ctx context.Context, b *PayrollBatch) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *repository) FindBatchByID(ctx context.Context, companyID, id string) (*PayrollBatch, error) {
	var b PayrollBatch
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&b, "id = ?", id).Error
	return &b, err
}

func (r *repository) FindActiveBatch(ctx context.Context, companyID string, month, year int) (*PayrollBatch, error) {
	var b PayrollBatch
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("month = ? AND year = ?", month, year).
		Where("status <> ?", BatchStatusCancelled).
		First(&b).Error
	return &b, err
}

func (r *repository) ListBatches(ctx context.Context, companyID string, year int, status string) ([]PayrollBatch, error) {
	q := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if year != 0 {
		q = q.Where("year = ?", year)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []PayrollBatch
	err := q.Order("year DESC, month DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) CreateSlip(ctx context.Context, s *SalarySlip) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) UpdateSlip(ctx context.Context, s *SalarySlip) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *repository) FindSlipByID(ctx context.Context, companyID, id string) (*SalarySlip, error) {
	var s SalarySlip
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&s, "id = ?", id).Error
	return &s, err
}

func (r *repository) FindSlipsByBatch(ctx context.Context, companyID, batchID string) ([]SalarySlip, error) {
	var rows []SalarySlip
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindSlipByEmployee(ctx context.Context, companyID, employeeID string, month, year int) (*SalarySlip, error) {
	var s SalarySlip
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("month = ? AND year = ?", month, year).
		First(&s).Error
	return &s, err
}

// Slip deletes are hard deletes: the (employee, month, year) unique index
// must be free for the replacement row.
func (r *repository) DeleteSlipsByBatchAndEmployees(ctx context.Context, companyID, batchID string, employeeIDs []string) error {
	return r.db.WithContext(ctx).
		Unscoped().
		Where("company_id = ?", companyID).
		Where("batch_id = ?", batchID).
		Where("employee_id IN ?", employeeIDs).
		Delete(&SalarySlip{}).Error
}

func (r *repository) DeleteSlipsByBatch(ctx context.Context, companyID, batchID string) error {
	return r.db.WithContext(ctx).
		Unscoped(). // same unique-index constraint as above
		Where("company_id = ?", companyID).
		Where("batch_id = ?", batchID).
		Delete(&SalarySlip{}).Error
}

func (r *repository) MarkSlipsPaid(ctx context.Context, companyID, batchID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&SalarySlip{}).
		Where("company_id = ?", companyID).
		Where("batch_id = ?", batchID).
		Where("status <> ?", SlipStatusPaid).
		Update("status", SlipStatusPaid)
	return res.RowsAffected, res.Error
}

func (r *repository) SumNetByBatch(ctx context.Context, companyID, batchID string) (int64, error) {
	var total sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&SalarySlip{}).
		Where("company_id = ?", companyID).
		Where("batch_id = ?", batchID).
		Select("COALESCE(SUM(net_salary), 0)").
		Scan(&total).Error
	return total.Int64, err
}
