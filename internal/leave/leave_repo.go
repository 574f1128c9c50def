package leave

import (
	"context"
	"database/sql"
	"time"

	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error)
	FindAllByCompany(ctx context.Context, companyID, status string) ([]LeaveRequest, error)
	FindByEmployee(ctx context.Context, companyID, employeeID, status string) ([]LeaveRequest, error)
	FindByManager(ctx context.Context, companyID, managerID, status string) ([]LeaveRequest, error)
	Update(ctx context.Context, l *LeaveRequest) error
	Delete(ctx context.Context, companyID, id string) error
	HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error)
	HasApprovedLeave(ctx context.Context, companyID, employeeID string, date time.Time) (bool, error)
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

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID, status string) ([]LeaveRequest, error) {
	q := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []LeaveRequest
	err := q.Order("start_date DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) FindByEmployee(ctx context.Context, companyID, employeeID, status string) ([]LeaveRequest, error) {
	q := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []LeaveRequest
	err := q.Order("start_date DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) FindByManager(ctx context.Context, companyID, managerID, status string) ([]LeaveRequest, error) {
	q := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("manager_id = ?", managerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []LeaveRequest
	err := q.Order("start_date DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, l *LeaveRequest) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *repository) Delete(ctx context.Context, companyID, id string) error {
	return r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Delete(&LeaveRequest{}, "id = ?", id).Error
}

// HasOverlappingPeriod counts live requests (anything not already dead)
// touching the range.
func (r *repository) HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time, excludeID *string) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("status NOT IN ?", []string{StatusRejected, StatusCancelled, StatusWithdrawn}).
		Where("NOT (end_date < ? OR start_date > ?)", startDate, endDate)
	if excludeID != nil && *excludeID != "" {
		q = q.Where("id <> ?", *excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

// HasApprovedLeave lets the attendance engine ask whether a day is covered
// without importing this package.
func (r *repository) HasApprovedLeave(ctx context.Context, companyID, employeeID string, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("status = ?", StatusApproved).
		Where("start_date <= ? AND end_date >= ?", date.Format("2006-01-02"), date.Format("2006-01-02")).
		Count(&count).Error
	return count > 0, err
}
