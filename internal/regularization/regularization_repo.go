package regularization

import (
	"context"
	"database/sql"
	"time"

	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=regularization_repo.go -destination=mock/regularization_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, req *RegularizationRequest) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*RegularizationRequest, error)
	FindAllByCompany(ctx context.Context, companyID, status string) ([]RegularizationRequest, error)
	FindByEmployee(ctx context.Context, companyID, employeeID, status string) ([]RegularizationRequest, error)
	Update(ctx context.Context, req *RegularizationRequest) error
	HasPendingForDate(ctx context.Context, companyID, employeeID string, date time.Time) (bool, error)
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

func (r *repository) Create(ctx context.Context, req *RegularizationRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*RegularizationRequest, error) {
	var req RegularizationRequest
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&req, "id = ?", id).Error
	return &req, err
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID, status string) ([]RegularizationRequest, error) {
	q := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []RegularizationRequest
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) FindByEmployee(ctx context.Context, companyID, employeeID, status string) ([]RegularizationRequest, error) {
	q := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []RegularizationRequest
	err := q.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, req *RegularizationRequest) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *repository) HasPendingForDate(ctx context.Context, companyID, employeeID string, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&RegularizationRequest{}).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("attendance_date = ?", date.Format("2006-01-02")).
		Where("status = ?", StatusPending).
		Count(&count).Error
	return count > 0, err
}
