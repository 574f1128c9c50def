package employee

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*Employee, error)
	FindActiveByCompany(ctx context.Context, companyID string) ([]Employee, error)
	FindAllActive(ctx context.Context) ([]Employee, error)
	FindByDeviceUserID(ctx context.Context, deviceUserID string) (*Employee, error)
	FindByIDsAndCompany(ctx context.Context, companyID string, ids []string) ([]Employee, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&e, "id = ?", id).Error
	return &e, err
}

func (r *repository) FindActiveByCompany(ctx context.Context, companyID string) ([]Employee, error) {
	var rows []Employee
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("is_active = ?", true).
		Order("full_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllActive(ctx context.Context) ([]Employee, error) {
	var rows []Employee
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("company_id, full_name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByDeviceUserID(ctx context.Context, deviceUserID string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		Where("device_user_id = ?", deviceUserID).
		Where("is_active = ?", true).
		First(&e).Error
	return &e, err
}

func (r *repository) FindByIDsAndCompany(ctx context.Context, companyID string, ids []string) ([]Employee, error) {
	var rows []Employee
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("id IN ?", ids).
		Find(&rows).Error
	return rows, err
}
