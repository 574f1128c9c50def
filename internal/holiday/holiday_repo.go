// Package holiday reads the company holiday calendar owned elsewhere.
package holiday

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Holiday struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"column:company_id;type:uuid;not null;index:idx_holidays_company_date,unique"`
	Date      time.Time `gorm:"column:date;type:date;not null;index:idx_holidays_company_date,unique"`
	Name      string    `gorm:"column:name;type:varchar(120);not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (Holiday) TableName() string {
	return "holidays"
}

//go:generate mockgen -source=holiday_repo.go -destination=mock/holiday_repo_mock.go -package=mock
type Repository interface {
	IsHoliday(ctx context.Context, companyID string, date time.Time) (bool, error)
	ListByYear(ctx context.Context, companyID string, year int) ([]Holiday, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) IsHoliday(ctx context.Context, companyID string, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Holiday{}).
		Where("company_id = ?", companyID).
		Where("date = ?", date.Format("2006-01-02")).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) ListByYear(ctx context.Context, companyID string, year int) ([]Holiday, error) {
	var rows []Holiday
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("EXTRACT(YEAR FROM date) = ?", year).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}
