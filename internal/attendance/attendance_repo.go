package attendance

import (
	"context"
	"database/sql"
	"time"

	"github.com/Vishal6374/hr-harmony-sub000/internal/shared/connection"

	"gorm.io/gorm"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, a *Attendance) error
	Update(ctx context.Context, a *Attendance) error
	FindByID(ctx context.Context, companyID, id string) (*Attendance, error)
	FindByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*Attendance, error)
	FindByEmployeeAndMonth(ctx context.Context, companyID, employeeID string, month, year int) ([]Attendance, error)
	FindByCompanyAndDate(ctx context.Context, companyID string, date time.Time) ([]Attendance, error)
	FindStaleCheckouts(ctx context.Context, upTo time.Time) ([]Attendance, error)
	LockMonth(ctx context.Context, companyID string, month, year int) (int64, error)
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

func (r *repository) Create(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) Update(ctx context.Context, a *Attendance) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *repository) FindByID(ctx context.Context, companyID, id string) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&a, "id = ?", id).Error
	return &a, err
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*Attendance, error) {
	var a Attendance
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("attendance_date = ?", date.Format("2006-01-02")).
		First(&a).Error
	return &a, err
}

func (r *repository) FindByEmployeeAndMonth(ctx context.Context, companyID, employeeID string, month, year int) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("employee_id = ?", employeeID).
		Where("EXTRACT(MONTH FROM attendance_date) = ?", month).
		Where("EXTRACT(YEAR FROM attendance_date) = ?", year).
		Order("attendance_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindByCompanyAndDate(ctx context.Context, companyID string, date time.Time) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Where("attendance_date = ?", date.Format("2006-01-02")).
		Find(&rows).Error
	return rows, err
}

// FindStaleCheckouts returns unlocked records still PRESENT with a check-in
// and no check-out, up to and including the given date.
func (r *repository) FindStaleCheckouts(ctx context.Context, upTo time.Time) ([]Attendance, error) {
	var rows []Attendance
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusPresent).
		Where("check_in IS NOT NULL").
		Where("check_out IS NULL").
		Where("is_locked = ?", false).
		Where("attendance_date <= ?", upTo.Format("2006-01-02")).
		Order("attendance_date ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) LockMonth(ctx context.Context, companyID string, month, year int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Attendance{}).
		Where("company_id = ?", companyID).
		Where("EXTRACT(MONTH FROM attendance_date) = ?", month).
		Where("EXTRACT(YEAR FROM attendance_date) = ?", year).
		Where("is_locked = ?", false).
		Update("is_locked", true)
	return res.RowsAffected, res.Error
}
