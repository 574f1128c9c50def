package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is the read-only directory row this core consumes. The directory
// itself (CRUD, onboarding) is owned by another service.
type Employee struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID     uuid.UUID      `gorm:"column:company_id;type:uuid;not null;index"`
	FullName      string         `gorm:"column:full_name;type:varchar(150);not null"`
	Email         string         `gorm:"column:email;type:varchar(150)"`
	Role          string         `gorm:"column:role;type:varchar(20);not null;default:'EMPLOYEE'"`
	ManagerID     *uuid.UUID     `gorm:"column:manager_id;type:uuid;index"`
	MonthlySalary int64          `gorm:"column:monthly_salary;type:bigint;not null;default:0"`
	DeviceUserID  *string        `gorm:"column:device_user_id;type:varchar(50);index"`
	IsActive      bool           `gorm:"column:is_active;not null;default:true"`
	JoinedAt      time.Time      `gorm:"column:joined_at;type:date"`
	CreatedAt     time.Time      `gorm:"column:created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Employee) TableName() string {
	return "employees"
}
