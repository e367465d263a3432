package directory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee is the slice of the employee directory this service reads.
// The directory itself (CRUD, credentials) is owned elsewhere.
type Employee struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"column:name" json:"name"`
	Email          string    `gorm:"column:email" json:"email"`
	Phone          string    `gorm:"column:phone" json:"phone"`
	Department     string    `gorm:"column:department" json:"department"`
	EmployeeNumber string    `gorm:"column:employee_number" json:"employee_number"`
	IsActive       bool      `gorm:"column:is_active" json:"is_active"`
}

func (Employee) TableName() string {
	return "employees"
}

//go:generate mockgen -source=directory.go -destination=mock/directory_mock.go -package=mock
type Directory interface {
	FindByID(ctx context.Context, id string) (*Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
}

type gormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) Directory {
	return &gormDirectory{db: db}
}

func (d *gormDirectory) FindByID(ctx context.Context, id string) (*Employee, error) {
	var emp Employee
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (d *gormDirectory) ListActive(ctx context.Context) ([]Employee, error) {
	var rows []Employee
	err := d.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}
