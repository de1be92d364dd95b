package domain

import (
	"time"
)

type UserRole string

const (
	RoleStudent  UserRole = "student"
	RoleOperator UserRole = "operator"
)

type User struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PhoneNumber string    `gorm:"uniqueIndex;not null;column:phone_number" json:"phone_number"`
	FirstName   string    `gorm:"column:first_name" json:"first_name"`
	LastName    string    `gorm:"column:last_name" json:"last_name"`
	Role        UserRole  `gorm:"not null;default:student;column:role" json:"role"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) IsOperator() bool { return u.Role == RoleOperator }
