package models

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleSales   UserRole = "sales"
	RoleManager UserRole = "manager" // руководитель стройки
	RoleViewer  UserRole = "viewer"
)

// SystemUserID: автор записей журнала, созданных самой системой.
const SystemUserID uint = 0

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleSales, RoleManager, RoleViewer:
		return true
	}
	return false
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Username     string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         UserRole  `gorm:"type:varchar(20);not null" json:"role"`
}
