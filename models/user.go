package models

import (
	"time"
)

// Role values assignable to a user account.
const (
	RoleChemist = "chemist"
	RoleAnalyst = "analyst"
	RoleAdmin   = "admin"
)

// ValidRole reports whether role is one of the assignable role values.
func ValidRole(role string) bool {
	switch role {
	case RoleChemist, RoleAnalyst, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	UserID   int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	Username string     `gorm:"column:username;unique" json:"username"`
	Email    string     `gorm:"column:email;unique" json:"email"`
	Password string     `gorm:"column:password_hash" json:"-"`
	FullName string     `gorm:"column:full_name" json:"full_name"`
	Role     string     `gorm:"column:role" json:"role"`
	IsActive bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}
