package models

import "time"

type UserRole string

const (
	UserRoleAdmin UserRole = "Admin"
	UserRoleUser  UserRole = "User"
)

type User struct {
	ID           int64
	UserName     string
	PasswordHash string
	Role         UserRole
	FirstName    string
	LastName     string
	Contact      string
	IsEnabled    bool
	CreatedBy    string
	CreatedAt    time.Time
	LastLogin    *time.Time
}
