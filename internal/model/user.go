// Package model defines database models and their wire representations
package model

import "time"

type User struct {
	ID           uint    `gorm:"primaryKey;autoIncrement"`
	Username     string  `gorm:"size:255;uniqueIndex;not null"`
	Email        string  `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash *string `gorm:"size:255"` // nil for rows created before credentials were required
	IsAdmin      bool    `gorm:"not null;default:false"`
	CreatedAt    time.Time
	LastLogin    *time.Time
}

func (User) TableName() string {
	return "users"
}

// PublicUser is a user as sent to clients. It has no credential field.
type PublicUser struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	IsAdmin   bool       `json:"isAdmin"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

func (u *User) Public() PublicUser {
	p := PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		LastLogin: u.LastLogin,
	}

	if !u.CreatedAt.IsZero() {
		createdAt := u.CreatedAt
		p.CreatedAt = &createdAt
	}

	return p
}
