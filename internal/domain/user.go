package domain

import (
	"time"

	"gorm.io/gorm"
)

type Provider string

const (
	ProviderEmail Provider = "email"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// User is the credential record. Password and PreviousPassword never
// leave the service; json tags keep them out of every response payload.
type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Email            string         `gorm:"uniqueIndex;not null" json:"email"`
	Password         *string        `json:"-"`
	PreviousPassword *string        `json:"-"`
	Provider         Provider       `gorm:"type:text;not null;default:email" json:"provider"`
	Role             Role           `gorm:"type:text;not null;default:user" json:"role"`
	Status           Status         `gorm:"type:text;not null;default:active" json:"status"`
	FirstName        string         `json:"firstName"`
	LastName         string         `json:"lastName"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "user" }

// Session anchors one refresh-token family. Hash is a per-session random
// secret rotated on every refresh; deleting the row (soft delete) kills
// every refresh token minted from it.
type Session struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Hash      string         `gorm:"not null" json:"-"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Session) TableName() string { return "session" }

// ForgotPassword is a single-use password-reset request, consumed on a
// successful reset.
type ForgotPassword struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Hash      string         `gorm:"uniqueIndex;not null" json:"-"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ForgotPassword) TableName() string { return "forgot_password" }
