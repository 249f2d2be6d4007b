package models

import (
	"time"

	"github.com/segmentio/ksuid"
	"gorm.io/gorm"
)

// User is a registered account. The password is stored only as a bcrypt hash.
type User struct {
	ID           string         `json:"id" gorm:"type:char(27);primaryKey"`
	Email        string         `json:"email" gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string         `json:"-" gorm:"type:text;not null"`
	DisplayName  string         `json:"display_name" gorm:"type:text;not null"`
	CreatedAt    time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"column:deleted_at;index"`
}

// BeforeCreate hook generates a KSUID before inserting
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = ksuid.New().String()
	}
	return nil
}

type UserRegister struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type UserLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserUpdate struct {
	DisplayName *string `json:"display_name,omitempty"`
}

// PublicUser is the collaborator-facing view of a user (no credential data).
type PublicUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName}
}
