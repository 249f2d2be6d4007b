package models

import (
	"time"

	"github.com/segmentio/ksuid"
	"gorm.io/gorm"
)

type PermissionLevel string

const (
	PermissionRead  PermissionLevel = "read"
	PermissionWrite PermissionLevel = "write"
	PermissionAdmin PermissionLevel = "admin"
)

// Valid reports whether p is a grantable permission level.
func (p PermissionLevel) Valid() bool {
	switch p {
	case PermissionRead, PermissionWrite, PermissionAdmin:
		return true
	}
	return false
}

// Collaboration grants one user a permission level on one document. At most
// one row exists per (document, user) pair; re-sharing updates the level in
// place. The document owner never appears here.
type Collaboration struct {
	ID              string          `json:"id" gorm:"type:char(27);primaryKey"`
	DocumentID      string          `json:"document_id" gorm:"type:char(27);not null;uniqueIndex:idx_collab_doc_user,priority:1"`
	UserID          string          `json:"user_id" gorm:"type:char(27);not null;uniqueIndex:idx_collab_doc_user,priority:2"`
	PermissionLevel PermissionLevel `json:"permission_level" gorm:"type:varchar(20);not null"`
	InvitedByID     string          `json:"invited_by_id" gorm:"type:char(27);not null"`
	CreatedAt       time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// BeforeCreate hook generates a KSUID before inserting
func (c *Collaboration) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = ksuid.New().String()
	}
	return nil
}

type ShareRequest struct {
	Email           string          `json:"email"`
	PermissionLevel PermissionLevel `json:"permission_level"`
}

// Collaborator is the listing view of a grant joined with its user.
type Collaborator struct {
	User            PublicUser      `json:"user"`
	PermissionLevel PermissionLevel `json:"permission_level"`
	InvitedByID     string          `json:"invited_by_id"`
	GrantedAt       time.Time       `json:"granted_at"`
}
