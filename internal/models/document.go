package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
	"gorm.io/gorm"
)

type DocumentType string

const (
	TypeBook      DocumentType = "book"
	TypeContract  DocumentType = "contract"
	TypePaper     DocumentType = "paper"
	TypeNovel     DocumentType = "novel"
	TypeTechnical DocumentType = "technical"
	TypeArticle   DocumentType = "article"
	TypeReport    DocumentType = "report"
)

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	switch t {
	case TypeBook, TypeContract, TypePaper, TypeNovel, TypeTechnical, TypeArticle, TypeReport:
		return true
	}
	return false
}

type PrivacyLevel string

const (
	PrivacyPrivate PrivacyLevel = "private"
	PrivacyShared  PrivacyLevel = "shared"
	PrivacyPublic  PrivacyLevel = "public"
)

func (p PrivacyLevel) Valid() bool {
	switch p {
	case PrivacyPrivate, PrivacyShared, PrivacyPublic:
		return true
	}
	return false
}

// Metadata is a typed open mapping stored as JSONB. Invalid stored content
// decodes to an empty map instead of failing the read.
type Metadata map[string]any

func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	return string(b), nil
}

func (m *Metadata) Scan(value any) error {
	*m = Metadata{}
	if value == nil {
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return nil
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		// Corrupt stored metadata degrades to an empty map, not a failed read.
		return nil
	}
	*m = decoded
	return nil
}

// Document is a collaborative document. The owner reference is immutable after
// creation; version content lives in the content store, not on this row.
type Document struct {
	ID        string         `json:"id" gorm:"type:char(27);primaryKey"`
	Title     string         `json:"title" gorm:"type:text;not null"`
	Type      DocumentType   `json:"type" gorm:"type:varchar(50);not null;default:'article'"`
	OwnerID   string         `json:"owner_id" gorm:"type:char(27);not null;index"`
	Privacy   PrivacyLevel   `json:"privacy" gorm:"type:varchar(20);not null;default:'private'"`
	Metadata  Metadata       `json:"metadata" gorm:"type:jsonb;default:'{}'"`
	CreatedAt time.Time      `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"column:deleted_at;index"`
}

// BeforeCreate hook generates a KSUID before inserting
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = ksuid.New().String()
	}
	return nil
}

type DocumentCreate struct {
	Title    string       `json:"title"`
	Type     DocumentType `json:"type"`
	Privacy  PrivacyLevel `json:"privacy"`
	Metadata Metadata     `json:"metadata"`
	Content  string       `json:"content"`
}

type DocumentUpdate struct {
	Title    *string       `json:"title,omitempty"`
	Type     *DocumentType `json:"type,omitempty"`
	Privacy  *PrivacyLevel `json:"privacy,omitempty"`
	Metadata Metadata      `json:"metadata,omitempty"`
}
