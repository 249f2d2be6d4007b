package models

import (
	"time"

	"github.com/segmentio/ksuid"
	"gorm.io/gorm"
)

// Version is one entry in a document's append-only revision ledger. Rows are
// immutable once created; version numbers form a gap-free sequence per
// document starting at 1. ContentRef points at the content store object
// holding the revision text.
type Version struct {
	ID            string    `json:"id" gorm:"type:char(27);primaryKey"`
	DocumentID    string    `json:"document_id" gorm:"type:char(27);not null;uniqueIndex:idx_versions_doc_number,priority:1"`
	VersionNumber int       `json:"version_number" gorm:"not null;uniqueIndex:idx_versions_doc_number,priority:2"`
	ContentRef    string    `json:"content_ref" gorm:"type:text;not null"`
	Summary       string    `json:"summary" gorm:"type:text"`
	AuthorID      string    `json:"author_id" gorm:"type:char(27);not null;index"`
	CreatedAt     time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate hook generates a KSUID before inserting
func (v *Version) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = ksuid.New().String()
	}
	return nil
}

type VersionCreate struct {
	Content string `json:"content"`
	Summary string `json:"summary"`
}
