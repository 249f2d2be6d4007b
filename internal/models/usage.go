package models

import (
	"time"

	"github.com/segmentio/ksuid"
	"gorm.io/gorm"
)

type InteractionKind string

const (
	KindAnalyze  InteractionKind = "analyze"
	KindGenerate InteractionKind = "generate"
	KindEdit     InteractionKind = "edit"
)

func (k InteractionKind) Valid() bool {
	switch k {
	case KindAnalyze, KindGenerate, KindEdit:
		return true
	}
	return false
}

// AIUsageRecord is an append-only billing log entry for one AI invocation.
// Rows are never updated or deleted; deleting a document only nulls the
// document reference.
type AIUsageRecord struct {
	ID           string          `json:"id" gorm:"type:char(27);primaryKey"`
	UserID       string          `json:"user_id" gorm:"type:char(27);not null;index"`
	DocumentID   *string         `json:"document_id,omitempty" gorm:"type:char(27);index"`
	Kind         InteractionKind `json:"kind" gorm:"type:varchar(20);not null"`
	Provider     string          `json:"provider" gorm:"type:varchar(50);not null"`
	Model        string          `json:"model" gorm:"type:varchar(100);not null"`
	InputTokens  int             `json:"input_tokens" gorm:"not null"`
	OutputTokens int             `json:"output_tokens" gorm:"not null"`
	Cost         float64         `json:"cost" gorm:"type:numeric(12,6);not null;default:0"`
	CreatedAt    time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate hook generates a KSUID before inserting
func (r *AIUsageRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = ksuid.New().String()
	}
	return nil
}

// KindStats aggregates one interaction kind inside a usage summary.
type KindStats struct {
	Count  int `json:"count"`
	Tokens int `json:"tokens"`
}

// UsageSummary aggregates all of one user's usage records.
type UsageSummary struct {
	TotalInteractions int                           `json:"total_interactions"`
	TotalInputTokens  int                           `json:"total_input_tokens"`
	TotalOutputTokens int                           `json:"total_output_tokens"`
	TotalCost         float64                       `json:"total_cost"`
	ByKind            map[InteractionKind]KindStats `json:"by_kind"`
}
