package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/cvparse/resume-extractor/constants"
)

// HistoryEntry is an append-only audit row. Failures during processing are
// recorded here with the error text rather than silently dropped.
type HistoryEntry struct {
	ID        uuid.UUID               `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID               `gorm:"type:uuid;index;not null" json:"userId"`
	FileID    uuid.UUID               `gorm:"type:uuid;index;not null" json:"fileId"`
	Action    constants.HistoryAction `gorm:"type:varchar(16);not null" json:"action"`
	Status    constants.HistoryStatus `gorm:"type:varchar(16);not null" json:"status"`
	Message   string                  `json:"message"`
	CreatedAt time.Time               `json:"createdAt"`
}

func (HistoryEntry) TableName() string { return "resume_history" }
