package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ResumeRecord stores the normalized extraction output verbatim as an opaque
// JSON document. Field order inside Data is the normalizer's concern; the
// store never re-shapes it.
type ResumeRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;index;not null" json:"userId"`
	FileID    uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"fileId"`
	Data      datatypes.JSON `gorm:"not null" json:"data"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (ResumeRecord) TableName() string { return "resume_data" }
