package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/cvparse/resume-extractor/constants"
)

// User owns files, resume records and a credit balance. Credits are
// decremented per extraction and replenished by billing webhook events.
type User struct {
	ID             uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string             `gorm:"uniqueIndex;not null" json:"email"`
	APIToken       string             `gorm:"uniqueIndex" json:"-"`
	Credits        int                `gorm:"not null;default:0" json:"credits"`
	PlanType       constants.PlanType `gorm:"type:varchar(16);not null;default:FREE" json:"planType"`
	SubscriptionID *string            `gorm:"index" json:"-"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}
