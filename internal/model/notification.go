package model

import (
	"time"

	"gorm.io/datatypes"
)

// Notification persists a generated alert. ID is the alert's deterministic
// id, which makes re-running the generator idempotent.
type Notification struct {
	ID        string    `gorm:"type:varchar(120);primaryKey" json:"id"`
	Type      string    `gorm:"type:varchar(40);index" json:"type"`
	Severity  string    `gorm:"type:varchar(10)" json:"severity"`
	Title     string    `gorm:"type:varchar(255)" json:"title"`
	Details   string    `gorm:"type:text" json:"details"`
	CtaLink   string    `gorm:"type:varchar(255)" json:"ctaLink"`
	Read      bool      `gorm:"column:is_read;index" json:"read"`
	Timestamp time.Time `gorm:"column:issued_at;index" json:"timestamp"`
}

// ActivityLog records who changed what.
type ActivityLog struct {
	BaseModel
	ActorID     string         `gorm:"type:varchar(64);index" json:"actorId"`
	ActorName   string         `gorm:"type:varchar(255)" json:"actorName"`
	Action      string         `gorm:"type:varchar(40);index" json:"action"`
	EntityType  string         `gorm:"type:varchar(40);index" json:"entityType"`
	EntityID    string         `gorm:"type:varchar(64);index" json:"entityId"`
	Description string         `gorm:"type:text" json:"description"`
	Before      datatypes.JSON `json:"before,omitempty"`
	After       datatypes.JSON `json:"after,omitempty"`
}
