package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type ClipStatus string

const (
	ClipStatusDraft     ClipStatus = "draft"
	ClipStatusReady     ClipStatus = "ready"
	ClipStatusScheduled ClipStatus = "scheduled"
	ClipStatusPublished ClipStatus = "published"
	ClipStatusFailed    ClipStatus = "failed"
)

// ParseClipStatus maps a status string to the enum, defaulting to draft.
func ParseClipStatus(s string) ClipStatus {
	switch ClipStatus(s) {
	case ClipStatusDraft, ClipStatusReady, ClipStatusScheduled, ClipStatusPublished, ClipStatusFailed:
		return ClipStatus(s)
	}
	return ClipStatusDraft
}

// Clip is a piece of edited content synced from the ops console. The id is the
// natural key (e.g. "youtube:abc123") and stays stable across re-syncs.
type Clip struct {
	ID          string         `gorm:"size:255;primaryKey" json:"id"`
	Title       string         `gorm:"size:500" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Platform    string         `gorm:"size:50;index" json:"platform"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	Status      ClipStatus     `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	Aspect      string         `gorm:"size:20" json:"aspect"`
	Privacy     string         `gorm:"size:50" json:"privacy"`
	VideoPath   string         `gorm:"size:1000" json:"video_path"`
	ShootID     *string        `gorm:"size:255;index" json:"shoot_id,omitempty"`
	Raw         datatypes.JSON `gorm:"type:jsonb" json:"raw,omitempty"`

	// Earliest posted_at of the clip's posts, denormalized for sorting.
	EarliestPostedAt *time.Time `json:"earliest_posted_at,omitempty"`

	SyncedAt  time.Time `gorm:"autoUpdateTime" json:"synced_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Shoot *Shoot `gorm:"foreignKey:ShootID;constraint:OnDelete:SET NULL" json:"-"`
	Posts []Post `gorm:"foreignKey:ClipID" json:"-"`
}
