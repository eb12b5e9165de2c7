package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Shoot is a recording session that clips originate from. The doctors list is
// legacy; the KOL group relation supersedes it.
type Shoot struct {
	ID         string         `gorm:"size:255;primaryKey" json:"id"`
	Name       string         `gorm:"size:255;not null" json:"name"`
	Doctors    pq.StringArray `gorm:"type:text[]" json:"doctors"`
	ShootDate  *time.Time     `json:"shoot_date,omitempty"`
	ProjectID  *uuid.UUID     `gorm:"type:uuid;index" json:"project_id,omitempty"`
	KOLGroupID *uuid.UUID     `gorm:"type:uuid;index" json:"kol_group_id,omitempty"`

	// Speaker-attributed transcript, e.g. "Dr. Smith [00:00]:\n...".
	DiarizedTranscript string `gorm:"type:text" json:"diarized_transcript,omitempty"`

	SyncedAt  time.Time `gorm:"autoUpdateTime" json:"synced_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Project  *Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:SET NULL" json:"-"`
	KOLGroup *KOLGroup `gorm:"foreignKey:KOLGroupID;constraint:OnDelete:SET NULL" json:"-"`
	Clips    []Clip    `gorm:"foreignKey:ShootID" json:"-"`
	Posts    []Post    `gorm:"foreignKey:ShootID" json:"-"`
}
