package models

import (
	"time"

	"github.com/lib/pq"
)

// Post is one platform publication, either linked to a managed clip ("branded")
// or untracked official channel content (clip_id null). The natural key for
// upsert is (platform, provider_post_id); the row id never changes once set.
type Post struct {
	ID             string         `gorm:"type:uuid;primaryKey" json:"id"`
	ClipID         *string        `gorm:"size:255;index" json:"clip_id,omitempty"`
	ShootID        *string        `gorm:"size:255;index" json:"shoot_id,omitempty"`
	Platform       string         `gorm:"size:50;not null;uniqueIndex:uix_posts_platform_provider" json:"platform"`
	ProviderPostID string         `gorm:"size:255;not null;uniqueIndex:uix_posts_platform_provider" json:"provider_post_id"`
	Title          string         `gorm:"size:500" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	PostedAt       *time.Time     `gorm:"index" json:"posted_at,omitempty"`
	Tags           pq.StringArray `gorm:"type:text[]" json:"tags,omitempty"`

	ViewCount       int64 `gorm:"not null;default:0" json:"view_count"`
	LikeCount       int64 `gorm:"not null;default:0" json:"like_count"`
	CommentCount    int64 `gorm:"not null;default:0" json:"comment_count"`
	ShareCount      int64 `gorm:"not null;default:0" json:"share_count"`
	ImpressionCount int64 `gorm:"not null;default:0" json:"impression_count"`

	StatsSyncedAt *time.Time `json:"stats_synced_at,omitempty"`
	SyncedAt      time.Time  `gorm:"autoUpdateTime" json:"synced_at"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`

	Clip  *Clip  `gorm:"foreignKey:ClipID;constraint:OnDelete:SET NULL" json:"-"`
	Shoot *Shoot `gorm:"foreignKey:ShootID;constraint:OnDelete:SET NULL" json:"-"`
}

// EngagementRate is (likes+comments+shares)/views, zero when there are no views.
func (p *Post) EngagementRate() float64 {
	if p.ViewCount == 0 {
		return 0
	}
	return float64(p.LikeCount+p.CommentCount+p.ShareCount) / float64(p.ViewCount)
}

// IsOfficial reports whether the post is untracked channel content.
func (p *Post) IsOfficial() bool {
	return p.ClipID == nil
}
