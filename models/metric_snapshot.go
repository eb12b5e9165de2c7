package models

import (
	"time"

	"github.com/google/uuid"
)

// MetricSnapshot is an append-only point-in-time sample of an account-level
// metric (subscriber_count, follower_count, ...). One row per metric per sync
// cycle; the trends endpoint reads these, never posts.
type MetricSnapshot struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Platform    string    `gorm:"size:50;not null;index:idx_snapshots_platform_metric" json:"platform"`
	MetricName  string    `gorm:"size:100;not null;index:idx_snapshots_platform_metric" json:"metric_name"`
	MetricValue int64     `gorm:"not null;default:0" json:"metric_value"`
	RecordedAt  time.Time `gorm:"not null;index" json:"recorded_at"`
}
