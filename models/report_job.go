package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// CanTransitionTo enforces the forward-only state machine:
// pending -> processing -> {completed | failed}. A failed job stays failed;
// resubmission means a new job.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	switch s {
	case JobStatusPending:
		return next == JobStatusProcessing || next == JobStatusCompleted || next == JobStatusFailed
	case JobStatusProcessing:
		return next == JobStatusCompleted || next == JobStatusFailed
	}
	return false
}

// ReportJob tracks one report generation run. Only the external pipeline's
// callback mutates status after creation; users never delete jobs.
type ReportJob struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Status JobStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	// Event name, date, speakers and the rest of the generation request.
	Config datatypes.JSON `gorm:"type:jsonb" json:"config"`

	TranscriptPath string `gorm:"size:500" json:"-"`
	SurveyPath     string `gorm:"size:500" json:"-"`
	OutputPath     string `gorm:"size:500" json:"output_path,omitempty"`
	ErrorMessage   string `gorm:"type:text" json:"error,omitempty"`

	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
