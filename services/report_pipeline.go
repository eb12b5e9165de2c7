package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/chmgroup/mediahub-backend/models"
	"github.com/chmgroup/mediahub-backend/ws"
)

// The report pipeline is an external process. This service only hands a job
// off and returns; the pipeline reports progress and completion back through
// the callback endpoint.

var pipelineHTTP = &http.Client{Timeout: 30 * time.Second}

type pipelineRequest struct {
	JobID          string          `json:"job_id"`
	Config         json.RawMessage `json:"config"`
	TranscriptPath string          `json:"transcript_path"`
	SurveyPath     string          `json:"survey_path"`
	CallbackURL    string          `json:"callback_url"`
}

// DispatchReportJob sends the job to the external pipeline. Run it in a
// goroutine: the generate endpoint must not block on the pipeline. If the
// handoff itself fails the job is marked failed right away.
func DispatchReportJob(db *gorm.DB, job models.ReportJob) {
	log := logrus.WithField("job_id", job.ID.String())

	baseURL := os.Getenv("REPORT_PIPELINE_URL")
	if baseURL == "" {
		markJobFailed(db, job, "report pipeline is not configured")
		return
	}

	selfURL := os.Getenv("SELF_URL")
	if selfURL == "" {
		selfURL = "http://localhost:8080"
	}

	req := pipelineRequest{
		JobID:          job.ID.String(),
		Config:         json.RawMessage(job.Config),
		TranscriptPath: job.TranscriptPath,
		SurveyPath:     job.SurveyPath,
		CallbackURL:    fmt.Sprintf("%s/reports/jobs/%s/callback", selfURL, job.ID.String()),
	}
	body, err := json.Marshal(req)
	if err != nil {
		markJobFailed(db, job, "failed to encode pipeline request")
		return
	}

	resp, err := pipelineHTTP.Post(baseURL+"/generate", "application/json", bytes.NewReader(body))
	if err != nil {
		log.WithError(err).Error("pipeline handoff failed")
		markJobFailed(db, job, "report pipeline is unavailable")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		log.WithField("status", resp.StatusCode).WithField("body", string(respBody)).
			Error("pipeline rejected job")
		markJobFailed(db, job, "report pipeline rejected the job")
		return
	}

	log.Info("report job handed off to pipeline")
}

func markJobFailed(db *gorm.DB, job models.ReportJob, msg string) {
	now := time.Now().UTC()
	db.Model(&models.ReportJob{}).Where("id = ?", job.ID).Updates(map[string]interface{}{
		"status":        models.JobStatusFailed,
		"error_message": msg,
		"completed_at":  now,
	})
	ws.SendJobProgress(job.ID.String(), string(models.JobStatusFailed), 0, msg)
}
