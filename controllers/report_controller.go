package controllers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/chmgroup/mediahub-backend/config"
	"github.com/chmgroup/mediahub-backend/models"
	"github.com/chmgroup/mediahub-backend/services"
	"github.com/chmgroup/mediahub-backend/utils"
	"github.com/chmgroup/mediahub-backend/ws"
)

const maxUploadBytes = 50 << 20

var allowedUploadExts = map[string]string{
	".pdf":  "transcript",
	".txt":  "transcript",
	".vtt":  "transcript",
	".srt":  "transcript",
	".docx": "transcript",
	".csv":  "survey",
	".xls":  "survey",
	".xlsx": "survey",
}

func uploadDir() string {
	dir := os.Getenv("UPLOAD_DIR")
	if dir == "" {
		dir = "uploads"
	}
	return dir
}

// UploadReportFile stores a transcript or survey file for later generation.
// PDFs are sniffed to make sure they actually contain extractable text.
func UploadReportFile(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "A 'file' form field is required")
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "File exceeds the 50MB limit")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	fileType, ok := allowedUploadExts[ext]
	if !ok {
		respondInvalidParam(c, "file", "unsupported file type: use .pdf/.txt/.vtt/.srt/.docx for transcripts, .csv/.xls/.xlsx for surveys")
		return
	}

	if ext == ".pdf" {
		text, err := services.ExtractTextFromPDF(file)
		if err != nil || strings.TrimSpace(text) == "" {
			respondInvalidParam(c, "file", "PDF contains no extractable text")
			return
		}
		if _, err := file.Seek(0, 0); err != nil {
			respondError(c, http.StatusInternalServerError, "Could not read upload")
			return
		}
	}

	id := uuid.New().String()
	if err := os.MkdirAll(uploadDir(), 0o755); err != nil {
		respondError(c, http.StatusInternalServerError, "Could not store upload")
		return
	}
	dst := filepath.Join(uploadDir(), id+ext)
	if err := c.SaveUploadedFile(header, dst); err != nil {
		respondError(c, http.StatusInternalServerError, "Could not store upload")
		return
	}

	uploaded := services.UploadedFile{
		ID:           id,
		OriginalName: header.Filename,
		FileType:     fileType,
		Path:         dst,
		UploadedBy:   c.MustGet("user_id").(string),
		UploadedAt:   time.Now().UTC(),
	}
	if err := services.SaveUpload(c.Request.Context(), uploaded); err != nil {
		respondError(c, http.StatusServiceUnavailable, "Upload store is unavailable")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"file": uploaded})
}

func ListReportUploads(c *gin.Context) {
	files, err := services.ListUploads(c.Request.Context(), 100)
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "Upload store is unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

type GenerateReportInput struct {
	TranscriptFileID string          `json:"transcript_file_id" binding:"required"`
	SurveyFileID     string          `json:"survey_file_id" binding:"required"`
	Config           json.RawMessage `json:"config"`
}

// fetchReportInput resolves one referenced upload and checks that the caller
// owns it and that its type matches the role it was referenced as.
func fetchReportInput(c *gin.Context, fileID, fileType, field string) (*services.UploadedFile, bool) {
	file, err := services.GetUpload(c.Request.Context(), fileID)
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "Upload store is unavailable")
		return nil, false
	}
	if file == nil {
		respondError(c, http.StatusNotFound, "File not found: "+field)
		return nil, false
	}
	userID := c.MustGet("user_id").(string)
	if file.UploadedBy != userID && !callerRole(c).AtLeast(models.RoleAdmin) {
		respondError(c, http.StatusForbidden, "You can only generate from your own uploads")
		return nil, false
	}
	if file.FileType != fileType {
		respondInvalidParam(c, field, "file is a "+file.FileType+" upload, expected "+fileType)
		return nil, false
	}
	return file, true
}

// GenerateReport creates a pending job and hands it to the external pipeline
// without blocking the request.
func GenerateReport(c *gin.Context) {
	var input GenerateReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "transcript_file_id and survey_file_id are required")
		return
	}

	userID := c.MustGet("user_id").(string)

	transcript, ok := fetchReportInput(c, input.TranscriptFileID, "transcript", "transcript_file_id")
	if !ok {
		return
	}
	survey, ok := fetchReportInput(c, input.SurveyFileID, "survey", "survey_file_id")
	if !ok {
		return
	}

	owner, err := uuid.Parse(userID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Invalid session")
		return
	}

	cfg := input.Config
	if len(cfg) == 0 {
		cfg = json.RawMessage("{}")
	}

	job := models.ReportJob{
		UserID:         owner,
		Status:         models.JobStatusPending,
		Config:         datatypes.JSON(cfg),
		TranscriptPath: transcript.Path,
		SurveyPath:     survey.Path,
	}
	if err := config.DB.Create(&job).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Could not create job")
		return
	}

	go services.DispatchReportJob(config.DB, job)

	c.JSON(http.StatusAccepted, gin.H{"job": job})
}

func callerRole(c *gin.Context) models.UserRole {
	return models.UserRole(c.MustGet("role").(string))
}

// ListReportJobs shows the caller's jobs; admins see everyone's.
func ListReportJobs(c *gin.Context) {
	q := config.DB.Model(&models.ReportJob{})
	if !callerRole(c).AtLeast(models.RoleAdmin) {
		q = q.Where("user_id = ?", c.MustGet("user_id").(string))
	}

	var jobs []models.ReportJob
	if err := q.Order("created_at DESC").Limit(100).Find(&jobs).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Query failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs})
}

func loadJobForCaller(c *gin.Context) (*models.ReportJob, bool) {
	var job models.ReportJob
	if err := config.DB.First(&job, "id = ?", c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "Job not found")
		return nil, false
	}
	if job.UserID.String() != c.MustGet("user_id").(string) && !callerRole(c).AtLeast(models.RoleAdmin) {
		respondError(c, http.StatusNotFound, "Job not found")
		return nil, false
	}
	return &job, true
}

func GetReportJob(c *gin.Context) {
	job, ok := loadJobForCaller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"job": job})
}

// GetReportJobStatus merges the durable row with live pipeline progress.
func GetReportJobStatus(c *gin.Context) {
	job, ok := loadJobForCaller(c)
	if !ok {
		return
	}

	resp := gin.H{
		"id":     job.ID,
		"status": job.Status,
		"error":  job.ErrorMessage,
	}
	if progress, err := services.GetJobProgress(c.Request.Context(), job.ID.String()); err == nil && progress != nil {
		resp["progress"] = progress.Progress
		resp["message"] = progress.Message
		resp["updated_at"] = progress.UpdatedAt
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadReport serves the generated document for completed jobs only.
func DownloadReport(c *gin.Context) {
	job, ok := loadJobForCaller(c)
	if !ok {
		return
	}
	if job.Status != models.JobStatusCompleted || job.OutputPath == "" {
		respondError(c, http.StatusConflict, "Report is not ready")
		return
	}

	if strings.HasPrefix(job.OutputPath, "http://") || strings.HasPrefix(job.OutputPath, "https://") {
		c.Redirect(http.StatusFound, job.OutputPath)
		return
	}
	if _, err := os.Stat(job.OutputPath); err != nil {
		respondError(c, http.StatusNotFound, "Report file is missing")
		return
	}
	c.FileAttachment(job.OutputPath, filepath.Base(job.OutputPath))
}

func DeleteReportJob(c *gin.Context) {
	var job models.ReportJob
	if err := config.DB.First(&job, "id = ?", c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "Job not found")
		return
	}
	if err := config.DB.Delete(&job).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type jobCallbackInput struct {
	Status     string  `json:"status" binding:"required"`
	Progress   float64 `json:"progress"`
	Message    string  `json:"message"`
	OutputPath string  `json:"output_path"`
	Error      string  `json:"error"`
}

// ReportJobCallback is hit by the external pipeline. It enforces the
// forward-only state machine and fans progress out to websocket watchers.
func ReportJobCallback(c *gin.Context) {
	var input jobCallbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "status is required")
		return
	}

	next := models.JobStatus(input.Status)
	if !next.Valid() {
		respondInvalidParam(c, "status", "unknown job status")
		return
	}

	var job models.ReportJob
	if err := config.DB.First(&job, "id = ?", c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "Job not found")
		return
	}

	log := logrus.WithField("job_id", job.ID.String())

	if next != job.Status {
		if !job.Status.CanTransitionTo(next) {
			respondError(c, http.StatusConflict, "Job cannot move to that status")
			return
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{"status": next}
		switch next {
		case models.JobStatusProcessing:
			updates["started_at"] = now
		case models.JobStatusCompleted:
			updates["completed_at"] = now
			outputPath := input.OutputPath
			if utils.SupabaseConfigured() && outputPath != "" {
				if url, err := utils.UploadReportToSupabase(outputPath, job.ID.String()); err == nil {
					outputPath = url
				} else {
					log.WithError(err).Warn("report mirror to supabase failed")
				}
			}
			updates["output_path"] = outputPath
		case models.JobStatusFailed:
			updates["completed_at"] = now
			updates["error_message"] = input.Error
		}
		if err := config.DB.Model(&job).Updates(updates).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "Update failed")
			return
		}
	}

	progress := services.JobProgress{
		Status:    string(next),
		Progress:  input.Progress,
		Message:   input.Message,
		UpdatedAt: time.Now().UTC(),
	}
	if err := services.SaveJobProgress(c.Request.Context(), job.ID.String(), progress); err != nil {
		log.WithError(err).Debug("progress store unavailable")
	}
	ws.SendJobProgress(job.ID.String(), string(next), input.Progress, input.Error)

	c.JSON(http.StatusOK, gin.H{"success": true})
}
