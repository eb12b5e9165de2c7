package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chmgroup/mediahub-backend/models"
)

// Sync payloads use pointer fields so a field that is absent from the JSON can
// be told apart from one sent as a zero value. Only present fields make it into
// the upsert assignment set; everything else on an existing row is left alone.

type ClipSyncData struct {
	ID          string         `json:"id" validate:"required"`
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Platform    *string        `json:"platform" validate:"omitempty,oneof=youtube linkedin x facebook instagram"`
	Status      *string        `json:"status" validate:"omitempty,oneof=draft ready scheduled published failed"`
	Tags        *[]string      `json:"tags"`
	Aspect      *string        `json:"aspect" validate:"omitempty,oneof=16:9 9:16 1:1"`
	Privacy     *string        `json:"privacy" validate:"omitempty,oneof=public private unlisted"`
	VideoPath   *string        `json:"video_path"`
	ShootID     *string        `json:"shoot_id" validate:"omitempty,uuid"`
	Raw         datatypes.JSON `json:"raw"`
}

type PostSyncData struct {
	ID             string  `json:"id" validate:"required,uuid"`
	ClipID         *string `json:"clip_id"`
	ShootID        *string `json:"shoot_id" validate:"omitempty,uuid"`
	Platform       string  `json:"platform" validate:"required"`
	ProviderPostID string  `json:"provider_post_id" validate:"required"`
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	PostedAt       *string `json:"posted_at"`

	Tags *[]string `json:"tags"`

	ViewCount       *int64 `json:"view_count" validate:"omitempty,gte=0"`
	LikeCount       *int64 `json:"like_count" validate:"omitempty,gte=0"`
	CommentCount    *int64 `json:"comment_count" validate:"omitempty,gte=0"`
	ShareCount      *int64 `json:"share_count" validate:"omitempty,gte=0"`
	ImpressionCount *int64 `json:"impression_count" validate:"omitempty,gte=0"`

	StatsSyncedAt *string `json:"stats_synced_at"`
}

type ShootSyncData struct {
	ID                 string    `json:"id" validate:"required,uuid"`
	Name               string    `json:"name" validate:"required"`
	Doctors            *[]string `json:"doctors"`
	ShootDate          *string   `json:"shoot_date"`
	DiarizedTranscript *string   `json:"diarized_transcript"`
}

type SyncRequest struct {
	Clips  []ClipSyncData  `json:"clips"`
	Posts  []PostSyncData  `json:"posts"`
	Shoots []ShootSyncData `json:"shoots"`
}

// SyncError identifies one rejected payload item.
type SyncError struct {
	EntityType string `json:"entity_type"`
	Key        string `json:"key"`
	Message    string `json:"message"`
}

type SyncResult struct {
	Success      bool        `json:"success"`
	ClipsSynced  int         `json:"clips_synced"`
	PostsSynced  int         `json:"posts_synced"`
	ShootsSynced int         `json:"shoots_synced"`
	Errors       []SyncError `json:"errors"`
}

var validate = validator.New()

// PostKey is the natural key used to report post validation errors.
func PostKey(d PostSyncData) string {
	if d.Platform != "" || d.ProviderPostID != "" {
		return d.Platform + ":" + d.ProviderPostID
	}
	return d.ID
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return fmt.Sprintf("field %s is invalid (%s)", strings.ToLower(e.Field()), e.Tag())
	}
	return err.Error()
}

func parseTimePtr(s *string, field string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := dateparse.ParseAny(*s)
	if err != nil {
		return nil, fmt.Errorf("field %s is not a valid timestamp", field)
	}
	utc := t.UTC()
	return &utc, nil
}

// BuildClipUpsert validates one clip item and produces the insert row plus the
// assignment set applied when the id already exists. Absent fields are not
// assigned, which is what makes re-syncs partial merges rather than replaces.
func BuildClipUpsert(d ClipSyncData) (models.Clip, map[string]interface{}, error) {
	if err := validate.Struct(d); err != nil {
		return models.Clip{}, nil, errors.New(formatValidationError(err))
	}

	row := models.Clip{
		ID:     d.ID,
		Status: models.ClipStatusDraft,
		Tags:   pq.StringArray{},
	}
	assign := map[string]interface{}{}

	if d.Title != nil {
		row.Title = *d.Title
		assign["title"] = *d.Title
	}
	if d.Description != nil {
		row.Description = *d.Description
		assign["description"] = *d.Description
	}
	if d.Platform != nil {
		row.Platform = *d.Platform
		assign["platform"] = *d.Platform
	}
	if d.Status != nil {
		row.Status = models.ClipStatus(*d.Status)
		assign["status"] = *d.Status
	}
	if d.Tags != nil {
		row.Tags = pq.StringArray(*d.Tags)
		assign["tags"] = pq.StringArray(*d.Tags)
	}
	if d.Aspect != nil {
		row.Aspect = *d.Aspect
		assign["aspect"] = *d.Aspect
	}
	if d.Privacy != nil {
		row.Privacy = *d.Privacy
		assign["privacy"] = *d.Privacy
	}
	if d.VideoPath != nil {
		row.VideoPath = *d.VideoPath
		assign["video_path"] = *d.VideoPath
	}
	if d.ShootID != nil {
		row.ShootID = d.ShootID
		assign["shoot_id"] = *d.ShootID
	}
	if d.Raw != nil {
		row.Raw = d.Raw
		assign["raw"] = d.Raw
	}
	return row, assign, nil
}

// BuildPostUpsert validates one post item. The conflict target is
// (platform, provider_post_id); the incoming id is only used on first insert
// and is never part of the assignment set.
func BuildPostUpsert(d PostSyncData) (models.Post, map[string]interface{}, error) {
	if err := validate.Struct(d); err != nil {
		return models.Post{}, nil, errors.New(formatValidationError(err))
	}

	postedAt, err := parseTimePtr(d.PostedAt, "posted_at")
	if err != nil {
		return models.Post{}, nil, err
	}
	statsSyncedAt, err := parseTimePtr(d.StatsSyncedAt, "stats_synced_at")
	if err != nil {
		return models.Post{}, nil, err
	}

	row := models.Post{
		ID:             d.ID,
		Platform:       d.Platform,
		ProviderPostID: d.ProviderPostID,
	}
	assign := map[string]interface{}{}

	if d.ClipID != nil {
		row.ClipID = d.ClipID
		assign["clip_id"] = *d.ClipID
	}
	if d.ShootID != nil {
		row.ShootID = d.ShootID
		assign["shoot_id"] = *d.ShootID
	}
	if d.Title != nil {
		row.Title = *d.Title
		assign["title"] = *d.Title
	}
	if d.Description != nil {
		row.Description = *d.Description
		assign["description"] = *d.Description
	}
	if postedAt != nil {
		row.PostedAt = postedAt
		assign["posted_at"] = *postedAt
	}
	if d.Tags != nil {
		row.Tags = pq.StringArray(*d.Tags)
		assign["tags"] = pq.StringArray(*d.Tags)
	}
	if d.ViewCount != nil {
		row.ViewCount = *d.ViewCount
		assign["view_count"] = *d.ViewCount
	}
	if d.LikeCount != nil {
		row.LikeCount = *d.LikeCount
		assign["like_count"] = *d.LikeCount
	}
	if d.CommentCount != nil {
		row.CommentCount = *d.CommentCount
		assign["comment_count"] = *d.CommentCount
	}
	if d.ShareCount != nil {
		row.ShareCount = *d.ShareCount
		assign["share_count"] = *d.ShareCount
	}
	if d.ImpressionCount != nil {
		row.ImpressionCount = *d.ImpressionCount
		assign["impression_count"] = *d.ImpressionCount
	}
	if statsSyncedAt != nil {
		row.StatsSyncedAt = statsSyncedAt
		assign["stats_synced_at"] = *statsSyncedAt
	}
	return row, assign, nil
}

// BuildShootUpsert validates one shoot item, same partial-merge rule as clips.
func BuildShootUpsert(d ShootSyncData) (models.Shoot, map[string]interface{}, error) {
	if err := validate.Struct(d); err != nil {
		return models.Shoot{}, nil, errors.New(formatValidationError(err))
	}

	shootDate, err := parseTimePtr(d.ShootDate, "shoot_date")
	if err != nil {
		return models.Shoot{}, nil, err
	}

	row := models.Shoot{
		ID:      d.ID,
		Name:    d.Name,
		Doctors: pq.StringArray{},
	}
	assign := map[string]interface{}{
		"name": d.Name,
	}

	if d.Doctors != nil {
		row.Doctors = pq.StringArray(*d.Doctors)
		assign["doctors"] = pq.StringArray(*d.Doctors)
	}
	if shootDate != nil {
		row.ShootDate = shootDate
		assign["shoot_date"] = *shootDate
	}
	if d.DiarizedTranscript != nil {
		row.DiarizedTranscript = *d.DiarizedTranscript
		assign["diarized_transcript"] = *d.DiarizedTranscript
	}
	return row, assign, nil
}

type SyncService struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewSyncService(db *gorm.DB) *SyncService {
	return &SyncService{
		db:  db,
		log: logrus.WithField("component", "sync"),
	}
}

// Sync processes one webhook batch. Each item is validated and upserted
// independently; a bad item goes into Errors and never aborts the rest.
// The upserts themselves are single ON CONFLICT statements so two deliveries
// racing on the same natural key cannot lose updates.
func (s *SyncService) Sync(req SyncRequest) SyncResult {
	res := SyncResult{Errors: []SyncError{}}
	now := time.Now().UTC()

	// Shoots first: clips and posts may reference them.
	var syncedShootIDs []string
	for _, d := range req.Shoots {
		row, assign, err := BuildShootUpsert(d)
		if err != nil {
			res.Errors = append(res.Errors, SyncError{EntityType: "shoot", Key: d.ID, Message: err.Error()})
			continue
		}
		assign["synced_at"] = now
		err = s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(assign),
		}).Create(&row).Error
		if err != nil {
			s.log.WithError(err).WithField("shoot_id", d.ID).Error("shoot upsert failed")
			res.Errors = append(res.Errors, SyncError{EntityType: "shoot", Key: d.ID, Message: "storage error"})
			continue
		}
		res.ShootsSynced++
		syncedShootIDs = append(syncedShootIDs, row.ID)
	}

	// Best-effort: link freshly synced shoots to KOL groups by doctor names.
	matched := 0
	for _, id := range syncedShootIDs {
		ok, err := AssignShootToKOLGroup(s.db, id)
		if err != nil {
			s.log.WithError(err).WithField("shoot_id", id).Warn("shoot KOL match failed")
			continue
		}
		if ok {
			matched++
		}
	}
	if matched > 0 {
		s.log.WithField("count", matched).Info("auto-matched shoots to KOL groups")
	}

	for _, d := range req.Clips {
		row, assign, err := BuildClipUpsert(d)
		if err != nil {
			res.Errors = append(res.Errors, SyncError{EntityType: "clip", Key: d.ID, Message: err.Error()})
			continue
		}
		assign["synced_at"] = now
		err = s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(assign),
		}).Create(&row).Error
		if err != nil {
			s.log.WithError(err).WithField("clip_id", d.ID).Error("clip upsert failed")
			res.Errors = append(res.Errors, SyncError{EntityType: "clip", Key: d.ID, Message: "storage error"})
			continue
		}
		res.ClipsSynced++
	}

	affectedClips := map[string]bool{}
	for _, d := range req.Posts {
		row, assign, err := BuildPostUpsert(d)
		if err != nil {
			res.Errors = append(res.Errors, SyncError{EntityType: "post", Key: PostKey(d), Message: err.Error()})
			continue
		}
		assign["synced_at"] = now
		err = s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "platform"}, {Name: "provider_post_id"}},
			DoUpdates: clause.Assignments(assign),
		}).Create(&row).Error
		if err != nil {
			s.log.WithError(err).WithField("post_key", PostKey(d)).Error("post upsert failed")
			res.Errors = append(res.Errors, SyncError{EntityType: "post", Key: PostKey(d), Message: "storage error"})
			continue
		}
		res.PostsSynced++
		if row.ClipID != nil {
			affectedClips[*row.ClipID] = true
		}
	}

	// Best-effort: fill in tags on posts touched by this batch. Branded posts
	// inherit their clip's tags; official posts are matched to KOL groups by
	// the doctor names in their titles.
	if res.PostsSynced > 0 {
		if n, err := PropagateClipTagsToPosts(s.db); err != nil {
			s.log.WithError(err).Warn("clip tag propagation failed")
		} else if n > 0 {
			s.log.WithField("count", n).Info("propagated clip tags to branded posts")
		}
		if stats, err := TagOfficialPosts(s.db); err != nil {
			s.log.WithError(err).Warn("official post tagging failed")
		} else if stats.Matched > 0 {
			s.log.WithFields(logrus.Fields{
				"matched":   stats.Matched,
				"unmatched": stats.Unmatched,
			}).Info("tagged official posts")
		}
	}

	// Refresh the denormalized earliest posted_at on clips touched by this batch.
	for clipID := range affectedClips {
		err := s.db.Exec(
			`UPDATE clips
			 SET earliest_posted_at = (
			     SELECT MIN(posted_at) FROM posts
			     WHERE clip_id = ? AND posted_at IS NOT NULL)
			 WHERE id = ?`,
			clipID, clipID,
		).Error
		if err != nil {
			s.log.WithError(err).WithField("clip_id", clipID).Warn("earliest_posted_at refresh failed")
		}
	}

	res.Success = len(res.Errors) == 0
	return res
}
