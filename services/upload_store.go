package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/chmgroup/mediahub-backend/config"
)

// Redis-backed metadata for report input files and job progress. Files expire
// after a day: uploads only need to live long enough to start a job.

const (
	uploadKeyPrefix   = "mediahub:files:"
	uploadListKey     = "mediahub:files_list"
	progressKeyPrefix = "mediahub:progress:"

	uploadTTL   = 24 * time.Hour
	progressTTL = time.Hour
)

var ErrRedisUnavailable = errors.New("redis is not configured")

type UploadedFile struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	FileType     string    `json:"file_type"` // "transcript" or "survey"
	Path         string    `json:"path"`
	UploadedBy   string    `json:"uploaded_by"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

type JobProgress struct {
	Status    string    `json:"status"`
	Progress  float64   `json:"progress"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func SaveUpload(ctx context.Context, f UploadedFile) error {
	if config.Redis == nil {
		return ErrRedisUnavailable
	}
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	if err := config.Redis.Set(ctx, uploadKeyPrefix+f.ID, data, uploadTTL).Err(); err != nil {
		return err
	}
	if err := config.Redis.ZAdd(ctx, uploadListKey, &redis.Z{
		Score:  float64(f.UploadedAt.Unix()),
		Member: f.ID,
	}).Err(); err != nil {
		return err
	}
	return config.Redis.Expire(ctx, uploadListKey, uploadTTL).Err()
}

func GetUpload(ctx context.Context, id string) (*UploadedFile, error) {
	if config.Redis == nil {
		return nil, ErrRedisUnavailable
	}
	data, err := config.Redis.Get(ctx, uploadKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var f UploadedFile
	if err := json.Unmarshal([]byte(data), &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// ListUploads returns upload metadata, newest first.
func ListUploads(ctx context.Context, limit int64) ([]UploadedFile, error) {
	if config.Redis == nil {
		return nil, ErrRedisUnavailable
	}
	ids, err := config.Redis.ZRevRange(ctx, uploadListKey, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	files := make([]UploadedFile, 0, len(ids))
	for _, id := range ids {
		f, err := GetUpload(ctx, id)
		if err != nil {
			return nil, err
		}
		if f != nil {
			files = append(files, *f)
		}
	}
	return files, nil
}

func SaveJobProgress(ctx context.Context, jobID string, p JobProgress) error {
	if config.Redis == nil {
		return ErrRedisUnavailable
	}
	p.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return config.Redis.Set(ctx, progressKeyPrefix+jobID, data, progressTTL).Err()
}

func GetJobProgress(ctx context.Context, jobID string) (*JobProgress, error) {
	if config.Redis == nil {
		return nil, ErrRedisUnavailable
	}
	data, err := config.Redis.Get(ctx, progressKeyPrefix+jobID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p JobProgress
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, err
	}
	return &p, nil
}
