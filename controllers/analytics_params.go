package controllers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 100
)

// Sort keys accepted by the search endpoints, mapped to ORDER BY expressions.
// Anything outside these maps is rejected before touching the database.
var postSortColumns = map[string]string{
	"views":     "view_count DESC",
	"likes":     "like_count DESC",
	"comments":  "comment_count DESC",
	"posted_at": "posted_at DESC NULLS LAST",
	"title":     "LOWER(title) ASC",
}

var clipSortColumns = map[string]string{
	"views":     "total_views DESC",
	"likes":     "total_likes DESC",
	"comments":  "total_comments DESC",
	"posted_at": "clips.earliest_posted_at DESC NULLS LAST",
	"title":     "LOWER(clips.title) ASC",
}

// parseSourceParam validates the official/branded filter. Empty means both.
func parseSourceParam(raw string) (string, error) {
	switch raw {
	case "", "official", "branded":
		return raw, nil
	}
	return "", fmt.Errorf("source must be 'official' or 'branded'")
}

func applyPostSourceFilter(q *gorm.DB, source string) *gorm.DB {
	switch source {
	case "official":
		return q.Where("clip_id IS NULL")
	case "branded":
		return q.Where("clip_id IS NOT NULL")
	}
	return q
}

// parseTagsParam splits a comma separated tag list. Every tag must be a
// namespaced "kind:value" pair; matching is AND across all given tags.
func parseTagsParam(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t == "" {
			continue
		}
		kind, value, ok := strings.Cut(t, ":")
		if !ok || kind == "" || value == "" {
			return nil, fmt.Errorf("tag %q is not a 'kind:value' pair", t)
		}
		tags = append(tags, t)
	}
	return tags, nil
}

func parseLimitOffset(limitRaw, offsetRaw string) (int, int) {
	limit := defaultSearchLimit
	if limitRaw != "" {
		if n, err := strconv.Atoi(limitRaw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	offset := 0
	if offsetRaw != "" {
		if n, err := strconv.Atoi(offsetRaw); err == nil && n > 0 {
			offset = n
		}
	}
	return limit, offset
}

func parseDaysParam(raw string, def int) int {
	days := def
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			days = n
		}
	}
	if days < 1 {
		days = 1
	}
	if days > 365 {
		days = 365
	}
	return days
}

type TimelineEntry struct {
	Date      string `json:"date"`
	PostCount int64  `json:"post_count"`
	Views     int64  `json:"views"`
	Likes     int64  `json:"likes"`
}

type timelineRow struct {
	Day       time.Time
	PostCount int64
	Views     int64
	Likes     int64
}

// fillTimeline produces one bucket per calendar day ending at `end`,
// zero-filled where the query returned no rows.
func fillTimeline(end time.Time, days int, rows []timelineRow) []TimelineEntry {
	byDay := make(map[string]timelineRow, len(rows))
	for _, r := range rows {
		byDay[r.Day.UTC().Format("2006-01-02")] = r
	}

	start := end.UTC().Truncate(24*time.Hour).AddDate(0, 0, -(days - 1))
	out := make([]TimelineEntry, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		entry := TimelineEntry{Date: date}
		if r, ok := byDay[date]; ok {
			entry.PostCount = r.PostCount
			entry.Views = r.Views
			entry.Likes = r.Likes
		}
		out = append(out, entry)
	}
	return out
}
