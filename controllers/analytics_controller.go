package controllers

import (
	"database/sql"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/chmgroup/mediahub-backend/models"
	"github.com/chmgroup/mediahub-backend/services"
)

type platformStatsRow struct {
	Platform       string  `json:"platform"`
	PostCount      int64   `json:"post_count"`
	TotalViews     int64   `json:"total_views"`
	TotalLikes     int64   `json:"total_likes"`
	TotalComments  int64   `json:"total_comments"`
	TotalShares    int64   `json:"total_shares"`
	EngagementRate float64 `json:"engagement_rate"`
}

// AnalyticsSummary is the dashboard headline card: totals across all posts
// plus the freshest stats sync time.
func AnalyticsSummary(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	source, err := parseSourceParam(c.Query("source"))
	if err != nil {
		respondInvalidParam(c, "source", err.Error())
		return
	}
	q := applyPostSourceFilter(db.Model(&models.Post{}), source)

	var totals struct {
		PostCount        int64
		ClipCount        int64
		ShootCount       int64
		TotalViews       int64
		TotalLikes       int64
		TotalComments    int64
		TotalShares      int64
		TotalImpressions int64
	}
	q.Select(
		"COUNT(id) AS post_count",
		"COALESCE(SUM(view_count), 0) AS total_views",
		"COALESCE(SUM(like_count), 0) AS total_likes",
		"COALESCE(SUM(comment_count), 0) AS total_comments",
		"COALESCE(SUM(share_count), 0) AS total_shares",
		"COALESCE(SUM(impression_count), 0) AS total_impressions",
	).Scan(&totals)
	db.Model(&models.Clip{}).Count(&totals.ClipCount)
	db.Model(&models.Shoot{}).Count(&totals.ShootCount)

	rate := float64(0)
	if totals.TotalViews > 0 {
		rate = float64(totals.TotalLikes+totals.TotalComments+totals.TotalShares) / float64(totals.TotalViews)
	}

	var lastUpdated sql.NullTime
	db.Model(&models.Post{}).Select("MAX(stats_synced_at)").Scan(&lastUpdated)
	var lastUpdatedOut *time.Time
	if lastUpdated.Valid {
		t := lastUpdated.Time.UTC()
		lastUpdatedOut = &t
	}

	type countRow struct {
		Key   string
		Count int64
	}
	groupCounts := func(q *gorm.DB, column string) map[string]int64 {
		var rows []countRow
		q.Select(column + " AS key, COUNT(id) AS count").Group(column).Scan(&rows)
		out := make(map[string]int64, len(rows))
		for _, r := range rows {
			out[r.Key] = r.Count
		}
		return out
	}

	c.JSON(http.StatusOK, gin.H{
		"post_count":        totals.PostCount,
		"clip_count":        totals.ClipCount,
		"shoot_count":       totals.ShootCount,
		"clips_by_status":   groupCounts(db.Model(&models.Clip{}), "status"),
		"clips_by_platform": groupCounts(db.Model(&models.Clip{}), "platform"),
		"posts_by_platform": groupCounts(
			applyPostSourceFilter(db.Model(&models.Post{}), source), "platform"),
		"total_views":       totals.TotalViews,
		"total_likes":       totals.TotalLikes,
		"total_comments":    totals.TotalComments,
		"total_shares":      totals.TotalShares,
		"total_impressions": totals.TotalImpressions,
		"engagement_rate":   rate,
		"last_updated":      lastUpdatedOut,
	})
}

// AnalyticsPlatforms breaks totals down per platform, heaviest first.
func AnalyticsPlatforms(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	source, err := parseSourceParam(c.Query("source"))
	if err != nil {
		respondInvalidParam(c, "source", err.Error())
		return
	}

	var rows []platformStatsRow
	applyPostSourceFilter(db.Model(&models.Post{}), source).
		Select(
			"platform",
			"COUNT(id) AS post_count",
			"COALESCE(SUM(view_count), 0) AS total_views",
			"COALESCE(SUM(like_count), 0) AS total_likes",
			"COALESCE(SUM(comment_count), 0) AS total_comments",
			"COALESCE(SUM(share_count), 0) AS total_shares",
		).
		Group("platform").
		Order("total_views DESC, platform ASC").
		Scan(&rows)

	for i := range rows {
		if rows[i].TotalViews > 0 {
			rows[i].EngagementRate = float64(rows[i].TotalLikes+rows[i].TotalComments+rows[i].TotalShares) / float64(rows[i].TotalViews)
		}
	}
	if rows == nil {
		rows = []platformStatsRow{}
	}
	c.JSON(http.StatusOK, gin.H{"platforms": rows})
}

// AnalyticsTimeline buckets daily post activity over the trailing window.
// Days with no posts still appear, zeroed, so charts stay continuous.
func AnalyticsTimeline(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	source, err := parseSourceParam(c.Query("source"))
	if err != nil {
		respondInvalidParam(c, "source", err.Error())
		return
	}
	days := parseDaysParam(c.Query("days"), 30)

	now := time.Now().UTC()
	start := now.Truncate(24*time.Hour).AddDate(0, 0, -(days - 1))

	q := applyPostSourceFilter(db.Model(&models.Post{}), source)
	if platform := c.Query("platform"); platform != "" {
		q = q.Where("platform = ?", platform)
	}

	var rows []timelineRow
	q.Select(
		"DATE(posted_at) AS day",
		"COUNT(id) AS post_count",
		"COALESCE(SUM(view_count), 0) AS views",
		"COALESCE(SUM(like_count), 0) AS likes",
	).
		Where("posted_at IS NOT NULL AND posted_at >= ?", start).
		Group("DATE(posted_at)").
		Scan(&rows)

	c.JSON(http.StatusOK, gin.H{
		"days":     days,
		"timeline": fillTimeline(now, days, rows),
	})
}

// AnalyticsTrends returns a platform metric's daily high-water marks, taken
// from snapshot rows. The platform counters are cumulative, so MAX per day
// gives the end-of-day value.
func AnalyticsTrends(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	platform := c.Query("platform")
	metric := c.Query("metric_name")
	if platform == "" {
		respondInvalidParam(c, "platform", "platform is required")
		return
	}
	if metric == "" {
		respondInvalidParam(c, "metric_name", "metric_name is required")
		return
	}
	days := parseDaysParam(c.Query("days"), 30)
	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, -(days - 1))

	type trendRow struct {
		Date  string `json:"date"`
		Value int64  `json:"value"`
	}
	var rows []trendRow
	db.Model(&models.MetricSnapshot{}).
		Select("TO_CHAR(DATE(recorded_at), 'YYYY-MM-DD') AS date, MAX(metric_value) AS value").
		Where("platform = ? AND metric_name = ? AND recorded_at >= ?", platform, metric, start).
		Group("DATE(recorded_at)").
		Order("DATE(recorded_at) ASC").
		Scan(&rows)
	if rows == nil {
		rows = []trendRow{}
	}

	c.JSON(http.StatusOK, gin.H{
		"platform":    platform,
		"metric_name": metric,
		"days":        days,
		"points":      rows,
	})
}

// SearchPosts filters and pages through individual posts.
func SearchPosts(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	source, err := parseSourceParam(c.Query("source"))
	if err != nil {
		respondInvalidParam(c, "source", err.Error())
		return
	}
	tags, err := parseTagsParam(c.Query("tags"))
	if err != nil {
		respondInvalidParam(c, "tags", err.Error())
		return
	}
	sortBy := c.DefaultQuery("sort_by", "views")
	orderExpr, ok := postSortColumns[sortBy]
	if !ok {
		respondInvalidParam(c, "sort_by", fmt.Sprintf("unknown sort key %q", sortBy))
		return
	}
	limit, offset := parseLimitOffset(c.Query("limit"), c.Query("offset"))

	q := applyPostSourceFilter(db.Model(&models.Post{}), source)
	if search := c.Query("q"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("(title ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}
	if platform := c.Query("platform"); platform != "" {
		q = q.Where("platform = ?", platform)
	}
	if len(tags) > 0 {
		q = q.Where("tags @> ?", pq.StringArray(tags))
	}

	var total int64
	q.Count(&total)

	var posts []models.Post
	if err := q.Order(orderExpr).Limit(limit).Offset(offset).Find(&posts).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Search failed")
		return
	}
	if posts == nil {
		posts = []models.Post{}
	}

	c.JSON(http.StatusOK, gin.H{
		"posts":  posts,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// ClipSearchResult is a clip with its posts' aggregated performance.
type ClipSearchResult struct {
	models.Clip   `gorm:"embedded"`
	PostCount     int64         `json:"post_count"`
	TotalViews    int64         `json:"total_views"`
	TotalLikes    int64         `json:"total_likes"`
	TotalComments int64         `json:"total_comments"`
	Posts         []models.Post `gorm:"-" json:"posts"`
}

// SearchClips filters clips and folds each clip's post metrics into the row.
func SearchClips(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	tags, err := parseTagsParam(c.Query("tags"))
	if err != nil {
		respondInvalidParam(c, "tags", err.Error())
		return
	}
	sortBy := c.DefaultQuery("sort_by", "views")
	orderExpr, ok := clipSortColumns[sortBy]
	if !ok {
		respondInvalidParam(c, "sort_by", fmt.Sprintf("unknown sort key %q", sortBy))
		return
	}
	limit, offset := parseLimitOffset(c.Query("limit"), c.Query("offset"))

	sub := db.Model(&models.Post{}).
		Select(
			"clip_id",
			"COUNT(id) AS post_count",
			"COALESCE(SUM(view_count), 0) AS total_views",
			"COALESCE(SUM(like_count), 0) AS total_likes",
			"COALESCE(SUM(comment_count), 0) AS total_comments",
		).
		Where("clip_id IS NOT NULL").
		Group("clip_id")

	q := db.Table("clips").
		Select("clips.*, COALESCE(p.post_count, 0) AS post_count, COALESCE(p.total_views, 0) AS total_views, COALESCE(p.total_likes, 0) AS total_likes, COALESCE(p.total_comments, 0) AS total_comments").
		Joins("LEFT JOIN (?) p ON p.clip_id = clips.id", sub)

	if search := c.Query("q"); search != "" {
		pattern := "%" + search + "%"
		q = q.Where("(clips.title ILIKE ? OR clips.description ILIKE ?)", pattern, pattern)
	}
	if platform := c.Query("platform"); platform != "" {
		q = q.Where("clips.platform = ?", platform)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("clips.status = ?", status)
	}
	if len(tags) > 0 {
		q = q.Where("clips.tags @> ?", pq.StringArray(tags))
	}

	var total int64
	q.Count(&total)

	var results []ClipSearchResult
	if err := q.Order(orderExpr).Limit(limit).Offset(offset).Scan(&results).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Search failed")
		return
	}
	if results == nil {
		results = []ClipSearchResult{}
	}

	// Attach the posts behind each clip in one extra query.
	if len(results) > 0 {
		ids := make([]string, 0, len(results))
		for _, r := range results {
			ids = append(ids, r.Clip.ID)
		}
		var posts []models.Post
		db.Where("clip_id IN ?", ids).Order("view_count DESC").Find(&posts)
		byClip := make(map[string][]models.Post, len(results))
		for _, p := range posts {
			if p.ClipID != nil {
				byClip[*p.ClipID] = append(byClip[*p.ClipID], p)
			}
		}
		for i := range results {
			if list, ok := byClip[results[i].Clip.ID]; ok {
				results[i].Posts = list
			} else {
				results[i].Posts = []models.Post{}
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"clips":  results,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

type shootAggRow struct {
	ShootID       string
	ClipCount     int64
	PostCount     int64
	TotalViews    int64
	TotalLikes    int64
	TotalComments int64
}

func shootAggregates(db *gorm.DB) map[string]shootAggRow {
	var clipRows []struct {
		ShootID   string
		ClipCount int64
	}
	db.Model(&models.Clip{}).
		Select("shoot_id, COUNT(id) AS clip_count").
		Where("shoot_id IS NOT NULL").
		Group("shoot_id").
		Scan(&clipRows)

	var postRows []shootAggRow
	db.Model(&models.Post{}).
		Select(
			"shoot_id",
			"COUNT(id) AS post_count",
			"COALESCE(SUM(view_count), 0) AS total_views",
			"COALESCE(SUM(like_count), 0) AS total_likes",
			"COALESCE(SUM(comment_count), 0) AS total_comments",
		).
		Where("shoot_id IS NOT NULL").
		Group("shoot_id").
		Scan(&postRows)

	agg := make(map[string]shootAggRow)
	for _, r := range clipRows {
		a := agg[r.ShootID]
		a.ShootID = r.ShootID
		a.ClipCount = r.ClipCount
		agg[r.ShootID] = a
	}
	for _, r := range postRows {
		a := agg[r.ShootID]
		a.ShootID = r.ShootID
		a.PostCount = r.PostCount
		a.TotalViews = r.TotalViews
		a.TotalLikes = r.TotalLikes
		a.TotalComments = r.TotalComments
		agg[r.ShootID] = a
	}
	return agg
}

type shootSummary struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Doctors       []string   `json:"doctors"`
	ShootDate     *time.Time `json:"shoot_date,omitempty"`
	ProjectID     *uuid.UUID `json:"project_id,omitempty"`
	KOLGroupID    *uuid.UUID `json:"kol_group_id,omitempty"`
	HasTranscript bool       `json:"has_transcript"`
	ClipCount     int64      `json:"clip_count"`
	PostCount     int64      `json:"post_count"`
	TotalViews    int64      `json:"total_views"`
	TotalLikes    int64      `json:"total_likes"`
	TotalComments int64      `json:"total_comments"`
}

// AnalyticsShoots lists recording sessions with per-shoot rollups.
func AnalyticsShoots(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	sortBy := c.DefaultQuery("sort_by", "views")
	switch sortBy {
	case "views", "posts", "name":
	default:
		respondInvalidParam(c, "sort_by", fmt.Sprintf("unknown sort key %q", sortBy))
		return
	}

	var shoots []models.Shoot
	if err := db.Find(&shoots).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Query failed")
		return
	}
	agg := shootAggregates(db)

	out := make([]shootSummary, 0, len(shoots))
	for _, s := range shoots {
		a := agg[s.ID]
		out = append(out, shootSummary{
			ID:            s.ID,
			Name:          s.Name,
			Doctors:       s.Doctors,
			ShootDate:     s.ShootDate,
			ProjectID:     s.ProjectID,
			KOLGroupID:    s.KOLGroupID,
			HasTranscript: s.DiarizedTranscript != "",
			ClipCount:     a.ClipCount,
			PostCount:     a.PostCount,
			TotalViews:    a.TotalViews,
			TotalLikes:    a.TotalLikes,
			TotalComments: a.TotalComments,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		switch sortBy {
		case "posts":
			if out[i].PostCount != out[j].PostCount {
				return out[i].PostCount > out[j].PostCount
			}
		case "name":
			return out[i].Name < out[j].Name
		default:
			if out[i].TotalViews != out[j].TotalViews {
				return out[i].TotalViews > out[j].TotalViews
			}
		}
		return out[i].Name < out[j].Name
	})

	c.JSON(http.StatusOK, gin.H{"shoots": out})
}

// AnalyticsShootDetail returns one shoot with its clips and posts.
func AnalyticsShootDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	id := c.Param("id")

	var shoot models.Shoot
	if err := db.First(&shoot, "id = ?", id).Error; err != nil {
		respondError(c, http.StatusNotFound, "Shoot not found")
		return
	}

	var clips []models.Clip
	db.Where("shoot_id = ?", id).Find(&clips)
	var posts []models.Post
	db.Where("shoot_id = ?", id).Order("view_count DESC").Find(&posts)

	c.JSON(http.StatusOK, gin.H{
		"shoot":          shoot,
		"clips":          clips,
		"posts":          posts,
		"has_transcript": shoot.DiarizedTranscript != "",
	})
}

// AnalyticsShootTranscript serves the speaker-attributed transcript as JSON.
func AnalyticsShootTranscript(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	id := c.Param("id")

	var shoot models.Shoot
	if err := db.Select("id", "name", "diarized_transcript").First(&shoot, "id = ?", id).Error; err != nil {
		respondError(c, http.StatusNotFound, "Shoot not found")
		return
	}
	if shoot.DiarizedTranscript == "" {
		respondError(c, http.StatusNotFound, "Shoot has no transcript")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"shoot_id":   shoot.ID,
		"name":       shoot.Name,
		"transcript": shoot.DiarizedTranscript,
	})
}

// DownloadShootTranscript serves the transcript as a plain-text attachment.
func DownloadShootTranscript(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	id := c.Param("id")

	var shoot models.Shoot
	if err := db.Select("id", "name", "diarized_transcript").First(&shoot, "id = ?", id).Error; err != nil {
		respondError(c, http.StatusNotFound, "Shoot not found")
		return
	}
	if shoot.DiarizedTranscript == "" {
		respondError(c, http.StatusNotFound, "Shoot has no transcript")
		return
	}

	filename := fmt.Sprintf("transcript-%s.txt", shoot.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(shoot.DiarizedTranscript))
}

// AnalyticsDoctors rolls up performance per doctor across all shoots.
func AnalyticsDoctors(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var shoots []models.Shoot
	if err := db.Find(&shoots).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Query failed")
		return
	}
	agg := shootAggregates(db)

	type doctorStats struct {
		Name       string   `json:"name"`
		ShootCount int64    `json:"shoot_count"`
		ClipCount  int64    `json:"clip_count"`
		PostCount  int64    `json:"post_count"`
		TotalViews int64    `json:"total_views"`
		TotalLikes int64    `json:"total_likes"`
		Shoots     []string `json:"shoots"`
	}

	byDoctor := make(map[string]*doctorStats)
	for _, s := range shoots {
		a := agg[s.ID]
		for _, raw := range s.Doctors {
			key := services.NormalizeDoctorName(raw)
			if key == "" {
				continue
			}
			d, ok := byDoctor[key]
			if !ok {
				d = &doctorStats{Name: raw}
				byDoctor[key] = d
			}
			d.ShootCount++
			d.ClipCount += a.ClipCount
			d.PostCount += a.PostCount
			d.TotalViews += a.TotalViews
			d.TotalLikes += a.TotalLikes
			d.Shoots = append(d.Shoots, s.ID)
		}
	}

	out := make([]doctorStats, 0, len(byDoctor))
	for _, d := range byDoctor {
		out = append(out, *d)
	}
	// Heaviest reach first, then name for a stable order.
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalViews != out[j].TotalViews {
			return out[i].TotalViews > out[j].TotalViews
		}
		return out[i].Name < out[j].Name
	})
	c.JSON(http.StatusOK, gin.H{"doctors": out})
}
