package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chmgroup/mediahub-backend/models"
)

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }

func strsPtr(s []string) *[]string { return &s }

func TestBuildClipUpsertPartialFields(t *testing.T) {
	row, assign, err := BuildClipUpsert(ClipSyncData{
		ID:    "youtube:abc123",
		Title: strPtr("New title"),
	})
	require.NoError(t, err)

	assert.Equal(t, "youtube:abc123", row.ID)
	assert.Equal(t, "New title", row.Title)
	assert.Equal(t, models.ClipStatusDraft, row.Status)

	// Absent fields must stay out of the assignment set so an existing row
	// keeps its values on re-sync.
	assert.Equal(t, map[string]interface{}{"title": "New title"}, assign)
}

func TestBuildClipUpsertAllFields(t *testing.T) {
	_, assign, err := BuildClipUpsert(ClipSyncData{
		ID:       "youtube:abc123",
		Title:    strPtr("t"),
		Platform: strPtr("youtube"),
		Status:   strPtr("published"),
		Tags:     strsPtr([]string{"product:zeta", "campaign:q3"}),
		Aspect:   strPtr("9:16"),
		Privacy:  strPtr("public"),
	})
	require.NoError(t, err)
	assert.Len(t, assign, 6)
	assert.Contains(t, assign, "tags")
	assert.Contains(t, assign, "status")
}

func TestBuildClipUpsertRejectsUnknownPlatform(t *testing.T) {
	_, _, err := BuildClipUpsert(ClipSyncData{
		ID:       "c1",
		Platform: strPtr("myspace"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "platform")
}

func TestBuildClipUpsertRejectsMissingID(t *testing.T) {
	_, _, err := BuildClipUpsert(ClipSyncData{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id")
}

func TestBuildPostUpsertAssignmentsNeverTouchIdentity(t *testing.T) {
	d := PostSyncData{
		ID:             "a2f5c7d0-1111-4222-8333-444455556666",
		Platform:       "youtube",
		ProviderPostID: "yt_987",
		Title:          strPtr("Video"),
		ViewCount:      int64Ptr(1500),
		LikeCount:      int64Ptr(42),
	}
	row, assign, err := BuildPostUpsert(d)
	require.NoError(t, err)

	assert.Equal(t, d.ID, row.ID)
	assert.NotContains(t, assign, "id")
	assert.NotContains(t, assign, "platform")
	assert.NotContains(t, assign, "provider_post_id")
	assert.Equal(t, int64(1500), assign["view_count"])
	assert.Equal(t, int64(42), assign["like_count"])
	assert.NotContains(t, assign, "comment_count")
}

func TestBuildPostUpsertRejectsNegativeCounter(t *testing.T) {
	_, _, err := BuildPostUpsert(PostSyncData{
		ID:             "a2f5c7d0-1111-4222-8333-444455556666",
		Platform:       "youtube",
		ProviderPostID: "yt_987",
		ViewCount:      int64Ptr(-1),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "viewcount")
}

func TestBuildPostUpsertRejectsBadTimestamp(t *testing.T) {
	_, _, err := BuildPostUpsert(PostSyncData{
		ID:             "a2f5c7d0-1111-4222-8333-444455556666",
		Platform:       "youtube",
		ProviderPostID: "yt_987",
		PostedAt:       strPtr("not-a-date"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "posted_at")
}

func TestBuildPostUpsertIsDeterministic(t *testing.T) {
	d := PostSyncData{
		ID:             "a2f5c7d0-1111-4222-8333-444455556666",
		Platform:       "linkedin",
		ProviderPostID: "li_1",
		ViewCount:      int64Ptr(10),
		PostedAt:       strPtr("2026-05-01T12:00:00Z"),
	}
	_, first, err := BuildPostUpsert(d)
	require.NoError(t, err)
	_, second, err := BuildPostUpsert(d)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildShootUpsertAlwaysAssignsName(t *testing.T) {
	_, assign, err := BuildShootUpsert(ShootSyncData{
		ID:   "b2f5c7d0-1111-4222-8333-444455556666",
		Name: "Cardiology Shoot",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"name": "Cardiology Shoot"}, assign)
}

func TestBuildShootUpsertRequiresName(t *testing.T) {
	_, _, err := BuildShootUpsert(ShootSyncData{
		ID: "b2f5c7d0-1111-4222-8333-444455556666",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestParseTimePtr(t *testing.T) {
	got, err := parseTimePtr(strPtr("2026-05-01T12:00:00+07:00"), "posted_at")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 5, got.UTC().Hour())

	got, err = parseTimePtr(nil, "posted_at")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseTimePtr(strPtr(""), "posted_at")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseTimePtr(strPtr("garbage"), "posted_at")
	require.Error(t, err)
}

func TestPostKey(t *testing.T) {
	assert.Equal(t, "youtube:yt_1", PostKey(PostSyncData{Platform: "youtube", ProviderPostID: "yt_1"}))
	assert.Equal(t, "some-id", PostKey(PostSyncData{ID: "some-id"}))
}
