package controllers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSourceParam(t *testing.T) {
	for _, valid := range []string{"", "official", "branded"} {
		got, err := parseSourceParam(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, got)
	}

	_, err := parseSourceParam("paid")
	assert.Error(t, err)
}

func TestParseTagsParam(t *testing.T) {
	tags, err := parseTagsParam("product:zeta, campaign:q3-launch")
	require.NoError(t, err)
	assert.Equal(t, []string{"product:zeta", "campaign:q3-launch"}, tags)

	tags, err = parseTagsParam("")
	require.NoError(t, err)
	assert.Nil(t, tags)

	_, err = parseTagsParam("zeta")
	assert.Error(t, err)

	_, err = parseTagsParam("product:")
	assert.Error(t, err)

	_, err = parseTagsParam(":zeta")
	assert.Error(t, err)
}

func TestParseLimitOffset(t *testing.T) {
	limit, offset := parseLimitOffset("", "")
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)

	limit, _ = parseLimitOffset("25", "")
	assert.Equal(t, 25, limit)

	// Caller cannot exceed the cap.
	limit, _ = parseLimitOffset("500", "")
	assert.Equal(t, 100, limit)

	limit, offset = parseLimitOffset("-3", "-7")
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)
}

func TestParseDaysParam(t *testing.T) {
	assert.Equal(t, 30, parseDaysParam("", 30))
	assert.Equal(t, 7, parseDaysParam("7", 30))
	assert.Equal(t, 1, parseDaysParam("0", 30))
	assert.Equal(t, 365, parseDaysParam("9999", 30))
	assert.Equal(t, 30, parseDaysParam("abc", 30))
}

func TestPostSortWhitelist(t *testing.T) {
	for _, key := range []string{"views", "likes", "comments", "posted_at", "title"} {
		_, ok := postSortColumns[key]
		assert.True(t, ok, "post sort key %s", key)
		_, ok = clipSortColumns[key]
		assert.True(t, ok, "clip sort key %s", key)
	}
	_, ok := postSortColumns["password_hash"]
	assert.False(t, ok)
}

func TestFillTimelineZeroFills(t *testing.T) {
	end := time.Date(2026, 5, 7, 15, 30, 0, 0, time.UTC)
	rows := []timelineRow{
		{Day: time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC), PostCount: 2, Views: 100, Likes: 9},
		{Day: time.Date(2026, 5, 7, 0, 0, 0, 0, time.UTC), PostCount: 1, Views: 40, Likes: 3},
	}

	out := fillTimeline(end, 7, rows)
	require.Len(t, out, 7)

	assert.Equal(t, "2026-05-01", out[0].Date)
	assert.Equal(t, "2026-05-07", out[6].Date)

	// Days without posts appear as zero buckets.
	assert.Equal(t, int64(0), out[0].PostCount)
	assert.Equal(t, int64(2), out[2].PostCount)
	assert.Equal(t, int64(100), out[2].Views)
	assert.Equal(t, int64(1), out[6].PostCount)
	assert.Equal(t, int64(40), out[6].Views)
}

func TestFillTimelineEmptyRows(t *testing.T) {
	out := fillTimeline(time.Date(2026, 5, 7, 0, 0, 0, 0, time.UTC), 3, nil)
	require.Len(t, out, 3)
	for _, entry := range out {
		assert.Zero(t, entry.PostCount)
		assert.Zero(t, entry.Views)
	}
}
