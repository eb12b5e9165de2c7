package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/chmgroup/mediahub-backend/models"
)

func TestExtractDoctorNamesFromText(t *testing.T) {
	cases := []struct {
		text string
		want []string
	}{
		{"A Conversation with Dr. Mouabbi", []string{"mouabbi"}},
		{"Dr. Jason Mouabbi on treatment sequences", []string{"jason", "mouabbi"}},
		{"Q&A with Dr. VK Gadi", []string{"gadi"}},
		{"Drs. Hamilton, O'Shaughnessy & Chen - Panel", []string{"chen", "hamilton", "o'shaughnessy"}},
		{"Mouabbi/Rimawi Q3 Recap", []string{"mouabbi", "rimawi"}},
		{"Highlights featuring Hamilton", []string{"hamilton"}},
		{"No doctors here", nil},
		{"", nil},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExtractDoctorNamesFromText(tc.text), "text: %q", tc.text)
	}
}

func TestExtractDoctorNamesIgnoresShortFragments(t *testing.T) {
	// Two-letter surnames are below the match threshold.
	assert.Nil(t, ExtractDoctorNamesFromText("Interview with Dr. Ng"))
}

func TestMatchPostToKOLGroupByName(t *testing.T) {
	groups := []models.KOLGroup{
		{ID: uuid.New(), Name: "Mouabbi/Rimawi"},
		{ID: uuid.New(), Name: "Hamilton & O'Shaughnessy"},
	}

	post := &models.Post{Title: "Dr. Mouabbi on CDK4/6 inhibitors"}
	got := MatchPostToKOLGroup(post, groups)
	if assert.NotNil(t, got) {
		assert.Equal(t, "Mouabbi/Rimawi", got.Name)
	}
}

func TestMatchPostToKOLGroupByMemberName(t *testing.T) {
	groups := []models.KOLGroup{
		{ID: uuid.New(), Name: "Breast Oncology Round Table",
			KOLs: []models.KOL{{Name: "Sarah Chen, MD"}}},
	}

	post := &models.Post{Title: "Highlights featuring Chen"}
	got := MatchPostToKOLGroup(post, groups)
	if assert.NotNil(t, got) {
		assert.Equal(t, "Breast Oncology Round Table", got.Name)
	}
}

func TestMatchPostToKOLGroupPrefersMoreOverlap(t *testing.T) {
	groups := []models.KOLGroup{
		{ID: uuid.New(), Name: "Mouabbi/Nanda"},
		{ID: uuid.New(), Name: "Mouabbi/Rimawi"},
	}

	post := &models.Post{Title: "Mouabbi/Rimawi session", Description: "with Dr. Rimawi"}
	got := MatchPostToKOLGroup(post, groups)
	if assert.NotNil(t, got) {
		assert.Equal(t, "Mouabbi/Rimawi", got.Name)
	}
}

func TestMatchPostToKOLGroupNoNames(t *testing.T) {
	groups := []models.KOLGroup{{ID: uuid.New(), Name: "Mouabbi/Rimawi"}}
	post := &models.Post{Title: "Quarterly channel update"}
	assert.Nil(t, MatchPostToKOLGroup(post, groups))
}

func TestBuildPostUpsertAssignsTags(t *testing.T) {
	d := PostSyncData{
		ID:             "6a1f1c1e-0000-4000-8000-000000000001",
		Platform:       "youtube",
		ProviderPostID: "yt-1",
		Tags:           strsPtr([]string{"breast-cancer", "cdk4-6"}),
	}
	row, assign, err := BuildPostUpsert(d)
	assert.NoError(t, err)
	assert.Equal(t, []string{"breast-cancer", "cdk4-6"}, []string(row.Tags))
	assert.Contains(t, assign, "tags")
}

func TestBuildPostUpsertLeavesTagsAloneWhenAbsent(t *testing.T) {
	d := PostSyncData{
		ID:             "6a1f1c1e-0000-4000-8000-000000000002",
		Platform:       "youtube",
		ProviderPostID: "yt-2",
	}
	_, assign, err := BuildPostUpsert(d)
	assert.NoError(t, err)
	assert.NotContains(t, assign, "tags")
}
