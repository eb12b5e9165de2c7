package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/chmgroup/mediahub-backend/models"
)

// Official channel posts arrive without tags. The tagger extracts doctor names
// from post titles and descriptions, matches them to KOL groups with the same
// surname logic the shoot matcher uses, and inherits the tags of the clips
// belonging to the matched group's shoots.

// nameWord matches one capitalized name token, including apostrophe names
// like O'Shaughnessy.
const nameWord = `(?:[A-Z][a-z]*(?:['\x{2019}][A-Za-z]+)+|[A-Z][a-z]+)`

var (
	// "Dr. Mouabbi", "Dr. Jason Mouabbi", "Dr. VK Gadi" (initials then surname).
	reSingleDoctor = regexp.MustCompile(`Dr\.?\s+(?:[A-Z]{1,3}\s+)?(` + nameWord + `)(?:\s+(` + nameWord + `))?`)

	// "Drs. Hamilton, O'Shaughnessy & Chen" up to a dash or end of text.
	reDoctorList      = regexp.MustCompile(`Drs\.?\s+(.+?)(?:\s*[-\x{2013}\x{2014}]|\s*$)`)
	reDoctorListSplit = regexp.MustCompile(`[,&]|\band\b`)
	reNameWord        = regexp.MustCompile(nameWord)

	// Slash-joined surnames, the house style for titles like "Mouabbi/Rimawi".
	reSlashNames = regexp.MustCompile(`(\w+(?:/\w+)+)`)

	// "featuring Hamilton" or "with Mouabbi" without a Dr. prefix.
	reFeaturing = regexp.MustCompile(`(?:with|featuring|ft\.?)\s+([A-Z][a-z'\x{2019}]+)`)
	reDrSuffix  = regexp.MustCompile(`Dr\.?\s*$`)
)

// ExtractDoctorNamesFromText pulls candidate doctor surnames out of a post
// title or description. Non-name captures survive here; KOL matching filters
// them out later. Results are normalized, deduplicated and sorted.
func ExtractDoctorNamesFromText(text string) []string {
	if text == "" {
		return nil
	}
	seen := map[string]bool{}
	add := func(raw string) {
		n := NormalizeDoctorName(raw)
		if len(n) > 2 {
			seen[n] = true
		}
	}

	for _, m := range reSingleDoctor.FindAllStringSubmatch(text, -1) {
		add(m[1])
		if m[2] != "" {
			add(m[2])
		}
	}

	for _, m := range reDoctorList.FindAllStringSubmatch(text, -1) {
		for _, part := range reDoctorListSplit.Split(m[1], -1) {
			words := reNameWord.FindAllString(part, -1)
			if len(words) > 0 {
				add(words[len(words)-1])
			}
		}
	}

	for _, m := range reSlashNames.FindAllStringSubmatch(text, -1) {
		for _, part := range strings.Split(m[1], "/") {
			add(part)
		}
	}

	for _, idx := range reFeaturing.FindAllStringSubmatchIndex(text, -1) {
		if reDrSuffix.MatchString(text[:idx[0]]) {
			continue
		}
		add(text[idx[2]:idx[3]])
	}

	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// MatchPostToKOLGroup picks the KOL group whose surnames best overlap the
// doctor names found in the post's title and description. Nil when nothing
// matches.
func MatchPostToKOLGroup(post *models.Post, groups []models.KOLGroup) *models.KOLGroup {
	postSurnames := map[string]bool{}
	for _, s := range ExtractDoctorNamesFromText(post.Title + " " + post.Description) {
		postSurnames[s] = true
	}
	if len(postSurnames) == 0 {
		return nil
	}

	var best *models.KOLGroup
	bestCount := 0
	for i := range groups {
		group := &groups[i]
		groupSurnames := ExtractSurnamesFromGroupName(group.Name)
		for _, kol := range group.KOLs {
			if n := NormalizeDoctorName(kol.Name); n != "" {
				groupSurnames[n] = true
			}
		}

		count := 0
		for s := range postSurnames {
			if groupSurnames[s] {
				count++
			}
		}
		if count > bestCount {
			best = group
			bestCount = count
		}
	}
	return best
}

// GetTagsForKOLGroup returns the sorted union of tags across the clips of the
// group's shoots.
func GetTagsForKOLGroup(db *gorm.DB, groupID uuid.UUID) ([]string, error) {
	var rows []pq.StringArray
	err := db.Model(&models.Clip{}).
		Joins("JOIN shoots ON shoots.id = clips.shoot_id").
		Where("shoots.kol_group_id = ?", groupID).
		Where("clips.tags IS NOT NULL").
		Pluck("clips.tags", &rows).Error
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	for _, tags := range rows {
		for _, t := range tags {
			seen[t] = true
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out, nil
}

// PostTagStats summarizes one tagging pass.
type PostTagStats struct {
	TotalUntagged int `json:"total_untagged"`
	Matched       int `json:"matched"`
	Unmatched     int `json:"unmatched"`
	TagsApplied   int `json:"tags_applied"`
}

// TagOfficialPosts tags every official post (clip_id null) whose tags are
// still null. Posts that match no group get an empty tag array so they are
// not re-processed on the next pass.
func TagOfficialPosts(db *gorm.DB) (PostTagStats, error) {
	var stats PostTagStats

	var groups []models.KOLGroup
	if err := db.Preload("KOLs").Find(&groups).Error; err != nil {
		return stats, err
	}
	if len(groups) == 0 {
		return stats, nil
	}

	// Groups sharing a name share tags: only one of two same-named groups may
	// have shoots with tagged clips.
	nameTags := map[string]map[string]bool{}
	for i := range groups {
		tags, err := GetTagsForKOLGroup(db, groups[i].ID)
		if err != nil {
			return stats, err
		}
		set := nameTags[groups[i].Name]
		if set == nil {
			set = map[string]bool{}
			nameTags[groups[i].Name] = set
		}
		for _, t := range tags {
			set[t] = true
		}
	}
	groupTags := map[uuid.UUID][]string{}
	for i := range groups {
		set := nameTags[groups[i].Name]
		merged := make([]string, 0, len(set))
		for t := range set {
			merged = append(merged, t)
		}
		sort.Strings(merged)
		groupTags[groups[i].ID] = merged
	}

	// First shoot per group, used to backfill post.shoot_id on match.
	groupShoots := map[uuid.UUID]string{}
	for i := range groups {
		var ids []string
		err := db.Model(&models.Shoot{}).
			Where("kol_group_id = ?", groups[i].ID).
			Limit(1).
			Pluck("id", &ids).Error
		if err != nil {
			return stats, err
		}
		if len(ids) > 0 {
			groupShoots[groups[i].ID] = ids[0]
		}
	}

	var posts []models.Post
	if err := db.Where("clip_id IS NULL AND tags IS NULL").Find(&posts).Error; err != nil {
		return stats, err
	}
	stats.TotalUntagged = len(posts)

	for i := range posts {
		post := &posts[i]
		updates := map[string]interface{}{}

		if matched := MatchPostToKOLGroup(post, groups); matched != nil {
			tags := groupTags[matched.ID]
			updates["tags"] = pq.StringArray(tags)
			if post.ShootID == nil {
				if sid, ok := groupShoots[matched.ID]; ok {
					updates["shoot_id"] = sid
				}
			}
			stats.Matched++
			stats.TagsApplied += len(tags)
			logrus.WithFields(logrus.Fields{
				"post_id":   post.ID,
				"kol_group": matched.Name,
				"tags":      len(tags),
			}).Debug("post matched to KOL group")
		} else {
			updates["tags"] = pq.StringArray{}
			stats.Unmatched++
		}

		if err := db.Model(&models.Post{}).Where("id = ?", post.ID).Updates(updates).Error; err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// PropagateClipTagsToPosts copies tags from clips onto their linked posts
// where the post has none yet. Returns the number of posts updated.
func PropagateClipTagsToPosts(db *gorm.DB) (int64, error) {
	res := db.Exec(
		`UPDATE posts SET tags = clips.tags
		 FROM clips
		 WHERE posts.clip_id = clips.id
		   AND posts.tags IS NULL
		   AND clips.tags IS NOT NULL`)
	return res.RowsAffected, res.Error
}
