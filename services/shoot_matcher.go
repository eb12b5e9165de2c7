package services

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/chmgroup/mediahub-backend/models"
)

// NormalizeDoctorName reduces a doctor's display name to a lowercase surname
// for fuzzy matching: "Dr. Jane Mouabbi" -> "mouabbi".
func NormalizeDoctorName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	lower := strings.ToLower(name)
	lower = strings.TrimPrefix(lower, "drs.")
	lower = strings.TrimPrefix(lower, "dr.")
	lower = strings.TrimPrefix(lower, "dr ")
	lower = strings.TrimSpace(lower)

	// Strip trailing credentials like "md", "phd"
	lower = strings.TrimSuffix(lower, ", md")
	lower = strings.TrimSuffix(lower, ", phd")

	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return ""
	}
	surname := fields[len(fields)-1]
	return strings.Trim(surname, ".,")
}

// ExtractSurnamesFromGroupName pulls surnames out of a KOL group name such as
// "Mouabbi/Rimawi" or "Hamilton & O'Shaughnessy".
func ExtractSurnamesFromGroupName(name string) map[string]bool {
	surnames := map[string]bool{}
	for _, sep := range []string{"/", "&", ",", " and "} {
		name = strings.ReplaceAll(name, sep, "|")
	}
	for _, part := range strings.Split(name, "|") {
		n := NormalizeDoctorName(part)
		if len(n) > 2 {
			surnames[n] = true
		}
	}
	return surnames
}

// AssignShootToKOLGroup links a shoot to the KOL group whose member surnames
// best match the shoot's doctors list. Returns true when an assignment was
// made. Shoots already linked to a group are left alone.
func AssignShootToKOLGroup(db *gorm.DB, shootID string) (bool, error) {
	var shoot models.Shoot
	if err := db.First(&shoot, "id = ?", shootID).Error; err != nil {
		return false, err
	}
	if shoot.KOLGroupID != nil || len(shoot.Doctors) == 0 {
		return false, nil
	}

	shootSurnames := map[string]bool{}
	for _, doc := range shoot.Doctors {
		if n := NormalizeDoctorName(doc); len(n) > 2 {
			shootSurnames[n] = true
		}
	}
	if len(shootSurnames) == 0 {
		return false, nil
	}

	var groups []models.KOLGroup
	if err := db.Preload("KOLs").Find(&groups).Error; err != nil {
		return false, err
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
		for s := range shootSurnames {
			if groupSurnames[s] {
				count++
			}
		}
		if count > bestCount {
			best = group
			bestCount = count
		}
	}

	if best == nil {
		return false, nil
	}

	updates := map[string]interface{}{
		"kol_group_id": best.ID,
		"project_id":   best.ProjectID,
	}
	if err := db.Model(&models.Shoot{}).Where("id = ?", shootID).Updates(updates).Error; err != nil {
		return false, err
	}

	logrus.WithFields(logrus.Fields{
		"shoot_id":  shootID,
		"kol_group": best.Name,
		"matches":   bestCount,
	}).Debug("shoot matched to KOL group")
	return true, nil
}
