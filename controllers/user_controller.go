package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chmgroup/mediahub-backend/config"
	"github.com/chmgroup/mediahub-backend/models"
)

func ListUsers(c *gin.Context) {
	var users []models.User
	if err := config.DB.Order("created_at ASC").Find(&users).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Query failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func GetUser(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type UpdateUserInput struct {
	Name     *string `json:"name"`
	JobTitle *string `json:"job_title"`
	Company  *string `json:"company"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// UpdateUser patches profile and access fields. Admins cannot lower their own
// role or deactivate themselves, which keeps at least one working admin around.
func UpdateUser(c *gin.Context) {
	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}

	callerID := c.MustGet("user_id").(string)
	callerRole := models.UserRole(c.MustGet("role").(string))
	isSelf := callerID == user.ID.String()

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.JobTitle != nil {
		updates["job_title"] = *input.JobTitle
	}
	if input.Company != nil {
		updates["company"] = *input.Company
	}
	if input.Role != nil {
		newRole := models.UserRole(*input.Role)
		if !newRole.Valid() {
			respondInvalidParam(c, "role", "unknown role")
			return
		}
		if isSelf && !newRole.AtLeast(user.Role) {
			respondError(c, http.StatusForbidden, "You cannot lower your own role")
			return
		}
		if newRole == models.RoleSuperadmin && callerRole != models.RoleSuperadmin {
			respondError(c, http.StatusForbidden, "Only a superadmin can grant superadmin")
			return
		}
		if user.Role == models.RoleSuperadmin && callerRole != models.RoleSuperadmin {
			respondError(c, http.StatusForbidden, "Only a superadmin can change a superadmin")
			return
		}
		updates["role"] = newRole
	}
	if input.IsActive != nil {
		if isSelf && !*input.IsActive {
			respondError(c, http.StatusForbidden, "You cannot deactivate your own account")
			return
		}
		updates["is_active"] = *input.IsActive
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"user": user})
		return
	}
	if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Update failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func DeleteUser(c *gin.Context) {
	var user models.User
	if err := config.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}

	if c.MustGet("user_id").(string) == user.ID.String() {
		respondError(c, http.StatusForbidden, "You cannot delete your own account")
		return
	}
	if user.Role == models.RoleSuperadmin && models.UserRole(c.MustGet("role").(string)) != models.RoleSuperadmin {
		respondError(c, http.StatusForbidden, "Only a superadmin can delete a superadmin")
		return
	}

	if err := config.DB.Delete(&user).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
