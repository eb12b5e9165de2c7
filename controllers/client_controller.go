package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/chmgroup/mediahub-backend/config"
	"github.com/chmgroup/mediahub-backend/models"
)

// scopeClientsToUser narrows a clients query to the caller's grants.
// Admins and superadmins see every client.
func scopeClientsToUser(q *gorm.DB, c *gin.Context) *gorm.DB {
	role := models.UserRole(c.MustGet("role").(string))
	if role.AtLeast(models.RoleAdmin) {
		return q
	}
	userID := c.MustGet("user_id").(string)
	return q.Joins("JOIN client_users ON client_users.client_id = clients.id").
		Where("client_users.user_id = ?", userID)
}

func ListClients(c *gin.Context) {
	var clients []models.Client
	q := scopeClientsToUser(config.DB.Model(&models.Client{}), c)
	if err := q.Order("clients.name ASC").Find(&clients).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Query failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

func GetClientBySlug(c *gin.Context) {
	var client models.Client
	q := scopeClientsToUser(config.DB.Model(&models.Client{}), c)
	err := q.Preload("Projects.KOLGroups.KOLs").
		Where("clients.slug = ?", c.Param("slug")).
		First(&client).Error
	if err != nil {
		respondError(c, http.StatusNotFound, "Client not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"client": client})
}

func ListClientProjects(c *gin.Context) {
	var client models.Client
	q := scopeClientsToUser(config.DB.Model(&models.Client{}), c)
	if err := q.Where("clients.slug = ?", c.Param("slug")).First(&client).Error; err != nil {
		respondError(c, http.StatusNotFound, "Client not found")
		return
	}

	var projects []models.Project
	if err := config.DB.Preload("KOLGroups").Where("client_id = ?", client.ID).
		Order("name ASC").Find(&projects).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Query failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// ListKOLGroups returns the KOL groups visible to the caller, scoped through
// the client hierarchy for editors and viewers.
func ListKOLGroups(c *gin.Context) {
	role := models.UserRole(c.MustGet("role").(string))

	q := config.DB.Model(&models.KOLGroup{}).Preload("KOLs")
	if !role.AtLeast(models.RoleAdmin) {
		userID := c.MustGet("user_id").(string)
		q = q.Joins("JOIN projects ON projects.id = kol_groups.project_id").
			Joins("JOIN client_users ON client_users.client_id = projects.client_id").
			Where("client_users.user_id = ?", userID)
	}

	var groups []models.KOLGroup
	if err := q.Order("kol_groups.name ASC").Find(&groups).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Query failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"kol_groups": groups})
}

type CreateClientInput struct {
	Name string `json:"name" binding:"required"`
}

func CreateClient(c *gin.Context) {
	var input CreateClientInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "name is required")
		return
	}

	client := models.Client{
		Name: input.Name,
		Slug: slug.Make(input.Name),
	}
	if err := config.DB.Create(&client).Error; err != nil {
		respondError(c, http.StatusConflict, "A client with this name already exists")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"client": client})
}

type GrantClientAccessInput struct {
	UserID string `json:"user_id" binding:"required,uuid"`
}

// GrantClientAccess links a user to a client so editors and viewers can see it.
func GrantClientAccess(c *gin.Context) {
	var input GrantClientAccessInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "user_id is required")
		return
	}

	var client models.Client
	if err := config.DB.Where("slug = ?", c.Param("slug")).First(&client).Error; err != nil {
		respondError(c, http.StatusNotFound, "Client not found")
		return
	}
	var user models.User
	if err := config.DB.First(&user, "id = ?", input.UserID).Error; err != nil {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}

	grant := models.ClientUser{UserID: user.ID, ClientID: client.ID}
	if err := config.DB.FirstOrCreate(&grant, grant).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Could not grant access")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

func RevokeClientAccess(c *gin.Context) {
	var client models.Client
	if err := config.DB.Where("slug = ?", c.Param("slug")).First(&client).Error; err != nil {
		respondError(c, http.StatusNotFound, "Client not found")
		return
	}

	res := config.DB.Where("client_id = ? AND user_id = ?", client.ID, c.Param("userId")).
		Delete(&models.ClientUser{})
	if res.Error != nil {
		respondError(c, http.StatusInternalServerError, "Could not revoke access")
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "Grant not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
