package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/chmgroup/mediahub-backend/config"
	"github.com/chmgroup/mediahub-backend/models"
	"github.com/chmgroup/mediahub-backend/utils"
)

var (
	errInviteConsumed = errors.New("invitation already accepted")
	errInviteExpired  = errors.New("invitation expired")
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	var user models.User
	err := config.DB.Where("LOWER(email) = LOWER(?)", input.Email).First(&user).Error
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		respondError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !user.IsActive {
		respondError(c, http.StatusForbidden, "Account is deactivated")
		return
	}

	pair, err := utils.GenerateTokenPair(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Could not issue tokens")
		return
	}

	now := time.Now().UTC()
	config.DB.Model(&user).Update("last_login", now)

	c.JSON(http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    pair.TokenType,
		"user":          user,
	})
}

type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func RefreshToken(c *gin.Context) {
	var input RefreshInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "refresh_token is required")
		return
	}

	claims, err := utils.VerifyToken(input.RefreshToken, utils.TokenTypeRefresh)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", claims.UserID).Error; err != nil || !user.IsActive {
		respondError(c, http.StatusUnauthorized, "Account no longer active")
		return
	}

	pair, err := utils.GenerateTokenPair(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Could not issue tokens")
		return
	}
	c.JSON(http.StatusOK, pair)
}

func Me(c *gin.Context) {
	userID := c.MustGet("user_id").(string)

	var user models.User
	if err := config.DB.First(&user, "id = ?", userID).Error; err != nil {
		respondError(c, http.StatusNotFound, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

type InviteInput struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required"`
}

// InviteUser creates a single-use invitation and emails the link. Only a
// superadmin can mint another superadmin.
func InviteUser(c *gin.Context) {
	var input InviteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "Email and role are required")
		return
	}

	role := models.UserRole(input.Role)
	if !role.Valid() {
		respondInvalidParam(c, "role", "unknown role")
		return
	}
	callerRole := models.UserRole(c.MustGet("role").(string))
	if role == models.RoleSuperadmin && callerRole != models.RoleSuperadmin {
		respondError(c, http.StatusForbidden, "Only a superadmin can invite a superadmin")
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	var existing int64
	config.DB.Model(&models.User{}).Where("LOWER(email) = ?", email).Count(&existing)
	if existing > 0 {
		respondError(c, http.StatusConflict, "An account with this email already exists")
		return
	}

	inviter, err := uuid.Parse(c.MustGet("user_id").(string))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Invalid session")
		return
	}

	inv := models.Invitation{
		Email:       email,
		Token:       models.NewInvitationToken(),
		Role:        role,
		InvitedByID: inviter,
		ExpiresAt:   models.DefaultInvitationExpiry(),
	}
	if err := config.DB.Create(&inv).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Could not create invitation")
		return
	}

	var inviterUser models.User
	config.DB.Select("name").First(&inviterUser, "id = ?", inviter)

	// Email delivery is best effort; the invite link also shows in the admin UI.
	go func(email, token, inviterName, role string) {
		if err := utils.SendInvitationEmail(email, token, inviterName, role); err != nil {
			logrus.WithError(err).WithField("email", email).Warn("invitation email failed")
		}
	}(inv.Email, inv.Token, inviterUser.Name, string(inv.Role))

	c.JSON(http.StatusCreated, gin.H{
		"invitation": inv,
		"token":      inv.Token,
	})
}

// ValidateInvite lets the signup page check a token before showing the form.
func ValidateInvite(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		respondError(c, http.StatusBadRequest, "token is required")
		return
	}

	var inv models.Invitation
	if err := config.DB.Where("token = ?", token).First(&inv).Error; err != nil {
		respondError(c, http.StatusNotFound, "Invitation not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":      inv.IsValid(),
		"email":      inv.Email,
		"role":       inv.Role,
		"expires_at": inv.ExpiresAt,
		"accepted":   inv.IsAccepted(),
	})
}

type AcceptInviteInput struct {
	Token    string `json:"token" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// AcceptInvite consumes the invitation and creates the account in one
// transaction. The conditional update is what makes a raced second accept
// lose, and it re-checks expiry so a token expiring mid-request is not
// consumed either way.
func AcceptInvite(c *gin.Context) {
	var input AcceptInviteInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, http.StatusBadRequest, "token, name and a password of at least 8 characters are required")
		return
	}

	var inv models.Invitation
	if err := config.DB.Where("token = ?", input.Token).First(&inv).Error; err != nil {
		respondError(c, http.StatusNotFound, "Invitation not found")
		return
	}
	if inv.IsAccepted() {
		respondError(c, http.StatusConflict, "Invitation has already been used")
		return
	}
	if inv.IsExpired() {
		respondError(c, http.StatusBadRequest, "Invitation has expired")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Could not hash password")
		return
	}

	var user models.User
	txErr := config.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&models.Invitation{}).
			Where("id = ? AND accepted_at IS NULL AND expires_at > ?", inv.ID, now).
			Update("accepted_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// The invitation was consumed or ran out between the pre-check
			// and the update. Reload to tell the two apart.
			var cur models.Invitation
			if err := tx.Select("accepted_at").First(&cur, "id = ?", inv.ID).Error; err != nil {
				return err
			}
			if cur.IsAccepted() {
				return errInviteConsumed
			}
			return errInviteExpired
		}

		user = models.User{
			Email:        inv.Email,
			PasswordHash: string(hash),
			Name:         input.Name,
			Role:         inv.Role,
			InvitedByID:  &inv.InvitedByID,
			IsActive:     true,
		}
		return tx.Create(&user).Error
	})
	if txErr != nil {
		if errors.Is(txErr, errInviteConsumed) {
			respondError(c, http.StatusConflict, "Invitation has already been used")
			return
		}
		if errors.Is(txErr, errInviteExpired) {
			respondError(c, http.StatusBadRequest, "Invitation has expired")
			return
		}
		respondError(c, http.StatusInternalServerError, "Could not create account")
		return
	}

	pair, err := utils.GenerateTokenPair(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Could not issue tokens")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    pair.TokenType,
		"user":          user,
	})
}

func ListInvitations(c *gin.Context) {
	var invitations []models.Invitation
	if err := config.DB.Order("created_at DESC").Find(&invitations).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Query failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invitations": invitations})
}

// RevokeInvitation deletes an unaccepted invitation.
func RevokeInvitation(c *gin.Context) {
	id := c.Param("id")

	var inv models.Invitation
	if err := config.DB.First(&inv, "id = ?", id).Error; err != nil {
		respondError(c, http.StatusNotFound, "Invitation not found")
		return
	}
	if inv.IsAccepted() {
		respondError(c, http.StatusConflict, "Invitation has already been used")
		return
	}
	if err := config.DB.Delete(&inv).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "Could not revoke invitation")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
