package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleSuperadmin UserRole = "superadmin" // full system access, every role gate passes
	RoleAdmin      UserRole = "admin"      // internal admin, all clients
	RoleEditor     UserRole = "editor"     // reports + chatbot
	RoleViewer     UserRole = "viewer"     // read-only analytics
)

// roleRank orders roles by privilege for comparisons.
var roleRank = map[UserRole]int{
	RoleViewer:     1,
	RoleEditor:     2,
	RoleAdmin:      3,
	RoleSuperadmin: 4,
}

func (r UserRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r carries at least the privilege of other.
func (r UserRole) AtLeast(other UserRole) bool {
	return roleRank[r] >= roleRank[other]
}

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:text" json:"-"`
	Name         string     `gorm:"size:255" json:"name"`
	Role         UserRole   `gorm:"type:varchar(20);not null;default:'viewer'" json:"role"`
	InvitedByID  *uuid.UUID `gorm:"type:uuid" json:"invited_by_id,omitempty"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	JobTitle     string     `gorm:"size:255" json:"job_title,omitempty"`
	Company      string     `gorm:"size:255" json:"company,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	InvitedBy          *User        `gorm:"foreignKey:InvitedByID" json:"-"`
	ClientAssociations []ClientUser `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) IsSuperadmin() bool {
	return u.Role == RoleSuperadmin
}
