package models

import (
	"time"

	"github.com/google/uuid"
)

// Client / Project / KOLGroup / KOL form the read-mostly tenant hierarchy.
// They are populated out of band and serve as aggregation scopes.

type Client struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Slug      string    `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Projects []Project    `gorm:"foreignKey:ClientID" json:"projects,omitempty"`
	Users    []ClientUser `gorm:"foreignKey:ClientID" json:"-"`
}

type Project struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClientID  uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Client    *Client    `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	KOLGroups []KOLGroup `gorm:"foreignKey:ProjectID" json:"kol_groups,omitempty"`
}

type KOLGroup struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Project *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	KOLs    []KOL    `gorm:"many2many:kol_group_members" json:"kols,omitempty"`
}

type KOL struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Groups []KOLGroup `gorm:"many2many:kol_group_members" json:"-"`
}

// ClientUser grants an editor or viewer access to one client's data.
type ClientUser struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	ClientID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"client_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	User   *User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Client *Client `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
}
