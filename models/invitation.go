package models

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/google/uuid"
)

const invitationTTL = 7 * 24 * time.Hour

// NewInvitationToken returns a URL-safe random token for invitation links.
func NewInvitationToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func DefaultInvitationExpiry() time.Time {
	return time.Now().UTC().Add(invitationTTL)
}

// Invitation is a single-use, expiring invite. Accepting one consumes it
// atomically: a second accept with the same token must fail with a conflict.
type Invitation struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email       string     `gorm:"size:255;not null;index" json:"email"`
	Token       string     `gorm:"size:255;uniqueIndex;not null" json:"-"`
	Role        UserRole   `gorm:"type:varchar(20);not null;default:'viewer'" json:"role"`
	InvitedByID uuid.UUID  `gorm:"type:uuid;not null" json:"invited_by_id"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt   time.Time  `gorm:"not null" json:"expires_at"`
	AcceptedAt  *time.Time `json:"accepted_at,omitempty"`

	InvitedBy User `gorm:"foreignKey:InvitedByID" json:"-"`
}

func (i *Invitation) IsExpired() bool {
	return time.Now().UTC().After(i.ExpiresAt)
}

func (i *Invitation) IsAccepted() bool {
	return i.AcceptedAt != nil
}

func (i *Invitation) IsValid() bool {
	return !i.IsExpired() && !i.IsAccepted()
}
