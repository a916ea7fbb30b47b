package models

import "time"

// User roles, from least to most privileged.
const (
	RoleUser      = "user"
	RoleGuide     = "guide"
	RoleLeadGuide = "lead-guide"
	RoleAdmin     = "admin"
)

// User is a credential-store record. The password hash and the reset
// token fields never serialize to JSON.
type User struct {
	ID                   string     `bson:"id" json:"id"`
	Name                 string     `bson:"name" json:"name"`
	Email                string     `bson:"email" json:"email"`
	Photo                string     `bson:"photo,omitempty" json:"photo,omitempty"`
	Role                 string     `bson:"role" json:"role"`
	PasswordHash         string     `bson:"password" json:"-"`
	PasswordChangedAt    *time.Time `bson:"passwordChangedAt,omitempty" json:"-"`
	PasswordResetToken   string     `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires *time.Time `bson:"passwordResetExpires,omitempty" json:"-"`
	Active               bool       `bson:"active" json:"-"`
	CreatedAt            time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time  `bson:"updatedAt" json:"-"`
}

// PasswordChangedAfter reports whether the password was rotated after the
// given token issue time. Tokens minted before a rotation are rejected;
// this is the only server-side revocation mechanism.
func (u *User) PasswordChangedAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.Before(*u.PasswordChangedAt)
}
