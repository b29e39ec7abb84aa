package models

import "time"

// Roles.
const (
	RoleUser  = "user"
	RoleOwner = "owner"
	RoleAdmin = "admin"
)

// Account statuses.
const (
	UserUnverified = "unverified"
	UserVerified   = "verified"
)

// User represents a platform account.
type User struct {
	ID           string    `bson:"id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"passwordHash,omitempty" json:"-"`
	GoogleID     string    `bson:"googleId,omitempty" json:"-"`
	Avatar       string    `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Role         string    `bson:"role" json:"role"`
	StripeSubID  string    `bson:"stripeSubscriptionId,omitempty" json:"-"`
	Status       string    `bson:"status" json:"status"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsAdmin reports whether the account has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=40"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest accepts either an email or a username in Identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Email  string
	Role   string
}

// CanManage reports whether the actor owns the resource or is an admin.
func (a Actor) CanManage(ownerID string) bool {
	return a.Role == RoleAdmin || (a.UserID != "" && a.UserID == ownerID)
}
