package auth

import (
	"strings"
	"time"
)

type Role string

const (
	Member        Role = "Member"
	Administrator Role = "Administrator"
)

// User is the session record.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	LastLogin time.Time `json:"lastLogin"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfilePatch holds the profile fields to change; nil fields are kept.
type ProfilePatch struct {
	Username *string
	Name     *string
	Email    *string
	Avatar   *string
}

func (p ProfilePatch) apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
}

// usernameFrom derives a username from the local part of an email address.
func usernameFrom(email string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(email), "@")
	if local == "" {
		return "user"
	}
	return local
}

const DemoID = "demo-123"

func demoUser() User {
	return User{
		ID:       DemoID,
		Username: "demo",
		Name:     "Demo User",
		Email:    "demo@dayplan.app",
		Role:     Administrator,
	}
}
