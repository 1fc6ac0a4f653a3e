package domain

import "time"

// User represents an identity known to the service, anonymous or not.
type User struct {
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Profile reduces the stored record to the shape the frontend displays.
func (u *User) Profile() UserProfile {
	return UserProfile{DisplayName: u.DisplayName, AvatarURL: u.AvatarURL}
}
