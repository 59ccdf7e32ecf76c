package user

import "time"

// User is the local mirror of an identity-provider account.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary is the compact user shape embedded in other payloads.
type Summary struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Summary returns the compact representation of u.
func (u *User) Summary() *Summary {
	return &Summary{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}
