package user

import "time"

// User is a public profile. Avatar is null until one is uploaded.
type User struct {
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Avatar      *string   `json:"avatar"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// Placeholder builds the profile returned for usernames with no stored record.
func Placeholder(username string) *User {
	return &User{
		Username: username,
		Name:     username,
		Email:    username + "@example.com",
	}
}
