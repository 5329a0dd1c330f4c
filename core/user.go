package core

import "time"

// SocialLink is one external profile link shown on a user page.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// User is a marketplace account keyed by wallet address. Users are created
// on first successful login and never deleted by the auth core.
type User struct {
	Address     string       `json:"id"`
	Handle      string       `json:"handle,omitempty"`
	AvatarURL   string       `json:"avatar_url,omitempty"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Verified    bool         `json:"verified"`
	SocialLinks []SocialLink `json:"social_links,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
