package domain

import "time"

// Profile holds the public-facing details a user can attach to their account.
// Every field is optional; a profile row is created lazily on first update.
type Profile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Bio         string    `json:"bio,omitempty"`
	Address     string    `json:"address,omitempty"`
	College     string    `json:"college,omitempty"`
	Batch       string    `json:"batch,omitempty"`
	WebsiteURL  string    `json:"website_url,omitempty"`
	LinkedinURL string    `json:"linkedin_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
