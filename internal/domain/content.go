package domain

import "time"

// WebsiteContent is an editable CMS block addressed by section.
type WebsiteContent struct {
	ID        string                 `json:"id"`
	Section   string                 `json:"section"`
	Title     string                 `json:"title,omitempty"`
	Content   string                 `json:"content,omitempty"`
	ImageURL  string                 `json:"image_url,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

type WishlistItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Product   Product   `json:"products"`
	CreatedAt time.Time `json:"created_at"`
}

// StoredFile describes an uploaded CMS asset.
type StoredFile struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
