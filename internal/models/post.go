package models

import (
	"strings"
	"time"
)

type Author struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

type PostCounts struct {
	Comments int `json:"comments"`
	Likes    int `json:"likes"`
}

type Post struct {
	ID        int64      `json:"id"`
	Content   string     `json:"content"`
	MediaURL  string     `json:"mediaUrl,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	Author    Author     `json:"author"`
	Counts    PostCounts `json:"_count"`
}

// HasMedia ignores whitespace-only URLs.
func (p Post) HasMedia() bool {
	return strings.TrimSpace(p.MediaURL) != ""
}

func (p Post) IsVideo() bool {
	return IsVideoURL(p.MediaURL)
}

type Comment struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Author    Author    `json:"author"`
}

// IsVideoURL reports whether an uploaded media URL points at a video.
func IsVideoURL(url string) bool {
	return strings.Contains(url, ".mp4") || strings.Contains(url, "/video/")
}
