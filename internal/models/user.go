package models

type UserSummary struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

func (t MediaType) Valid() bool {
	return t == MediaImage || t == MediaVideo
}

type Media struct {
	ID   int64     `json:"id"`
	URL  string    `json:"url"`
	Type MediaType `json:"type"`
}

type Profile struct {
	ID                      int64   `json:"id"`
	Username                string  `json:"username"`
	Email                   string  `json:"email,omitempty"`
	Bio                     string  `json:"bio,omitempty"`
	AvatarURL               string  `json:"avatarUrl,omitempty"`
	IsPrivate               bool    `json:"isPrivate"`
	IsFriend                bool    `json:"isFriend,omitempty"`
	HasPendingFriendRequest bool    `json:"hasPendingFriendRequest,omitempty"`
	FollowersCount          int     `json:"followersCount"`
	FollowingCount          int     `json:"followingCount"`
	Medias                  []Media `json:"medias,omitempty"`
}

// CanMessage mirrors the remote API's messaging rule so the view can offer
// the right action. The API still decides.
func (p *Profile) CanMessage() bool {
	return !p.IsPrivate || p.IsFriend
}

// MediasOfType keeps gallery order.
func (p *Profile) MediasOfType(t MediaType) []Media {
	out := make([]Media, 0, len(p.Medias))
	for _, m := range p.Medias {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

type ProfileUpdate struct {
	Username  string `json:"username"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatarUrl"`
	IsPrivate bool   `json:"isPrivate"`
}
