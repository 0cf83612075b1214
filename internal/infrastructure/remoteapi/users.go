package remoteapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/honeynil/SocialWorld-web/internal/models"
)

func (c *Client) SearchUsers(ctx context.Context, token, q string) ([]models.UserSummary, error) {
	var users []models.UserSummary
	if err := c.getJSON(ctx, "SearchUsers", "/api/users/search", url.Values{"q": {q}}, token, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) UserByUsername(ctx context.Context, token, username string) (*models.Profile, error) {
	var p models.Profile
	if err := c.getJSON(ctx, "UserByUsername", "/api/user/user/"+url.PathEscape(username), nil, token, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, upd models.ProfileUpdate) (*models.Profile, error) {
	var resp struct {
		User models.Profile `json:"user"`
	}
	if err := c.sendJSON(ctx, "UpdateProfile", http.MethodPut, "/api/user/update", token, upd, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) AddMedia(ctx context.Context, token, mediaURL string, t models.MediaType) (*models.Media, error) {
	req := map[string]string{"url": mediaURL, "type": string(t)}
	var m models.Media
	if err := c.sendJSON(ctx, "AddMedia", http.MethodPost, "/api/user/media/add", token, req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
