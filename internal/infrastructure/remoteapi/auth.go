package remoteapi

import (
	"context"
	"net/http"

	"github.com/honeynil/SocialWorld-web/internal/models"
)

type authUser struct {
	Username string `json:"username"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  authUser `json:"user"`
}

func (r authResponse) credential() models.Credential {
	return models.Credential{Token: r.Token, Username: r.User.Username}
}

func (c *Client) Login(ctx context.Context, email, password string) (models.Credential, error) {
	req := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.sendJSON(ctx, "Login", http.MethodPost, "/api/login", "", req, &resp); err != nil {
		return models.Credential{}, err
	}
	return resp.credential(), nil
}

// Register creates an account pending email verification.
func (c *Client) Register(ctx context.Context, email, username, password string) error {
	req := map[string]string{"email": email, "username": username, "password": password}
	return c.sendJSON(ctx, "Register", http.MethodPost, "/api/register", "", req, nil)
}

func (c *Client) Verify(ctx context.Context, email, code string) (models.Credential, error) {
	req := map[string]string{"email": email, "code": code}
	var resp authResponse
	if err := c.sendJSON(ctx, "Verify", http.MethodPost, "/api/verify", "", req, &resp); err != nil {
		return models.Credential{}, err
	}
	return resp.credential(), nil
}

func (c *Client) Me(ctx context.Context, token string) (*models.Profile, error) {
	var p models.Profile
	if err := c.getJSON(ctx, "Me", "/api/me", nil, token, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
