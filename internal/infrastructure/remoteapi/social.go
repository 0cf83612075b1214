package remoteapi

import (
	"context"
	"net/http"

	"github.com/honeynil/SocialWorld-web/internal/models"
)

func (c *Client) FollowStatus(ctx context.Context, token string, userID int64) (bool, error) {
	var resp struct {
		IsFollowing bool `json:"isFollowing"`
	}
	if err := c.getJSON(ctx, "FollowStatus", "/api/follow/status/"+id(userID), nil, token, &resp); err != nil {
		return false, err
	}
	return resp.IsFollowing, nil
}

func (c *Client) Follow(ctx context.Context, token string, userID int64) error {
	req := map[string]int64{"targetUserId": userID}
	return c.sendJSON(ctx, "Follow", http.MethodPost, "/api/follow", token, req, nil)
}

func (c *Client) Unfollow(ctx context.Context, token string, userID int64) error {
	req := map[string]int64{"targetUserId": userID}
	return c.sendJSON(ctx, "Unfollow", http.MethodDelete, "/api/follow", token, req, nil)
}

func (c *Client) FriendRequests(ctx context.Context, token string) (*models.FriendRequests, error) {
	var fr models.FriendRequests
	if err := c.getJSON(ctx, "FriendRequests", "/api/friends/requests", nil, token, &fr); err != nil {
		return nil, err
	}
	return &fr, nil
}

func (c *Client) Friends(ctx context.Context, token string) ([]models.UserSummary, error) {
	var friends []models.UserSummary
	if err := c.getJSON(ctx, "Friends", "/api/friends/list", nil, token, &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

func (c *Client) RespondFriendRequest(ctx context.Context, token string, requestID int64, action models.FriendAction) error {
	req := map[string]any{"requestId": requestID, "action": action}
	return c.sendJSON(ctx, "RespondFriendRequest", http.MethodPost, "/api/friends/respond", token, req, nil)
}

func (c *Client) SendFriendRequest(ctx context.Context, token, toUsername string) error {
	req := map[string]string{"toUsername": toUsername}
	return c.sendJSON(ctx, "SendFriendRequest", http.MethodPost, "/api/friends/request", token, req, nil)
}

// RequestFollow asks a private account for friendship instead of following it.
func (c *Client) RequestFollow(ctx context.Context, token string, userID int64) error {
	req := map[string]int64{"targetUserId": userID}
	return c.sendJSON(ctx, "RequestFollow", http.MethodPost, "/api/friend-request/send", token, req, nil)
}
