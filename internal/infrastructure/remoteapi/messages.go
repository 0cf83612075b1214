package remoteapi

import (
	"context"
	"net/http"

	"github.com/honeynil/SocialWorld-web/internal/models"
)

func (c *Client) Conversations(ctx context.Context, token string) ([]models.Conversation, error) {
	var convs []models.Conversation
	if err := c.getJSON(ctx, "Conversations", "/api/messages/conversations", nil, token, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (c *Client) Messages(ctx context.Context, token string, friendID int64) ([]models.Message, error) {
	var msgs []models.Message
	if err := c.getJSON(ctx, "Messages", "/api/messages/"+id(friendID), nil, token, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (c *Client) SendMessage(ctx context.Context, token string, receiverID int64, content string) (*models.Message, error) {
	req := map[string]any{"content": content, "receiverId": receiverID}
	var m models.Message
	if err := c.sendJSON(ctx, "SendMessage", http.MethodPost, "/api/messages/send", token, req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
