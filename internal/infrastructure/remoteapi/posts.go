package remoteapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/honeynil/SocialWorld-web/internal/models"
)

// ListPosts is public; the feed is readable without a session.
func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := c.getJSON(ctx, "ListPosts", "/api/posts", nil, "", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) CreatePost(ctx context.Context, token, content, mediaURL string) (*models.Post, error) {
	req := map[string]string{"content": content, "mediaUrl": mediaURL}
	var p models.Post
	if err := c.sendJSON(ctx, "CreatePost", http.MethodPost, "/api/posts", token, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) ListComments(ctx context.Context, postID int64) ([]models.Comment, error) {
	var comments []models.Comment
	if err := c.getJSON(ctx, "ListComments", "/api/posts/"+id(postID)+"/comments", nil, "", &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) AddComment(ctx context.Context, token string, postID int64, content string) (*models.Comment, error) {
	req := map[string]string{"content": content}
	var cm models.Comment
	if err := c.sendJSON(ctx, "AddComment", http.MethodPost, "/api/posts/"+id(postID)+"/comments", token, req, &cm); err != nil {
		return nil, err
	}
	return &cm, nil
}

func (c *Client) LikedPostIDs(ctx context.Context, token string) ([]int64, error) {
	var resp struct {
		LikedPostIDs []int64 `json:"likedPostIds"`
	}
	if err := c.getJSON(ctx, "LikedPostIDs", "/api/likes", nil, token, &resp); err != nil {
		return nil, err
	}
	return resp.LikedPostIDs, nil
}

func (c *Client) Like(ctx context.Context, token string, postID int64) error {
	return c.sendJSON(ctx, "Like", http.MethodPost, "/api/likes/"+id(postID), token, nil, nil)
}

func (c *Client) Unlike(ctx context.Context, token string, postID int64) error {
	return c.sendJSON(ctx, "Unlike", http.MethodDelete, "/api/likes/"+id(postID), token, nil, nil)
}

// Upload stores a file and returns its public URL. The API accepts uploads
// without a token; one is still sent when present.
func (c *Client) Upload(ctx context.Context, token, filename string, file io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("Upload: failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("Upload: failed to copy file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("Upload: failed to close form: %w", err)
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.call(ctx, "Upload", http.MethodPost, "/api/upload", nil, token, &buf, mw.FormDataContentType(), &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", fmt.Errorf("Upload: response has no url")
	}
	return resp.URL, nil
}
