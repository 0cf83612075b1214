package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/honeynil/SocialWorld-web/internal/models"
	pkgerrors "github.com/honeynil/SocialWorld-web/pkg/errors"
)

const maxUploadSize = 32 << 20

type feedPost struct {
	models.Post
	Liked bool
}

type feedData struct {
	Posts []feedPost
}

type commentsData struct {
	PostID   int64
	Comments []models.Comment
}

func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	h.renderFeed(w, r, http.StatusOK, "", noticeFor(r.URL.Query().Get("notice")))
}

func (h *Handler) renderFeed(w http.ResponseWriter, r *http.Request, status int, errMsg, notice string) {
	posts, err := h.api.ListPosts(r.Context())
	if err != nil {
		h.apiFailure(w, r, err, "feed", "could not load the feed")
		return
	}

	liked := map[int64]bool{}
	if token := h.credential(r).Token; token != "" {
		ids, err := h.api.LikedPostIDs(r.Context(), token)
		if err != nil {
			// Лента остаётся доступной без лайков
			slog.Warn("failed to load liked posts", "error", err)
		}
		for _, id := range ids {
			liked[id] = true
		}
	}

	data := feedData{Posts: make([]feedPost, 0, len(posts))}
	for _, p := range posts {
		data.Posts = append(data.Posts, feedPost{Post: p, Liked: liked[p.ID]})
	}
	h.render(w, r, "feed", status, page{Title: "Feed", Error: errMsg, Notice: notice, Data: data})
}

func noticeFor(code string) string {
	if code == "posted" {
		return "post published"
	}
	return ""
}

// CreatePost accepts text, an optional media file, or both.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	token := h.credential(r).Token
	if token == "" {
		toLogin(w, r)
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.renderFeed(w, r, http.StatusBadRequest, "invalid form", "")
		return
	}
	content := strings.TrimSpace(r.FormValue("content"))

	mediaURL := ""
	file, header, err := r.FormFile("media")
	if err == nil {
		defer file.Close()
		mediaURL, err = h.api.Upload(r.Context(), token, header.Filename, file)
		if err != nil {
			slog.Warn("media upload failed", "error", err)
			h.renderFeed(w, r, http.StatusBadGateway, "media upload failed", "")
			return
		}
	}

	if content == "" && mediaURL == "" {
		h.renderFeed(w, r, http.StatusBadRequest, pkgerrors.ErrEmptyPost.Error(), "")
		return
	}
	if _, err := h.api.CreatePost(r.Context(), token, content, mediaURL); err != nil {
		if errors.Is(err, pkgerrors.ErrUnauthorized) {
			toLogin(w, r)
			return
		}
		h.renderFeed(w, r, http.StatusBadGateway, remoteMessage(err, "could not publish the post"), "")
		return
	}
	seeOther(w, r, "/feed?notice=posted")
}

// ToggleLike uses the liked state the page was rendered with.
func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	token := h.credential(r).Token
	if token == "" {
		toLogin(w, r)
		return
	}

	var err error
	if r.FormValue("liked") == "true" {
		err = h.api.Unlike(r.Context(), token, id)
	} else {
		err = h.api.Like(r.Context(), token, id)
	}
	if err != nil {
		h.apiFailure(w, r, err, "like", "could not update the like")
		return
	}
	seeOther(w, r, "/feed")
}

func (h *Handler) Comments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	comments, err := h.api.ListComments(r.Context(), id)
	if err != nil {
		h.apiFailure(w, r, err, "comments", "could not load comments")
		return
	}
	h.render(w, r, "comments", http.StatusOK, page{Title: "Comments", Data: commentsData{PostID: id, Comments: comments}})
}

// AddComment ignores blank comments.
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	back := r.URL.Path
	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" {
		seeOther(w, r, back)
		return
	}
	token := h.credential(r).Token
	if token == "" {
		toLogin(w, r)
		return
	}
	if _, err := h.api.AddComment(r.Context(), token, id, content); err != nil {
		h.apiFailure(w, r, err, "comments", "could not add the comment")
		return
	}
	seeOther(w, r, back)
}
