package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/honeynil/SocialWorld-web/internal/gate"
	"github.com/honeynil/SocialWorld-web/internal/models"
	"github.com/honeynil/SocialWorld-web/internal/repository"
	service "github.com/honeynil/SocialWorld-web/internal/services"
	pkgerrors "github.com/honeynil/SocialWorld-web/pkg/errors"
)

// API is the remote REST API as the views use it.
type API interface {
	Me(ctx context.Context, token string) (*models.Profile, error)

	ListPosts(ctx context.Context) ([]models.Post, error)
	CreatePost(ctx context.Context, token, content, mediaURL string) (*models.Post, error)
	ListComments(ctx context.Context, postID int64) ([]models.Comment, error)
	AddComment(ctx context.Context, token string, postID int64, content string) (*models.Comment, error)
	LikedPostIDs(ctx context.Context, token string) ([]int64, error)
	Like(ctx context.Context, token string, postID int64) error
	Unlike(ctx context.Context, token string, postID int64) error
	Upload(ctx context.Context, token, filename string, file io.Reader) (string, error)

	FollowStatus(ctx context.Context, token string, userID int64) (bool, error)
	Follow(ctx context.Context, token string, userID int64) error
	Unfollow(ctx context.Context, token string, userID int64) error
	RequestFollow(ctx context.Context, token string, userID int64) error
	FriendRequests(ctx context.Context, token string) (*models.FriendRequests, error)
	Friends(ctx context.Context, token string) ([]models.UserSummary, error)
	RespondFriendRequest(ctx context.Context, token string, requestID int64, action models.FriendAction) error
	SendFriendRequest(ctx context.Context, token, toUsername string) error

	Conversations(ctx context.Context, token string) ([]models.Conversation, error)
	Messages(ctx context.Context, token string, friendID int64) ([]models.Message, error)
	SendMessage(ctx context.Context, token string, receiverID int64, content string) (*models.Message, error)

	SearchUsers(ctx context.Context, token, q string) ([]models.UserSummary, error)
	UserByUsername(ctx context.Context, token, username string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, token string, upd models.ProfileUpdate) (*models.Profile, error)
	AddMedia(ctx context.Context, token, mediaURL string, t models.MediaType) (*models.Media, error)
}

type Handler struct {
	sessions service.SessionService
	api      API
	decode   gate.Decoder
	views    *views
}

func NewHandler(sessions service.SessionService, api API, decode gate.Decoder) (*Handler, error) {
	v, err := loadViews()
	if err != nil {
		return nil, err
	}
	return &Handler{sessions: sessions, api: api, decode: decode, views: v}, nil
}

func (h *Handler) RegisterPublicRoutes(r *mux.Router) {
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/login", h.LoginForm).Methods("GET")
	r.HandleFunc("/login", h.Login).Methods("POST")
	r.HandleFunc("/register", h.RegisterForm).Methods("GET")
	r.HandleFunc("/register", h.Register).Methods("POST")
	r.HandleFunc("/verify", h.VerifyForm).Methods("GET")
	r.HandleFunc("/verify", h.Verify).Methods("POST")
	r.HandleFunc("/logout", h.Logout).Methods("POST")

	r.HandleFunc("/feed", h.Feed).Methods("GET")
	r.HandleFunc("/feed/posts", h.CreatePost).Methods("POST")
	r.HandleFunc("/feed/posts/{id:[0-9]+}/like", h.ToggleLike).Methods("POST")
	r.HandleFunc("/feed/posts/{id:[0-9]+}/comments", h.Comments).Methods("GET")
	r.HandleFunc("/feed/posts/{id:[0-9]+}/comments", h.AddComment).Methods("POST")

	r.HandleFunc("/profile/{username}", h.PublicProfile).Methods("GET")
	r.HandleFunc("/profile/{username}/friend-request", h.SendFriendRequest).Methods("POST")
	r.HandleFunc("/profile/{username}/follow", h.Follow).Methods("POST")
	r.HandleFunc("/profile/{username}/unfollow", h.Unfollow).Methods("POST")

	r.HandleFunc("/friends", h.Friends).Methods("GET")
	r.HandleFunc("/friends/respond", h.RespondFriendRequest).Methods("POST")
	r.HandleFunc("/messages", h.Messages).Methods("GET")
	r.HandleFunc("/messages/send", h.SendMessage).Methods("POST")
}

func (h *Handler) RegisterProtectedRoutes(r *mux.Router) {
	r.HandleFunc("/home", h.Home).Methods("GET")
	r.HandleFunc("/profile", h.Profile).Methods("GET")
	r.HandleFunc("/profile", h.UpdateProfile).Methods("POST")
	r.HandleFunc("/profile/media", h.AddMedia).Methods("POST")
	r.HandleFunc("/search", h.Search).Methods("GET")
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/feed", http.StatusFound)
}

func (h *Handler) store(r *http.Request) repository.SessionStore {
	return repository.SessionFrom(r.Context())
}

func (h *Handler) credential(r *http.Request) models.Credential {
	cred, err := repository.LoadCredential(r.Context(), h.store(r))
	if err != nil {
		return models.Credential{}
	}
	return cred
}

// currentUserID reads the advisory userId claim. Zero when unknown.
func (h *Handler) currentUserID(token string) int64 {
	if token == "" || h.decode == nil {
		return 0
	}
	claims, err := h.decode(token)
	if err != nil {
		return 0
	}
	return claims.UserID
}

// seeOther ends a successful form post.
func seeOther(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func toLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, gate.LoginPath, http.StatusFound)
}

// apiFailure handles a remote error on a data view. A 401 means the stored
// token is no longer accepted, so the user is sent to log in again.
func (h *Handler) apiFailure(w http.ResponseWriter, r *http.Request, err error, view, fallback string) {
	if errors.Is(err, pkgerrors.ErrUnauthorized) {
		toLogin(w, r)
		return
	}
	status := http.StatusBadGateway
	if errors.Is(err, pkgerrors.ErrNotFound) {
		status = http.StatusNotFound
	}
	slog.Warn("view failed", "view", view, "error", err)
	h.render(w, r, "error", status, page{Title: "Error", Error: remoteMessage(err, fallback)})
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil && id > 0
}

func formID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.FormValue(name), 10, 64)
	return id, err == nil && id > 0
}
