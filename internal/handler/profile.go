package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/honeynil/SocialWorld-web/internal/models"
	pkgerrors "github.com/honeynil/SocialWorld-web/pkg/errors"
)

type profileData struct {
	Profile *models.Profile
	Filter  models.MediaType
	Gallery []models.Media
	Editing bool
}

type publicProfileData struct {
	Profile   *models.Profile
	Following bool
}

// Profile is the current user's own page. ?type= filters the gallery.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	h.renderProfile(w, r, http.StatusOK, "", "")
}

func (h *Handler) renderProfile(w http.ResponseWriter, r *http.Request, status int, errMsg, notice string) {
	me, err := h.api.Me(r.Context(), h.credential(r).Token)
	if err != nil {
		h.apiFailure(w, r, err, "profile", "could not load the profile")
		return
	}
	data := profileData{Profile: me, Filter: models.MediaImage, Editing: r.URL.Query().Get("edit") == "1"}
	if t := models.MediaType(r.URL.Query().Get("type")); t.Valid() {
		data.Filter = t
	}
	data.Gallery = me.MediasOfType(data.Filter)
	h.render(w, r, "profile", status, page{Title: me.Username, Error: errMsg, Notice: notice, Data: data})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	cred := h.credential(r)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.renderProfile(w, r, http.StatusBadRequest, "invalid form", "")
		return
	}

	upd := models.ProfileUpdate{
		Username:  strings.TrimSpace(r.FormValue("username")),
		Bio:       r.FormValue("bio"),
		AvatarURL: r.FormValue("avatarUrl"),
		IsPrivate: r.FormValue("isPrivate") == "on" || r.FormValue("isPrivate") == "true",
	}
	if upd.Username == "" {
		h.renderProfile(w, r, http.StatusBadRequest, "username is required", "")
		return
	}

	if file, header, err := r.FormFile("avatar"); err == nil {
		defer file.Close()
		avatarURL, err := h.api.Upload(r.Context(), cred.Token, header.Filename, file)
		if err != nil {
			slog.Warn("avatar upload failed", "error", err)
			h.renderProfile(w, r, http.StatusBadGateway, "avatar upload failed", "")
			return
		}
		upd.AvatarURL = avatarURL
	}

	_, err := h.api.UpdateProfile(r.Context(), cred.Token, upd)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrUnauthorized) {
			toLogin(w, r)
			return
		}
		h.renderProfile(w, r, http.StatusBadRequest, remoteMessage(err, "could not update the profile"), "")
		return
	}
	seeOther(w, r, "/profile")
}

func (h *Handler) AddMedia(w http.ResponseWriter, r *http.Request) {
	token := h.credential(r).Token
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.renderProfile(w, r, http.StatusBadRequest, "choose a file to upload", "")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.renderProfile(w, r, http.StatusBadRequest, "choose a file to upload", "")
		return
	}
	defer file.Close()

	t := models.MediaType(r.FormValue("type"))
	if !t.Valid() {
		t = models.MediaImage
		if models.IsVideoURL(header.Filename) {
			t = models.MediaVideo
		}
	}

	mediaURL, err := h.api.Upload(r.Context(), token, header.Filename, file)
	if err != nil {
		h.apiFailure(w, r, err, "media", "upload failed")
		return
	}
	if _, err := h.api.AddMedia(r.Context(), token, mediaURL, t); err != nil {
		h.apiFailure(w, r, err, "media", "could not add the media")
		return
	}
	seeOther(w, r, "/profile?type="+string(t))
}

// PublicProfile shows another user. Viewing yourself lands on /profile.
func (h *Handler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	cred := h.credential(r)
	if cred.Username != "" && username == cred.Username {
		http.Redirect(w, r, "/profile", http.StatusFound)
		return
	}

	p, err := h.api.UserByUsername(r.Context(), cred.Token, username)
	if err != nil {
		h.apiFailure(w, r, err, "public_profile", "user not found")
		return
	}
	data := publicProfileData{Profile: p}
	if cred.Token != "" {
		following, err := h.api.FollowStatus(r.Context(), cred.Token, p.ID)
		if err != nil {
			slog.Warn("failed to load follow status", "error", err)
		}
		data.Following = following
	}
	h.render(w, r, "public_profile", http.StatusOK, page{Title: p.Username, Data: data})
}

func (h *Handler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	token := h.credential(r).Token
	if token == "" {
		toLogin(w, r)
		return
	}
	if err := h.api.SendFriendRequest(r.Context(), token, username); err != nil {
		h.apiFailure(w, r, err, "friend_request", "could not send the friend request")
		return
	}
	seeOther(w, r, profileLink("", username))
}

// Follow on a private account becomes a friend request.
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	h.followAction(w, r, true)
}

func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.followAction(w, r, false)
}

func (h *Handler) followAction(w http.ResponseWriter, r *http.Request, follow bool) {
	username := mux.Vars(r)["username"]
	token := h.credential(r).Token
	if token == "" {
		toLogin(w, r)
		return
	}
	p, err := h.api.UserByUsername(r.Context(), token, username)
	if err != nil {
		h.apiFailure(w, r, err, "follow", "user not found")
		return
	}

	switch {
	case !follow:
		err = h.api.Unfollow(r.Context(), token, p.ID)
	case p.IsPrivate:
		err = h.api.RequestFollow(r.Context(), token, p.ID)
	default:
		err = h.api.Follow(r.Context(), token, p.ID)
	}
	if err != nil {
		h.apiFailure(w, r, err, "follow", "could not update the follow")
		return
	}
	seeOther(w, r, "/profile/"+url.PathEscape(username))
}
