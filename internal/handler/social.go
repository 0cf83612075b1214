package handler

import (
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/honeynil/SocialWorld-web/internal/models"
)

// MinSearchLength is the shortest query sent to the API.
const MinSearchLength = 2

type friendsData struct {
	Requests *models.FriendRequests
	Friends  []models.UserSummary
}

type bubble struct {
	models.Message
	Mine bool
}

type messagesData struct {
	Conversations []models.Conversation
	Selected      *models.UserSummary
	Thread        []bubble
	CanMessage    bool
	To            string
}

type searchData struct {
	Query    string
	Results  []models.UserSummary
	TooShort bool
}

func (h *Handler) Friends(w http.ResponseWriter, r *http.Request) {
	token := h.credential(r).Token
	reqs, err := h.api.FriendRequests(r.Context(), token)
	if err != nil {
		h.apiFailure(w, r, err, "friends", "could not load friend requests")
		return
	}
	friends, err := h.api.Friends(r.Context(), token)
	if err != nil {
		h.apiFailure(w, r, err, "friends", "could not load friends")
		return
	}
	h.render(w, r, "friends", http.StatusOK, page{Title: "Friends", Data: friendsData{Requests: reqs, Friends: friends}})
}

func (h *Handler) RespondFriendRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := formID(r, "requestId")
	action := models.FriendAction(r.FormValue("action"))
	if !ok || !action.Valid() {
		http.Error(w, "invalid friend request response", http.StatusBadRequest)
		return
	}
	if err := h.api.RespondFriendRequest(r.Context(), h.credential(r).Token, id, action); err != nil {
		h.apiFailure(w, r, err, "friends", "could not process the request")
		return
	}
	seeOther(w, r, "/friends")
}

// Messages lists conversations and one thread. ?with=<id> opens a known
// conversation, ?to=<username> starts a new one.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request) {
	token := h.credential(r).Token
	convs, err := h.api.Conversations(r.Context(), token)
	if err != nil {
		h.apiFailure(w, r, err, "messages", "could not load conversations")
		return
	}
	data := messagesData{Conversations: convs}
	q := r.URL.Query()

	if to := strings.TrimSpace(q.Get("to")); to != "" {
		data.To = to
		p, err := h.api.UserByUsername(r.Context(), token, to)
		if err != nil {
			h.render(w, r, "messages", http.StatusOK, page{Title: "Messages", Error: "user not found or not accessible", Data: data})
			return
		}
		data.Selected = &models.UserSummary{ID: p.ID, Username: p.Username, AvatarURL: p.AvatarURL}
		data.CanMessage = p.CanMessage()
		h.render(w, r, "messages", http.StatusOK, page{Title: "Messages", Data: data})
		return
	}

	var friendID int64
	if id, err := strconv.ParseInt(q.Get("with"), 10, 64); err == nil {
		friendID = id
	} else if len(convs) > 0 {
		friendID = convs[0].Friend.ID
	}
	for i := range convs {
		if convs[i].Friend.ID == friendID {
			data.Selected = &convs[i].Friend
		}
	}
	if friendID > 0 {
		msgs, err := h.api.Messages(r.Context(), token, friendID)
		if err != nil {
			h.apiFailure(w, r, err, "messages", "could not load messages")
			return
		}
		if data.Selected == nil {
			data.Selected = &models.UserSummary{ID: friendID}
		}
		me := h.currentUserID(token)
		for _, m := range msgs {
			data.Thread = append(data.Thread, bubble{Message: m, Mine: me != 0 && m.SenderID == me})
		}
		data.CanMessage = true
	}
	h.render(w, r, "messages", http.StatusOK, page{Title: "Messages", Data: data})
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	receiverID, ok := formID(r, "receiverId")
	if !ok {
		http.Error(w, "invalid receiver", http.StatusBadRequest)
		return
	}
	back := "/messages?with=" + strconv.FormatInt(receiverID, 10)
	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" {
		seeOther(w, r, back)
		return
	}
	if _, err := h.api.SendMessage(r.Context(), h.credential(r).Token, receiverID, content); err != nil {
		h.apiFailure(w, r, err, "messages", "could not send the message")
		return
	}
	seeOther(w, r, back)
}

// Search does not reach the API for queries under MinSearchLength runes.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	data := searchData{Query: strings.TrimSpace(r.URL.Query().Get("q"))}
	if utf8.RuneCountInString(data.Query) < MinSearchLength {
		data.TooShort = data.Query != ""
		h.render(w, r, "search", http.StatusOK, page{Title: "Search", Data: data})
		return
	}
	users, err := h.api.SearchUsers(r.Context(), h.credential(r).Token, data.Query)
	if err != nil {
		h.apiFailure(w, r, err, "search", "search failed")
		return
	}
	data.Results = users
	h.render(w, r, "search", http.StatusOK, page{Title: "Search", Data: data})
}
