package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/honeynil/SocialWorld-web/internal/infrastructure/remoteapi"
	"github.com/honeynil/SocialWorld-web/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"login", "register", "verify", "home", "feed", "comments",
	"profile", "public_profile", "friends", "messages", "search", "error",
}

type views struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"profileLink": profileLink,
	"isVideo":     models.IsVideoURL,
	"ago": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("02.01.2006 15:04")
	},
}

func loadViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse view %s: %w", name, err)
		}
		v.pages[name] = t
	}
	return v, nil
}

// profileLink sends the current user to their own editable profile.
func profileLink(current, username string) string {
	if current != "" && username == current {
		return "/profile"
	}
	return "/profile/" + url.PathEscape(username)
}

type page struct {
	Title    string
	User     string
	LoggedIn bool
	Error    string
	Notice   string
	Data     any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, status int, p page) {
	t, ok := h.views.pages[name]
	if !ok {
		slog.Error("unknown view", "view", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	cred := h.credential(r)
	p.User = cred.Username
	p.LoggedIn = cred.Token != ""

	var buf bytes.Buffer
	if err := t.Execute(&buf, p); err != nil {
		slog.Error("failed to render view", "view", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func remoteMessage(err error, fallback string) string {
	return remoteapi.Message(err, fallback)
}
