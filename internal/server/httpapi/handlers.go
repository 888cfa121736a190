package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/confidant/internal/common"
	"github.com/dmitrijs2005/confidant/internal/server/chat"
	"github.com/dmitrijs2005/confidant/internal/server/sessions"
)

// ─────────────────────────────────────────────
// DTOs (request/response/page data)
// ─────────────────────────────────────────────

type messageView struct {
	Role    string
	Content string
}

type chatPage struct {
	Username string
	Messages []messageView
	Flashes  []sessions.Flash
}

type authPage struct {
	Flashes []sessions.Flash
}

type vrChatRequest struct {
	Message string `json:"message"`
}

type vrChatResponse struct {
	Reply string `json:"reply"`
}

// ─────────────────────────────────────────────
// History resolution and persistence
// ─────────────────────────────────────────────

// resolveHistory produces the active conversation for the session: the
// guest conversation (initialized on first touch) or the account's stored
// history.
func (s *Server) resolveHistory(ctx context.Context, sess *sessions.Session) (chat.Conversation, error) {
	if sess.IsGuest() {
		sess.Guest = chat.Normalize(sess.Guest)
		return sess.Guest, nil
	}
	return s.users.History(ctx, sess.Username)
}

// persistHistory writes the conversation back to wherever it came from.
func (s *Server) persistHistory(ctx context.Context, sess *sessions.Session, conv chat.Conversation) {
	if sess.IsGuest() {
		sess.Guest = conv
		return
	}
	if err := s.users.UpdateHistory(ctx, sess.Username, conv); err != nil {
		s.logger.Error(ctx, "error persisting history", "username", sess.Username, "error", err)
	}
}

// mergeGuestHistory folds any real guest exchange into the account's stored
// history after authentication, then discards the guest conversation. It
// reports whether a merge happened.
func (s *Server) mergeGuestHistory(ctx context.Context, sess *sessions.Session, history chat.Conversation) bool {
	merged, ok := chat.MergeGuest(history, sess.Guest)
	if !ok {
		return false
	}
	if err := s.users.UpdateHistory(ctx, sess.Username, merged); err != nil {
		s.logger.Error(ctx, "error saving merged history", "username", sess.Username, "error", err)
	}
	sess.Guest = nil
	return true
}

// ─────────────────────────────────────────────
// Chat page
// ─────────────────────────────────────────────

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	sess := s.session(w, r)

	switch r.Method {
	case http.MethodGet:
		s.renderChat(w, r, sess)
	case http.MethodPost:
		s.handleMessage(w, r, sess)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderChat(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	conv, err := s.resolveHistory(r.Context(), sess)
	if err != nil {
		// Stored account vanished underneath the session; start it over.
		s.logger.Warn(r.Context(), "history unavailable", "username", sess.Username, "error", err)
		conv = chat.NewConversation()
	}

	page := chatPage{
		Username: sess.Username,
		Flashes:  sess.TakeFlashes(),
	}
	for _, m := range conv {
		if m.Role == chat.RoleSystem {
			continue
		}
		page.Messages = append(page.Messages, messageView{Role: string(m.Role), Content: m.Content})
	}

	s.render(w, r, "chat.html", page)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	message := r.FormValue("message")
	if message != "" {
		conv, err := s.resolveHistory(r.Context(), sess)
		if err != nil {
			s.logger.Error(r.Context(), "error resolving history", "error", err)
			redirect(w, r, "/")
			return
		}
		conv, _ = s.chat.Exchange(r.Context(), conv, message)
		s.persistHistory(r.Context(), sess, conv)
	}
	redirect(w, r, "/")
}

// ─────────────────────────────────────────────
// Register / Login / Logout
// ─────────────────────────────────────────────

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	if r.Method == http.MethodGet {
		s.render(w, r, "register.html", authPage{Flashes: sess.TakeFlashes()})
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	if username == "" || password == "" {
		sess.AddFlash("error", "Username and password are required.")
		redirect(w, r, "/register")
		return
	}

	account, err := s.users.Register(r.Context(), username, password, chat.NewConversation())
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			sess.AddFlash("error", "Username already exists.")
		} else {
			sess.AddFlash("error", "Something went wrong. Please try again.")
		}
		redirect(w, r, "/register")
		return
	}

	sess.Username = account.Username
	s.mergeGuestHistory(r.Context(), sess, account.History)

	sess.AddFlash("success", "Registration successful! Your conversation has been saved.")
	redirect(w, r, "/")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	if r.Method == http.MethodGet {
		s.render(w, r, "login.html", authPage{Flashes: sess.TakeFlashes()})
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	account, err := s.users.Authenticate(r.Context(), username, password)
	if err != nil {
		sess.AddFlash("error", "Invalid username or password.")
		redirect(w, r, "/login")
		return
	}

	sess.Username = account.Username
	if s.mergeGuestHistory(r.Context(), sess, account.History) {
		sess.AddFlash("success", "Welcome back! Your previous session has been merged.")
	}

	redirect(w, r, "/")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	// Identity only; any guest state on this session is independent.
	sess.Username = ""
	sess.AddFlash("success", "You have been logged out.")
	redirect(w, r, "/")
}

// ─────────────────────────────────────────────
// Clear
// ─────────────────────────────────────────────

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	if sess.IsGuest() {
		sess.Guest = nil
	} else if err := s.users.ResetHistory(r.Context(), sess.Username); err != nil {
		s.logger.Error(r.Context(), "error resetting history", "username", sess.Username, "error", err)
	}

	redirect(w, r, "/")
}

// ─────────────────────────────────────────────
// Voice endpoint
// ─────────────────────────────────────────────

func (s *Server) handleVR(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	s.render(w, r, "vr.html", chatPage{Username: sess.Username, Flashes: sess.TakeFlashes()})
}

func (s *Server) handleVRChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	sess := s.session(w, r)

	var req vrChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.Message == "" {
		badRequest(w, common.ErrMissingMessage.Error())
		return
	}

	conv, err := s.resolveHistory(r.Context(), sess)
	if err != nil {
		s.logger.Error(r.Context(), "error resolving history", "error", err)
		conv = chat.NewConversation()
	}

	conv, reply := s.chat.Exchange(r.Context(), conv, req.Message)
	s.persistHistory(r.Context(), sess, conv)

	writeJSON(w, http.StatusOK, vrChatResponse{Reply: reply})
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
