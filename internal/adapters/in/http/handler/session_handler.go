// internal/adapters/in/http/handler/session_handler.go
package handler

import (
	"net/http"

	"coplace/internal/adapters/in/http/middleware"
	usecase "coplace/internal/application/usecase"
	userdom "coplace/internal/domain/user"
)

// SessionHandler is the sign-in / sign-out / onboarding surface.
//
// - POST   /session  start the cart subscription
// - DELETE /session  stop it and drop local cart state
// - GET    /me       current profile
// - PUT    /me       register display name + role
type SessionHandler struct {
	sessions *usecase.CartSessions
	profiles *usecase.ProfileUsecase
}

func NewSessionHandler(sessions *usecase.CartSessions, profiles *usecase.ProfileUsecase) *SessionHandler {
	return &SessionHandler{sessions: sessions, profiles: profiles}
}

type sessionView struct {
	UID         string       `json:"uid"`
	DisplayName string       `json:"displayName"`
	Email       string       `json:"email,omitempty"`
	Role        userdom.Role `json:"role,omitempty"`
	Registered  bool         `json:"registered"`
}

func toSessionView(s usecase.Session) sessionView {
	return sessionView{
		UID:         s.UID,
		DisplayName: s.DisplayName,
		Email:       s.Email,
		Role:        s.Role,
		Registered:  s.Role.Valid(),
	}
}

func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.CurrentSession(r)
	if !ok {
		unauthorized(w)
		return
	}
	agg, err := h.sessions.Login(r.Context(), sess)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session": toSessionView(sess),
		"cart":    toCartView(agg.Snapshot()),
	})
}

func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.CurrentSession(r)
	if !ok {
		unauthorized(w)
		return
	}
	h.sessions.Logout(sess.UID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.CurrentSession(r)
	if !ok {
		unauthorized(w)
		return
	}
	writeJSON(w, http.StatusOK, toSessionView(sess))
}

type registerRequest struct {
	DisplayName string       `json:"displayName"`
	Role        userdom.Role `json:"role"`
}

func (h *SessionHandler) Register(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.CurrentIdentity(r)
	if !ok {
		unauthorized(w)
		return
	}
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if req.Role == "" {
		req.Role = userdom.RoleBuyer
	}

	p, err := h.profiles.Register(r.Context(), id, req.DisplayName, req.Role)
	if err != nil {
		writeErr(w, err)
		return
	}
	sess := usecase.SessionFromIdentity(id, p)
	if _, live := h.sessions.Get(sess.UID); live {
		// refresh the denormalized name on the live cart session
		_, _ = h.sessions.Login(r.Context(), sess)
	}
	writeJSON(w, http.StatusOK, toSessionView(sess))
}
