package httpapi

import (
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/avolkov/authkeeper/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// userView is the public projection of a user; the password hash is never
// serialized.
type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
	IsActive bool   `json:"is_active"`
}

func toUserView(u *models.User) userView {
	return userView{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
		IsActive: u.IsActive,
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

func newTokenResponse(access, refresh string) tokenResponse {
	return tokenResponse{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type patchRequest struct {
	UserID   *string `json:"user_id"`
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"is_admin"`
	IsActive *bool   `json:"is_active"`
}

type statusResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// handleRegister creates a user account: 201 with the public view, 400 when
// the email or username is taken, 422 on schema problems.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeUnprocessable(w, "invalid JSON body")
		return
	}
	if req.Password == "" {
		writeUnprocessable(w, "password is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeUnprocessable(w, "invalid email")
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.logger.Info(r.Context(), "user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, toUserView(user))
}

// handleLogin exchanges form-encoded credentials for a token pair.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeUnprocessable(w, "invalid form body")
		return
	}
	login := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if login == "" || password == "" {
		writeUnprocessable(w, "username and password are required")
		return
	}

	pair, err := s.users.Login(r.Context(), login, password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newTokenResponse(pair.AccessToken, pair.RefreshToken))
}

// handleMe returns the caller's own public view.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, toUserView(actor))
}

// handleRefresh rotates the presented refresh token. The access token in the
// Authorization header and the refresh value must name the same subject.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "unauthorized")
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeUnprocessable(w, "refresh_token is required")
		return
	}

	pair, err := s.users.Refresh(r.Context(), actor.ID, req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newTokenResponse(pair.AccessToken, pair.RefreshToken))
}

// handleLogout revokes the caller's live refresh token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "unauthorized")
		return
	}

	if err := s.users.Logout(r.Context(), actor.ID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: true, Message: "logged out"})
}

// handlePatchUser applies a self- or admin-patch.
func (s *Server) handlePatchUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "unauthorized")
		return
	}

	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeUnprocessable(w, "invalid JSON body")
		return
	}
	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			writeUnprocessable(w, "invalid email")
			return
		}
	}

	patch := models.UserPatch{
		UserID:   req.UserID,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
		IsActive: req.IsActive,
	}

	updated, err := s.users.Patch(r.Context(), actor, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toUserView(updated))
}

// handleDeleteUser removes another account; admin-only, self-delete denied.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "unauthorized")
		return
	}

	targetID := chi.URLParam(r, "id")

	if err := s.users.Delete(r.Context(), actor, targetID); err != nil {
		writeServiceError(w, err)
		return
	}

	s.logger.Info(r.Context(), "user deleted", "user_id", targetID, "actor_id", actor.ID)
	writeJSON(w, http.StatusOK, statusResponse{Status: true, Message: "user deleted"})
}
