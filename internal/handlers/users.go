package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/minetrack/apiserver/internal/logging"
	"github.com/minetrack/apiserver/internal/services"
	"github.com/minetrack/apiserver/types"
)

const (
	maxAvatarBytes  = 5 << 20
	formFieldAvatar = "file"
)

// UserHandler provides account endpoints.
type UserHandler struct {
	userService *services.UserService
	log         logging.Logger
}

func NewUserHandler(userService *services.UserService, log logging.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

func (h *UserHandler) routes() routeGroup {
	return routeGroup{
		prefix: "/users",
		tag:    "users",
		routes: []route{
			{method: http.MethodPost, pattern: "/register", summary: "Register an account", public: true, status: http.StatusOK, handler: h.Register},
			{method: http.MethodPost, pattern: "/login", summary: "Exchange credentials for an access token", public: true, status: http.StatusOK, handler: h.Login},
			{method: http.MethodGet, pattern: "/me", summary: "Current user", status: http.StatusOK, handler: h.Me},
			{method: http.MethodPatch, pattern: "/me", summary: "Update own profile", status: http.StatusOK, handler: h.UpdateMe},
			{method: http.MethodPut, pattern: "/me/change-password", summary: "Change own password", status: http.StatusNoContent, handler: h.ChangePassword},
			{method: http.MethodPost, pattern: "/me/avatar", summary: "Upload own avatar", status: http.StatusOK, handler: h.UploadAvatar},
			{method: http.MethodGet, pattern: "/admin-only", summary: "Administrator greeting", roles: userManagers, status: http.StatusOK, handler: h.AdminOnly},
			{method: http.MethodGet, pattern: "/all", summary: "List users", roles: userManagers, status: http.StatusOK, handler: h.ListUsers},
			{method: http.MethodPatch, pattern: "/{id}/update-role", summary: "Change a user's role or position", roles: userManagers, status: http.StatusOK, handler: h.UpdateRole},
			{method: http.MethodDelete, pattern: "/{id}", summary: "Delete a user", roles: userManagers, status: http.StatusNoContent, handler: h.DeleteUser},
		},
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type AvatarResponse struct {
	AvatarURL string `json:"avatar_url"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.Registration
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userService.Register(r.Context(), req)
	if err != nil {
		respondError(w, r, h.log, err, "user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	token, err := h.userService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.log, err, "user")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req types.ProfileUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, req)
	if err != nil {
		respondError(w, r, h.log, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userService.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, r, h.log, err, "user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes+(1<<20))
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "avatar is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldAvatar)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	if header.Size > maxAvatarBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "avatar is too large")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "file must be an image")
		return
	}

	url, err := h.userService.UploadAvatar(r.Context(), user.ID, file, header.Size)
	if err != nil {
		respondError(w, r, h.log, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, AvatarResponse{AvatarURL: url})
}

func (h *UserHandler) AdminOnly(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Hello, " + user.Fullname + "! You have access."})
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respondError(w, r, h.log, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req types.RoleUpdate
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.userService.UpdateRole(r.Context(), actor, id, req)
	if err != nil {
		respondError(w, r, h.log, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.userService.Delete(r.Context(), actor, id); err != nil {
		respondError(w, r, h.log, err, "user")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
