package user

import (
	"errors"
	"net/http"

	"wardrobe-be/internal/auth"
	"wardrobe-be/internal/storage"
	"wardrobe-be/internal/transport"
	"wardrobe-be/internal/utils"
)

type Handler struct {
	svc            Service
	baseURL        string
	maxUploadBytes int64
	secureCookies  bool
}

func NewHandler(svc Service, baseURL string, maxUploadBytes int64, secureCookies bool) *Handler {
	return &Handler{
		svc:            svc,
		baseURL:        baseURL,
		maxUploadBytes: maxUploadBytes,
		secureCookies:  secureCookies,
	}
}

type sessionResponse struct {
	User  Response `json:"user"`
	Token string   `json:"token"`
}

type userResponse struct {
	User Response `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var in SignupInput
	if err := transport.DecodeJSON(r, &in); err != nil {
		transport.Error(w, http.StatusBadRequest, "Invalid signup")
		return
	}

	token, u, err := h.svc.Signup(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	auth.SetAccessTokenCookie(w, token, h.secureCookies)
	transport.JSON(w, http.StatusCreated, sessionResponse{User: ToResponse(u, h.baseURL), Token: token})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := transport.DecodeJSON(r, &in); err != nil {
		transport.Error(w, http.StatusBadRequest, "Invalid login credentials")
		return
	}

	token, u, err := h.svc.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	auth.SetAccessTokenCookie(w, token, h.secureCookies)
	transport.JSON(w, http.StatusOK, sessionResponse{User: ToResponse(u, h.baseURL), Token: token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.Unauthorized(w)
		return
	}

	if err := h.svc.Logout(r.Context(), userID, utils.GetTokenFromContext(r.Context())); err != nil {
		transport.InternalError(w, r, err)
		return
	}

	auth.ClearAccessTokenCookie(w, h.secureCookies)
	transport.JSON(w, http.StatusOK, transport.Message{Message: "Logout successful"})
}

func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.Unauthorized(w)
		return
	}

	if err := h.svc.LogoutAll(r.Context(), userID); err != nil {
		transport.InternalError(w, r, err)
		return
	}

	auth.ClearAccessTokenCookie(w, h.secureCookies)
	transport.JSON(w, http.StatusOK, transport.Message{Message: "Logout all successful"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.Unauthorized(w)
		return
	}

	u, err := h.svc.Me(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	transport.JSON(w, http.StatusOK, userResponse{User: ToResponse(u, h.baseURL)})
}

// UpdateMe accepts either a multipart form ("user" JSON plus an optional
// "icon" file) or a plain JSON body.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.Unauthorized(w)
		return
	}

	var (
		in   UpdateProfileInput
		icon *storage.Upload
	)

	if transport.IsMultipart(r) {
		up, cleanup, err := transport.DecodeMultipart(w, r, h.maxUploadBytes, "user", &in, "icon")
		defer cleanup()
		if err != nil {
			transport.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		icon = up
	} else if err := transport.DecodeJSON(r, &in); err != nil {
		transport.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), userID, in, icon)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	transport.JSON(w, http.StatusOK, userResponse{User: ToResponse(u, h.baseURL)})
}

func (h *Handler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		transport.Unauthorized(w)
		return
	}

	u, err := h.svc.Delete(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	auth.ClearAccessTokenCookie(w, h.secureCookies)
	transport.JSON(w, http.StatusOK, userResponse{User: ToResponse(u, h.baseURL)})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrDuplicateEmail), errors.Is(err, ErrInvalidCredentials):
		transport.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnauthorized):
		transport.Unauthorized(w)
	case errors.Is(err, ErrUserNotFound):
		transport.NotFound(w, "User not found")
	default:
		transport.InternalError(w, r, err)
	}
}
