package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"contactbook/internal/avatar/models"
	dErrors "contactbook/pkg/domain-errors"
	"contactbook/pkg/platform/httputil"
	"contactbook/pkg/requestcontext"
)

// DefaultMaxUploadBytes bounds the multipart body of an avatar upload.
const DefaultMaxUploadBytes = 5 << 20

// Service defines the account operations served under /users.
type Service interface {
	Me(ctx context.Context) (*models.Snapshot, error)
	UpdateAvatar(ctx context.Context, raw []byte) (*models.Snapshot, error)
}

// Handler serves /users. It expects RequireAuth to have run.
type Handler struct {
	service        Service
	logger         *slog.Logger
	maxUploadBytes int64
}

func New(service Service, logger *slog.Logger, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{service: service, logger: logger, maxUploadBytes: maxUploadBytes}
}

// Register registers the account routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/users/me", h.handleMe)
	r.Patch("/users/avatar", h.handleUpdateAvatar)
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(s *models.Snapshot) UserResponse {
	return UserResponse{
		ID:        s.ID,
		Email:     s.Email,
		Username:  s.Username,
		AvatarURL: s.AvatarURL,
		CreatedAt: s.CreatedAt,
	}
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snapshot, err := h.service.Me(ctx)
	if err != nil {
		h.writeError(ctx, w, "failed to load current account", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(snapshot))
}

func (h *Handler) handleUpdateAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(ctx, w, "invalid avatar upload", err)
		return
	}

	snapshot, err := h.service.UpdateAvatar(ctx, raw)
	if err != nil {
		h.writeError(ctx, w, "failed to update avatar", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(snapshot))
}

// readUpload returns the bytes of the multipart "file" field.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.ContentLength > h.maxUploadBytes {
		return nil, dErrors.New(dErrors.CodePayloadTooLarge, "avatar file is too large")
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, dErrors.New(dErrors.CodePayloadTooLarge, "avatar file is too large")
		}
		return nil, dErrors.New(dErrors.CodeBadRequest, "expected a multipart form")
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "file is required")
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read avatar file")
	}
	if len(raw) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "file is empty")
	}
	return raw, nil
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	attrs := []any{
		"request_id", requestcontext.RequestID(ctx),
		"user_id", requestcontext.UserID(ctx).String(),
		"error", err,
	}
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, attrs...)
	} else {
		h.logger.WarnContext(ctx, msg, attrs...)
	}
	httputil.WriteError(w, err)
}
