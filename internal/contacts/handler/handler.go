package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"contactbook/internal/contacts/models"
	"contactbook/internal/platform/middleware"
	id "contactbook/pkg/domain"
	dErrors "contactbook/pkg/domain-errors"
	"contactbook/pkg/platform/httputil"
	"contactbook/pkg/requestcontext"
)

// Service defines the contact operations the handler needs.
type Service interface {
	List(ctx context.Context, filter models.Filter) ([]*models.Contact, error)
	UpcomingBirthdays(ctx context.Context) ([]*models.Contact, error)
	Get(ctx context.Context, contactID id.ContactID) (*models.Contact, error)
	Create(ctx context.Context, fields models.Fields) (*models.Contact, error)
	Update(ctx context.Context, contactID id.ContactID, fields models.Fields) (*models.Contact, error)
	Remove(ctx context.Context, contactID id.ContactID) (*models.Contact, error)
}

// RouteLimiter returns the rate limit middleware for an endpoint class.
type RouteLimiter interface {
	Limit(class string) func(http.Handler) http.Handler
}

// Endpoint classes used as rate limit buckets.
const (
	ClassList      = "contacts.list"
	ClassBirthdays = "contacts.birthdays"
	ClassGet       = "contacts.get"
	ClassCreate    = "contacts.create"
	ClassUpdate    = "contacts.update"
	ClassRemove    = "contacts.remove"
)

// Handler serves /contacts. It expects RequireAuth to have run.
type Handler struct {
	service Service
	logger  *slog.Logger
	limiter RouteLimiter
}

type Option func(*Handler)

// WithRateLimiter limits each route by its endpoint class.
func WithRateLimiter(l RouteLimiter) Option {
	return func(h *Handler) {
		h.limiter = l
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the contact routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/contacts", func(r chi.Router) {
		r.With(h.limit(ClassList)).Get("/", h.handleList)
		r.With(h.limit(ClassBirthdays)).Get("/birthdays", h.handleUpcomingBirthdays)
		r.With(h.limit(ClassCreate), middleware.ContentTypeJSON).Post("/", h.handleCreate)
		r.With(h.limit(ClassGet)).Get("/{contactID}", h.handleGet)
		r.With(h.limit(ClassUpdate), middleware.ContentTypeJSON).Put("/{contactID}", h.handleUpdate)
		r.With(h.limit(ClassRemove)).Delete("/{contactID}", h.handleRemove)
	})
}

func (h *Handler) limit(class string) func(http.Handler) http.Handler {
	if h.limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return h.limiter.Limit(class)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contacts, err := h.service.List(ctx, filterFromQuery(r))
	if err != nil {
		h.writeError(ctx, w, "failed to list contacts", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toContactResponses(contacts))
}

func (h *Handler) handleUpcomingBirthdays(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contacts, err := h.service.UpcomingBirthdays(ctx)
	if err != nil {
		h.writeError(ctx, w, "failed to list upcoming birthdays", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toContactResponses(contacts))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contactID, ok := h.contactID(w, r)
	if !ok {
		return
	}
	contact, err := h.service.Get(ctx, contactID)
	if err != nil {
		h.writeError(ctx, w, "failed to get contact", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toContactResponse(contact))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[ContactRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	contact, err := h.service.Create(ctx, req.Fields())
	if err != nil {
		h.writeError(ctx, w, "failed to create contact", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toContactResponse(contact))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contactID, ok := h.contactID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ContactRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	contact, err := h.service.Update(ctx, contactID, req.Fields())
	if err != nil {
		h.writeError(ctx, w, "failed to update contact", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toContactResponse(contact))
}

func (h *Handler) handleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	contactID, ok := h.contactID(w, r)
	if !ok {
		return
	}
	contact, err := h.service.Remove(ctx, contactID)
	if err != nil {
		h.writeError(ctx, w, "failed to remove contact", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toContactResponse(contact))
}

// contactID parses the path parameter. A malformed id is reported as not
// found, the same as an id owned by someone else.
func (h *Handler) contactID(w http.ResponseWriter, r *http.Request) (id.ContactID, bool) {
	contactID, err := id.ParseContactID(chi.URLParam(r, "contactID"))
	if err != nil {
		ctx := r.Context()
		h.logger.WarnContext(ctx, "invalid contact id",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "contact not found"))
		return id.ContactID{}, false
	}
	return contactID, true
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

// filterFromQuery treats an empty parameter as absent, so ?name= lists everything.
func filterFromQuery(r *http.Request) models.Filter {
	q := r.URL.Query()
	term := func(key string) *string {
		v := q.Get(key)
		if v == "" {
			return nil
		}
		return &v
	}
	return models.Filter{
		Name:     term("name"),
		LastName: term("last_name"),
		Email:    term("email"),
	}
}
