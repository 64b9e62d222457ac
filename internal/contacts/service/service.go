// Package service holds the owner-scoped contact operations. The account
// identity always comes from the request context, never from input.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"contactbook/internal/contacts/birthday"
	"contactbook/internal/contacts/models"
	"contactbook/internal/platform/metrics"
	id "contactbook/pkg/domain"
	dErrors "contactbook/pkg/domain-errors"
	"contactbook/pkg/platform/sentinel"
	"contactbook/pkg/requestcontext"
)

const tracerName = "contactbook/internal/contacts"

// Store is the contact persistence contract. Every method is scoped by
// owner; a contact owned by someone else is reported as sentinel.ErrNotFound.
type Store interface {
	List(ctx context.Context, userID id.UserID, filter models.Filter) ([]*models.Contact, error)
	UpcomingBirthdays(ctx context.Context, userID id.UserID, window birthday.Window) ([]*models.Contact, error)
	Get(ctx context.Context, userID id.UserID, contactID id.ContactID) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) error
	Update(ctx context.Context, userID id.UserID, contactID id.ContactID, fields models.Fields) (*models.Contact, error)
	Remove(ctx context.Context, userID id.UserID, contactID id.ContactID) (*models.Contact, error)
}

type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("contact store is required")
	}

	svc := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *Service) List(ctx context.Context, filter models.Filter) ([]*models.Contact, error) {
	ctx, span := s.start(ctx, "contacts.List")
	defer span.End()

	userID, err := owner(ctx)
	if err != nil {
		return nil, s.fail(span, err)
	}
	span.SetAttributes(attribute.Int("contacts.filter_terms", len(filter.Fields())))

	contacts, err := s.store.List(ctx, userID, filter)
	if err != nil {
		return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list contacts"))
	}
	return contacts, nil
}

// UpcomingBirthdays returns the caller's contacts whose birthday falls in
// the seven days starting at the request date (UTC).
func (s *Service) UpcomingBirthdays(ctx context.Context) ([]*models.Contact, error) {
	ctx, span := s.start(ctx, "contacts.UpcomingBirthdays")
	defer span.End()

	userID, err := owner(ctx)
	if err != nil {
		return nil, s.fail(span, err)
	}

	window := birthday.NewWindow(requestcontext.Now(ctx).UTC())
	span.SetAttributes(
		attribute.String("birthday.window_start", window.Start.Format("2006-01-02")),
		attribute.String("birthday.window_end", window.End.Format("2006-01-02")),
	)

	contacts, err := s.store.UpcomingBirthdays(ctx, userID, window)
	if err != nil {
		return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list upcoming birthdays"))
	}
	s.metrics.ObserveBirthdayMatches(len(contacts))
	return contacts, nil
}

func (s *Service) Get(ctx context.Context, contactID id.ContactID) (*models.Contact, error) {
	ctx, span := s.start(ctx, "contacts.Get")
	defer span.End()

	userID, err := owner(ctx)
	if err != nil {
		return nil, s.fail(span, err)
	}

	contact, err := s.store.Get(ctx, userID, contactID)
	if err != nil {
		return nil, s.fail(span, translate(err, "failed to load contact"))
	}
	return contact, nil
}

func (s *Service) Create(ctx context.Context, fields models.Fields) (*models.Contact, error) {
	ctx, span := s.start(ctx, "contacts.Create")
	defer span.End()

	userID, err := owner(ctx)
	if err != nil {
		return nil, s.fail(span, err)
	}

	contact := models.NewContact(userID, fields)
	if err := s.store.Create(ctx, contact); err != nil {
		return nil, s.fail(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create contact"))
	}

	s.metrics.IncrementContactsCreated()
	s.logger.InfoContext(ctx, "contact created",
		"contact_id", contact.ID.String(),
		"user_id", userID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return contact, nil
}

func (s *Service) Update(ctx context.Context, contactID id.ContactID, fields models.Fields) (*models.Contact, error) {
	ctx, span := s.start(ctx, "contacts.Update")
	defer span.End()

	userID, err := owner(ctx)
	if err != nil {
		return nil, s.fail(span, err)
	}

	contact, err := s.store.Update(ctx, userID, contactID, fields)
	if err != nil {
		return nil, s.fail(span, translate(err, "failed to update contact"))
	}
	s.metrics.IncrementContactsUpdated()
	return contact, nil
}

// Remove deletes the contact and returns its last state.
func (s *Service) Remove(ctx context.Context, contactID id.ContactID) (*models.Contact, error) {
	ctx, span := s.start(ctx, "contacts.Remove")
	defer span.End()

	userID, err := owner(ctx)
	if err != nil {
		return nil, s.fail(span, err)
	}

	contact, err := s.store.Remove(ctx, userID, contactID)
	if err != nil {
		return nil, s.fail(span, translate(err, "failed to remove contact"))
	}

	s.metrics.IncrementContactsDeleted()
	s.logger.InfoContext(ctx, "contact removed",
		"contact_id", contactID.String(),
		"user_id", userID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return contact, nil
}

func (s *Service) start(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name)
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func owner(ctx context.Context) (id.UserID, error) {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return userID, nil
}

// translate maps store errors onto the caller-facing taxonomy. A missing
// contact and a contact owned by someone else are the same NotFound.
func translate(err error, internalMsg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "contact not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internalMsg)
}
