package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"contactbook/internal/contacts/birthday"
	"contactbook/internal/contacts/models"
	"contactbook/internal/platform/postgres"
	id "contactbook/pkg/domain"
	"contactbook/pkg/platform/sentinel"
)

const contactColumns = "id, user_id, name, last_name, email, phone, born_date"

// PostgresStore persists contacts in PostgreSQL. Every statement carries
// user_id in its WHERE clause; update and delete are single statements.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed contact store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context, userID id.UserID, filter models.Filter) ([]*models.Contact, error) {
	conds := []string{"user_id = $1"}
	args := []any{uuid.UUID(userID)}
	for _, term := range filter.Fields() {
		args = append(args, term.Value)
		conds = append(conds, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(term.Column), len(args)))
	}
	query := "SELECT " + contactColumns + " FROM contacts WHERE " + strings.Join(conds, " AND ") + " ORDER BY id"

	contacts, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

func (s *PostgresStore) UpcomingBirthdays(ctx context.Context, userID id.UserID, window birthday.Window) ([]*models.Contact, error) {
	query := `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE user_id = $1
		  AND (
			(EXTRACT(MONTH FROM born_date) = $2 AND EXTRACT(DAY FROM born_date) <= $3)
			OR (EXTRACT(MONTH FROM born_date) = $4 AND EXTRACT(DAY FROM born_date) >= $5)
		  )
		ORDER BY id
	`
	contacts, err := s.query(ctx, query,
		uuid.UUID(userID),
		int(window.End.Month()), window.End.Day(),
		int(window.Start.Month()), window.Start.Day(),
	)
	if err != nil {
		return nil, fmt.Errorf("list upcoming birthdays: %w", err)
	}
	return contacts, nil
}

func (s *PostgresStore) Get(ctx context.Context, userID id.UserID, contactID id.ContactID) (*models.Contact, error) {
	query := "SELECT " + contactColumns + " FROM contacts WHERE id = $1 AND user_id = $2"
	row := postgres.Executor(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(contactID), uuid.UUID(userID))
	c, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("find contact: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Create(ctx context.Context, contact *models.Contact) error {
	query := `
		INSERT INTO contacts (` + contactColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := postgres.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(contact.ID), uuid.UUID(contact.UserID),
		contact.Name, contact.LastName, contact.Email, contact.Phone, contact.BirthDate,
	)
	if err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, userID id.UserID, contactID id.ContactID, fields models.Fields) (*models.Contact, error) {
	query := `
		UPDATE contacts
		SET name = $3, last_name = $4, email = $5, phone = $6, born_date = $7
		WHERE id = $1 AND user_id = $2
		RETURNING ` + contactColumns
	row := postgres.Executor(ctx, s.db).QueryRowContext(ctx, query,
		uuid.UUID(contactID), uuid.UUID(userID),
		fields.Name, fields.LastName, fields.Email, fields.Phone, models.DateOnly(fields.BirthDate),
	)
	c, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) Remove(ctx context.Context, userID id.UserID, contactID id.ContactID) (*models.Contact, error) {
	query := "DELETE FROM contacts WHERE id = $1 AND user_id = $2 RETURNING " + contactColumns
	row := postgres.Executor(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(contactID), uuid.UUID(userID))
	c, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("remove contact: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]*models.Contact, error) {
	rows, err := postgres.Executor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]*models.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var c models.Contact
	var contactID, userID uuid.UUID
	err := row.Scan(&contactID, &userID, &c.Name, &c.LastName, &c.Email, &c.Phone, &c.BirthDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	c.ID = id.ContactID(contactID)
	c.UserID = id.UserID(userID)
	c.BirthDate = models.DateOnly(c.BirthDate)
	return &c, nil
}
