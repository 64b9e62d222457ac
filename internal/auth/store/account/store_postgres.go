package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"contactbook/internal/auth/models"
	"contactbook/internal/platform/postgres"
	id "contactbook/pkg/domain"
	"contactbook/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed account store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, email, username, avatar_url, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			username = EXCLUDED.username,
			avatar_url = EXCLUDED.avatar_url
	`
	_, err := postgres.Executor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(account.ID), account.Email, account.Username, account.AvatarURL, account.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return sentinel.ErrInvalidState
		}
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.Account, error) {
	query := `SELECT id, email, username, avatar_url, created_at FROM accounts WHERE id = $1`
	row := postgres.Executor(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(userID))
	account, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("find account by id: %w", err)
	}
	return account, nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT id, email, username, avatar_url, created_at FROM accounts WHERE email = $1`
	row := postgres.Executor(ctx, s.db).QueryRowContext(ctx, query, email)
	account, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("find account by email: %w", err)
	}
	return account, nil
}

func (s *PostgresStore) UpdateAvatarURL(ctx context.Context, email, avatarURL string) (*models.Account, error) {
	query := `
		UPDATE accounts SET avatar_url = $2
		WHERE email = $1
		RETURNING id, email, username, avatar_url, created_at
	`
	row := postgres.Executor(ctx, s.db).QueryRowContext(ctx, query, email, avatarURL)
	account, err := scanAccount(row)
	if err != nil {
		return nil, fmt.Errorf("update account avatar: %w", err)
	}
	return account, nil
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	var rawID uuid.UUID
	if err := row.Scan(&rawID, &a.Email, &a.Username, &a.AvatarURL, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	a.ID = id.UserID(rawID)
	return &a, nil
}
