package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"horizon/internal/domain/bank"
	"horizon/internal/infrastructure/crypto"
)

// ConnectionRepository stores bank connections with their access tokens encrypted.
type ConnectionRepository struct {
	db        *DB
	encryptor *crypto.Encryptor
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(db *DB, encryptor *crypto.Encryptor) *ConnectionRepository {
	return &ConnectionRepository{db: db, encryptor: encryptor}
}

const connectionColumns = `id, user_id, access_token, item_id, account_id, shareable_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ConnectionRepository) scan(row rowScanner) (*bank.Connection, error) {
	var (
		conn      bank.Connection
		encrypted string
		itemID    sql.NullString
		accountID sql.NullString
	)
	if err := row.Scan(&conn.ID, &conn.UserID, &encrypted, &itemID, &accountID, &conn.ShareableID, &conn.CreatedAt); err != nil {
		return nil, err
	}

	token, err := r.encryptor.Decrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token for connection %s: %w", conn.ID, err)
	}
	conn.AccessToken = token
	conn.ItemID = itemID.String
	conn.AccountID = accountID.String
	return &conn, nil
}

// Create stores a new connection
func (r *ConnectionRepository) Create(ctx context.Context, params bank.CreateConnectionParams) (*bank.Connection, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", bank.ErrInvalidInput, err)
	}

	encrypted, err := r.encryptor.Encrypt(params.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}

	shareableID := params.ShareableID
	if shareableID == "" {
		shareableID = uuid.NewString()
	}

	query := `
		INSERT INTO bank_connections (id, user_id, access_token, item_id, account_id, shareable_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + connectionColumns

	conn, err := r.scan(r.db.QueryRowContext(ctx, query,
		uuid.NewString(), params.UserID, encrypted,
		nullString(params.ItemID), nullString(params.AccountID), shareableID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create bank connection: %w", err)
	}
	return conn, nil
}

// GetByID returns bank.ErrConnectionNotFound when the connection does not exist
func (r *ConnectionRepository) GetByID(ctx context.Context, id string) (*bank.Connection, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, bank.ErrConnectionNotFound
	}

	query := `SELECT ` + connectionColumns + ` FROM bank_connections WHERE id = $1`

	conn, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, bank.ErrConnectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bank connection: %w", err)
	}
	return conn, nil
}

// ListByUserID returns the user's connections, oldest first
func (r *ConnectionRepository) ListByUserID(ctx context.Context, userID string) ([]*bank.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM bank_connections WHERE user_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank connections: %w", err)
	}
	defer rows.Close()

	var conns []*bank.Connection
	for rows.Next() {
		conn, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank connection: %w", err)
		}
		conns = append(conns, conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bank connections: %w", err)
	}
	return conns, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
