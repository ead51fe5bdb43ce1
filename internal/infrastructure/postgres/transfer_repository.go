package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/transaction"
)

// TransferRepository is the local transfer ledger.
type TransferRepository struct {
	db *DB
}

// NewTransferRepository creates a new transfer repository
func NewTransferRepository(db *DB) *TransferRepository {
	return &TransferRepository{db: db}
}

const transferColumns = `id, name, amount, channel, category, sender_user_id, receiver_user_id,
		sender_connection_id, receiver_connection_id, email, created_at`

func scanTransfer(row rowScanner) (*transaction.Transfer, error) {
	var (
		t                        transaction.Transfer
		name, channel, category  sql.NullString
		amount                   sql.NullFloat64
		senderUser, receiverUser sql.NullString
		email                    sql.NullString
	)
	err := row.Scan(
		&t.ID, &name, &amount, &channel, &category, &senderUser, &receiverUser,
		&t.SenderConnectionID, &t.ReceiverConnectionID, &email, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if name.Valid {
		t.Name = &name.String
	}
	if amount.Valid {
		t.Amount = &amount.Float64
	}
	if channel.Valid {
		t.Channel = &channel.String
	}
	if category.Valid {
		t.Category = &category.String
	}
	t.SenderUserID = senderUser.String
	t.ReceiverUserID = receiverUser.String
	t.Email = email.String
	return &t, nil
}

// Create records a transfer. Self-transfers are accepted.
func (r *TransferRepository) Create(ctx context.Context, params transaction.CreateTransferParams) (*transaction.Transfer, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", bank.ErrInvalidInput, err)
	}

	query := `
		INSERT INTO transfers (id, name, amount, channel, category, sender_user_id, receiver_user_id,
		                       sender_connection_id, receiver_connection_id, email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + transferColumns

	t, err := scanTransfer(r.db.QueryRowContext(ctx, query,
		uuid.NewString(), params.Name, params.Amount, params.Channel, params.Category,
		nullString(params.SenderUserID), nullString(params.ReceiverUserID),
		params.SenderConnectionID, params.ReceiverConnectionID, nullString(params.Email),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}
	return t, nil
}

// ListByConnectionID returns the transfers sent or received by the connection, newest first
func (r *TransferRepository) ListByConnectionID(ctx context.Context, connectionID string) ([]*transaction.Transfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE sender_connection_id = $1 OR receiver_connection_id = $1
		ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, connectionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []*transaction.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfers: %w", err)
	}
	return transfers, nil
}
