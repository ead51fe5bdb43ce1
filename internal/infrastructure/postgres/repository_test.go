package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"horizon/internal/domain/bank"
	"horizon/internal/domain/transaction"
	"horizon/internal/infrastructure/crypto"
)

const testKey = "0123456789abcdef0123456789abcdef"

// fakeRow scans fixed column values the way database/sql would
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: got %d destinations for %d columns", len(dest), len(r.values))
	}
	for i, d := range dest {
		switch d := d.(type) {
		case sql.Scanner:
			if err := d.Scan(r.values[i]); err != nil {
				return err
			}
		case *string:
			*d = r.values[i].(string)
		case *time.Time:
			*d = r.values[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

func TestConnectionRepository_Scan(t *testing.T) {
	enc, err := crypto.NewEncryptor(testKey)
	if err != nil {
		t.Fatalf("NewEncryptor() error = %v", err)
	}
	sealed, err := enc.Encrypt("access-sandbox-123")
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := NewConnectionRepository(nil, enc)

	conn, err := repo.scan(fakeRow{values: []any{
		"0b6f1c9e-4a7e-4c1f-9d4c-2f6b0f6a1e11", "user-1", sealed, "item-1", nil, "share-1", created,
	}})
	if err != nil {
		t.Fatalf("scan() error = %v", err)
	}

	if conn.AccessToken != "access-sandbox-123" {
		t.Errorf("AccessToken = %q, want decrypted token", conn.AccessToken)
	}
	if conn.ItemID != "item-1" {
		t.Errorf("ItemID = %q, want %q", conn.ItemID, "item-1")
	}
	if conn.AccountID != "" {
		t.Errorf("AccountID = %q, want empty for NULL", conn.AccountID)
	}
	if !conn.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", conn.CreatedAt, created)
	}
}

func TestConnectionRepository_ScanBadToken(t *testing.T) {
	enc, _ := crypto.NewEncryptor(testKey)
	repo := NewConnectionRepository(nil, enc)

	_, err := repo.scan(fakeRow{values: []any{
		"id", "user-1", "not-a-ciphertext", nil, nil, "share-1", time.Now(),
	}})
	if err == nil {
		t.Fatal("scan() expected error for undecryptable token, got nil")
	}
}

func TestConnectionRepository_GetByIDInvalidUUID(t *testing.T) {
	repo := NewConnectionRepository(nil, nil)

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	if !errors.Is(err, bank.ErrConnectionNotFound) {
		t.Errorf("GetByID() error = %v, want ErrConnectionNotFound", err)
	}
}

func TestConnectionRepository_CreateValidates(t *testing.T) {
	repo := NewConnectionRepository(nil, nil)

	_, err := repo.Create(context.Background(), bank.CreateConnectionParams{UserID: "user-1"})
	if !errors.Is(err, bank.ErrInvalidInput) {
		t.Errorf("Create() error = %v, want ErrInvalidInput", err)
	}
}

func TestScanTransfer(t *testing.T) {
	created := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name         string
		values       []any
		wantName     *string
		wantAmount   *float64
		wantCategory *string
	}{
		{
			name: "all columns",
			values: []any{
				"t-1", "Rent share", 25.5, "online", "Housing", "user-1", "user-2",
				"conn-1", "conn-2", "friend@example.com", created,
			},
			wantName:     strPtr("Rent share"),
			wantAmount:   floatPtr(25.5),
			wantCategory: strPtr("Housing"),
		},
		{
			name: "nullable columns missing",
			values: []any{
				"t-2", nil, nil, nil, nil, nil, nil,
				"conn-1", "conn-1", nil, created,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scanTransfer(fakeRow{values: tt.values})
			if err != nil {
				t.Fatalf("scanTransfer() error = %v", err)
			}
			if !equalPtr(got.Name, tt.wantName) {
				t.Errorf("Name = %v, want %v", got.Name, tt.wantName)
			}
			if !equalPtr(got.Amount, tt.wantAmount) {
				t.Errorf("Amount = %v, want %v", got.Amount, tt.wantAmount)
			}
			if !equalPtr(got.Category, tt.wantCategory) {
				t.Errorf("Category = %v, want %v", got.Category, tt.wantCategory)
			}
			if !got.CreatedAt.Equal(created) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
			}
		})
	}
}

func TestTransferRepository_CreateValidates(t *testing.T) {
	repo := NewTransferRepository(nil)

	tests := []struct {
		name   string
		params transaction.CreateTransferParams
	}{
		{"zero amount", transaction.CreateTransferParams{SenderConnectionID: "a", ReceiverConnectionID: "b"}},
		{"missing receiver", transaction.CreateTransferParams{Amount: 10, SenderConnectionID: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(context.Background(), tt.params)
			if !errors.Is(err, bank.ErrInvalidInput) {
				t.Errorf("Create() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
