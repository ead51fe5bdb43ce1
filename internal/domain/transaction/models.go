package transaction

import (
	"errors"
	"time"
)

// Source identifies where a normalized transaction came from
type Source string

const (
	SourceLive     Source = "live"
	SourceTransfer Source = "transfer"
)

// Direction of a ledger transfer relative to the queried connection
const (
	DirectionDebit  = "debit"
	DirectionCredit = "credit"
)

// Transaction is the single record shape shown in a transaction history,
// whichever source it was read from.
type Transaction struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	PaymentChannel string    `json:"paymentChannel"`
	Type           string    `json:"type"` // payment channel for live entries, debit/credit for transfers
	AccountID      string    `json:"accountId,omitempty"`
	Amount         float64   `json:"amount"`
	Pending        bool      `json:"pending"`
	Category       string    `json:"category"`
	Date           time.Time `json:"date"`
	Image          string    `json:"image,omitempty"`
	Source         Source    `json:"sourceType"`
}

// Transfer is a peer-to-peer transfer recorded in the local ledger.
// Optional columns stay nil when the sender left them out.
type Transfer struct {
	ID                   string    `json:"id"`
	Name                 *string   `json:"name,omitempty"`
	Amount               *float64  `json:"amount,omitempty"`
	Channel              *string   `json:"channel,omitempty"`
	Category             *string   `json:"category,omitempty"`
	SenderUserID         string    `json:"senderId"`
	ReceiverUserID       string    `json:"receiverId"`
	SenderConnectionID   string    `json:"senderBankId"`
	ReceiverConnectionID string    `json:"receiverBankId"`
	Email                string    `json:"email,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
}

// CreateTransferParams contains parameters for recording a transfer
type CreateTransferParams struct {
	Name                 *string
	Amount               float64
	Channel              *string
	Category             *string
	SenderUserID         string
	ReceiverUserID       string
	SenderConnectionID   string
	ReceiverConnectionID string
	Email                string
}

// Validate validates the create parameters
func (p CreateTransferParams) Validate() error {
	if p.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	if p.SenderConnectionID == "" || p.ReceiverConnectionID == "" {
		return errors.New("sender and receiver bank connections are required")
	}
	return nil
}
