package plaid

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCodeAdditionalConsentRequired is returned by transactions/sync when the
// item has not granted the transactions product.
const ErrorCodeAdditionalConsentRequired = "ADDITIONAL_CONSENT_REQUIRED"

// AccountsResponse represents the API response for /accounts/get
type AccountsResponse struct {
	Accounts  []Account `json:"accounts"`
	Item      Item      `json:"item"`
	RequestID string    `json:"request_id"`
}

// Account represents one account attached to an item
type Account struct {
	AccountID    string   `json:"account_id"`
	Balances     Balances `json:"balances"`
	Mask         *string  `json:"mask"`
	Name         string   `json:"name"`
	OfficialName *string  `json:"official_name"`
	Type         string   `json:"type"`
	Subtype      *string  `json:"subtype"`
}

// Balances holds the provider's balance figures; either may be null
type Balances struct {
	Available       *float64 `json:"available"`
	Current         *float64 `json:"current"`
	ISOCurrencyCode *string  `json:"iso_currency_code"`
}

// Item identifies the bank login the accounts belong to
type Item struct {
	ItemID        string  `json:"item_id"`
	InstitutionID *string `json:"institution_id"`
}

// SyncResponse represents one page of /transactions/sync
type SyncResponse struct {
	Added      []Transaction        `json:"added"`
	Modified   []Transaction        `json:"modified"`
	Removed    []RemovedTransaction `json:"removed"`
	NextCursor string               `json:"next_cursor"`
	HasMore    bool                 `json:"has_more"`
	RequestID  string               `json:"request_id"`
}

// Transaction represents a transaction from the provider feed
type Transaction struct {
	TransactionID   string   `json:"transaction_id"`
	AccountID       string   `json:"account_id"`
	Amount          float64  `json:"amount"`
	ISOCurrencyCode *string  `json:"iso_currency_code"`
	Name            string   `json:"name"`
	MerchantName    *string  `json:"merchant_name"`
	PaymentChannel  string   `json:"payment_channel"`
	Pending         bool     `json:"pending"`
	Category        []string `json:"category"`
	DateString      string   `json:"date"` // "2024-03-01"
	LogoURL         *string  `json:"logo_url"`
}

// RemovedTransaction identifies a transaction the provider withdrew
type RemovedTransaction struct {
	TransactionID string `json:"transaction_id"`
}

// GetDate parses and returns the posting date
func (t *Transaction) GetDate() (time.Time, error) {
	if t.DateString == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse("2006-01-02", t.DateString)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date '%s': %w", t.DateString, err)
	}
	return parsed, nil
}

// InstitutionResponse represents the API response for /institutions/get_by_id
type InstitutionResponse struct {
	Institution Institution `json:"institution"`
	RequestID   string      `json:"request_id"`
}

// Institution represents a financial institution
type Institution struct {
	InstitutionID string   `json:"institution_id"`
	Name          string   `json:"name"`
	CountryCodes  []string `json:"country_codes"`
	URL           *string  `json:"url"`
	Logo          *string  `json:"logo"`
	PrimaryColor  *string  `json:"primary_color"`
}

// APIError represents an error response from the API
type APIError struct {
	StatusCode     int    `json:"-"`
	ErrorType      string `json:"error_type"`
	ErrorCode      string `json:"error_code"`
	ErrorMessage   string `json:"error_message"`
	DisplayMessage string `json:"display_message"`
	RequestID      string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s - %s", e.StatusCode, e.ErrorCode, e.ErrorMessage)
}

// IsConsentRequired reports whether err is the provider asking the user for more consent.
func IsConsentRequired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode == ErrorCodeAdditionalConsentRequired
}
