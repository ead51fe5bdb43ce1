// Package bank holds the bank-connection and account-snapshot domain types.
package bank

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrConnectionNotFound = errors.New("bank connection not found")
	ErrAccountFetch       = errors.New("account fetch failed")
	ErrInstitutionLookup  = errors.New("institution lookup failed")
	ErrUpstreamSync       = errors.New("upstream transaction sync failed")
	ErrConsentRequired    = errors.New("additional consent required")
	ErrLedgerRead         = errors.New("transfer ledger read failed")
	ErrInvalidInput       = errors.New("invalid input")
)

const (
	defaultMask    = "****"
	defaultSubtype = "unknown"
)

// Connection is a stored link between a user and one financial institution login.
// AccessToken is held in plaintext only in memory; repositories encrypt it at rest.
type Connection struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	AccessToken string    `json:"-"`
	ItemID      string    `json:"itemId"`
	AccountID   string    `json:"accountId"`
	ShareableID string    `json:"shareableId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateConnectionParams contains parameters for linking a bank
type CreateConnectionParams struct {
	UserID      string
	AccessToken string
	ItemID      string
	AccountID   string
	ShareableID string
}

// Validate validates the create parameters
func (p CreateConnectionParams) Validate() error {
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if p.AccessToken == "" {
		return errors.New("access token is required")
	}
	return nil
}

// AccountSnapshot is the provider's current view of one account. It is never persisted.
type AccountSnapshot struct {
	ID               string  `json:"id"`
	AvailableBalance float64 `json:"availableBalance"`
	CurrentBalance   float64 `json:"currentBalance"`
	InstitutionID    string  `json:"institutionId,omitempty"`
	InstitutionName  string  `json:"institutionName,omitempty"`
	Name             string  `json:"name"`
	OfficialName     string  `json:"officialName"`
	Mask             string  `json:"mask"`
	Type             string  `json:"type"`
	Subtype          string  `json:"subtype"`
	ConnectionID     string  `json:"connectionId"`
	ShareableID      string  `json:"shareableId,omitempty"`
}

// SnapshotParams carries the raw provider fields a snapshot is built from.
// Nil pointers are fields the provider left out.
type SnapshotParams struct {
	AccountID    string
	Available    *float64
	Current      *float64
	Name         string
	OfficialName *string
	Mask         *string
	Type         string
	Subtype      *string
}

// NewAccountSnapshot applies the display defaults and ties the snapshot to its connection.
func NewAccountSnapshot(p SnapshotParams, conn *Connection) AccountSnapshot {
	s := AccountSnapshot{
		ID:      p.AccountID,
		Name:    p.Name,
		Type:    p.Type,
		Mask:    defaultMask,
		Subtype: defaultSubtype,
	}
	if p.Available != nil {
		s.AvailableBalance = *p.Available
	}
	if p.Current != nil {
		s.CurrentBalance = *p.Current
	}
	if p.OfficialName != nil {
		s.OfficialName = *p.OfficialName
	}
	if p.Mask != nil && *p.Mask != "" {
		s.Mask = *p.Mask
	}
	if p.Subtype != nil && *p.Subtype != "" {
		s.Subtype = *p.Subtype
	}
	if conn != nil {
		s.ConnectionID = conn.ID
		s.ShareableID = conn.ShareableID
	}
	return s
}

// WithInstitution returns a copy of the snapshot enriched with institution metadata.
func (s AccountSnapshot) WithInstitution(inst *Institution) AccountSnapshot {
	if inst == nil {
		return s
	}
	s.InstitutionID = inst.ID
	s.InstitutionName = inst.Name
	return s
}

// Institution is display metadata for a financial institution
type Institution struct {
	ID           string `json:"institutionId"`
	Name         string `json:"name"`
	URL          string `json:"url,omitempty"`
	Logo         string `json:"logo,omitempty"`
	PrimaryColor string `json:"primaryColor,omitempty"`
}
