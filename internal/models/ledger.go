package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerKind names the work a ledger entry pays for.
type LedgerKind string

const (
	LedgerCreationWork         LedgerKind = "creation_work"
	LedgerMonthEndWork         LedgerKind = "month_end_work"
	LedgerPhysicalVerification LedgerKind = "physical_verification"
	LedgerTravel               LedgerKind = "travel"
)

// Valid reports whether k is a known ledger kind.
func (k LedgerKind) Valid() bool {
	switch k {
	case LedgerCreationWork, LedgerMonthEndWork, LedgerPhysicalVerification, LedgerTravel:
		return true
	}
	return false
}

// VerificationTag marks whether the entry's subject had been verified.
type VerificationTag string

const (
	TagPending  VerificationTag = "pending"
	TagVerified VerificationTag = "verified"
)

// LedgerStatus is the settlement state of a ledger entry.
type LedgerStatus string

const (
	LedgerPending  LedgerStatus = "pending"
	LedgerApproved LedgerStatus = "approved"
	LedgerPaid     LedgerStatus = "paid"
)

// Valid reports whether s is a known settlement status.
func (s LedgerStatus) Valid() bool {
	return s == LedgerPending || s == LedgerApproved || s == LedgerPaid
}

// CanSettleTo reports whether an entry in status s may move to next.
// pending -> approved | paid, approved -> paid. paid is terminal.
func (s LedgerStatus) CanSettleTo(next LedgerStatus) bool {
	switch s {
	case LedgerPending:
		return next == LedgerApproved || next == LedgerPaid
	case LedgerApproved:
		return next == LedgerPaid
	}
	return false
}

// LedgerEntry is a single payable line for a field agent or verifier.
type LedgerEntry struct {
	ID              int64               `json:"id"`
	Kind            LedgerKind          `json:"kind"`
	LandID          *string             `json:"land_id,omitempty"`
	SessionID       *string             `json:"session_id,omitempty"`
	PayeeID         string              `json:"payee_id"`
	VerificationTag VerificationTag     `json:"verification_tag"`
	Amount          decimal.Decimal     `json:"amount"`
	DistanceKM      decimal.NullDecimal `json:"distance_km"`
	Status          LedgerStatus        `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// OpenEntry describes a ledger entry to append.
// Exactly one of LandID and SessionID is set.
type OpenEntry struct {
	Kind            LedgerKind
	LandID          string
	SessionID       string
	PayeeID         string
	VerificationTag VerificationTag
	Amount          decimal.Decimal
	DistanceKM      *decimal.Decimal
}

// SubjectID returns the land or session the entry refers to.
func (e OpenEntry) SubjectID() string {
	if e.LandID != "" {
		return e.LandID
	}
	return e.SessionID
}
