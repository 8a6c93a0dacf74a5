package models

import "time"

// PurchaseStatus is the seller-side decision on a purchase request.
type PurchaseStatus string

const (
	PurchasePending  PurchaseStatus = "pending"
	PurchaseApproved PurchaseStatus = "approved"
	PurchaseRejected PurchaseStatus = "rejected"
)

// PurchaseRequest records a buyer's intent to purchase a land record.
// There is at most one per (land, buyer).
type PurchaseRequest struct {
	ID        int64          `json:"id"`
	LandID    string         `json:"land_id"`
	BuyerID   string         `json:"buyer_id"`
	LandCode  string         `json:"land_code"`
	Status    PurchaseStatus `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	DecidedAt *time.Time     `json:"decided_at"`
}

// PurchaseRequestWithLand pairs a request with the record it targets.
type PurchaseRequestWithLand struct {
	PurchaseRequest
	Land LandRecord `json:"land"`
}
