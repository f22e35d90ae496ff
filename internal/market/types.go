// Package market holds the marketplace records the access-control core
// protects: companies offered for sale, deals negotiating them, and the NDAs
// gating disclosure. Every record carries the owning organization id; that
// column is the tenant boundary the scope validator checks.
package market

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("market: not found")
	ErrInvalidInput = errors.New("market: invalid input")
	ErrConflict     = errors.New("market: conflict")
)

// Deal stages, in rough pipeline order.
const (
	StageSourcing     = "sourcing"
	StageNegotiation  = "negotiation"
	StageDueDiligence = "due_diligence"
	StageClosed       = "closed"
)

// NDA lifecycle.
const (
	NDAStatusDraft  = "draft"
	NDAStatusSigned = "signed"
)

// Company is a sell-side mandate listed on the marketplace.
type Company struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Sector         string    `json:"sector"`
	Region         string    `json:"region"`
	Revenue        int64     `json:"revenue"` // annual, minor units
	Description    string    `json:"description,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CompanyUpdate carries optional field changes; nil means leave unchanged.
type CompanyUpdate struct {
	Name        *string
	Sector      *string
	Region      *string
	Revenue     *int64
	Description *string
}

// Deal tracks one buyer-seller negotiation over a company.
type Deal struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	CompanyID      string    `json:"company_id"`
	Stage          string    `json:"stage"`
	Amount         int64     `json:"amount"` // offer, minor units
	Currency       string    `json:"currency"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DealUpdate carries optional field changes; nil means leave unchanged.
type DealUpdate struct {
	Stage    *string
	Amount   *int64
	Currency *string
}

// NDA is the disclosure agreement attached to a deal. Once signed it is
// immutable apart from nothing: there is no unsign.
type NDA struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	DealID         string     `json:"deal_id"`
	Status         string     `json:"status"`
	SignedBy       string     `json:"signed_by,omitempty"`
	SignedAt       *time.Time `json:"signed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ValidStage reports whether s is a known deal stage.
func ValidStage(s string) bool {
	switch s {
	case StageSourcing, StageNegotiation, StageDueDiligence, StageClosed:
		return true
	}
	return false
}
