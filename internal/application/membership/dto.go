package membership

import (
	"time"

	"github.com/aqueduct/backend/internal/domain/membership"
	"github.com/google/uuid"
)

// =============================================================================
// Member DTOs
// =============================================================================

// CreateMemberRequest represents a request to register a member
type CreateMemberRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=200"`
	NationalID string `json:"national_id" binding:"required,max=30"`
	Phone      string `json:"phone" binding:"max=30"`
}

// UpdateMemberRequest edits a member's contact data. Omitted fields keep
// their value; the national ID cannot be changed.
type UpdateMemberRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=200"`
	Phone *string `json:"phone" binding:"omitempty,max=30"`
}

// MemberListFilter represents filter options for the member list
type MemberListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// MemberResponse represents a member in API responses
type MemberResponse struct {
	ID         uuid.UUID          `json:"id"`
	Name       string             `json:"name"`
	NationalID string             `json:"national_id"`
	Phone      string             `json:"phone"`
	Properties []PropertyResponse `json:"properties,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// ToMemberResponse converts a domain Member to MemberResponse
func ToMemberResponse(m *membership.Member) MemberResponse {
	return MemberResponse{
		ID:         m.ID,
		Name:       m.Name,
		NationalID: m.NationalID,
		Phone:      m.Phone,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// ToMemberResponses converts a slice of members
func ToMemberResponses(members []membership.Member) []MemberResponse {
	out := make([]MemberResponse, len(members))
	for i := range members {
		out[i] = ToMemberResponse(&members[i])
	}
	return out
}

// =============================================================================
// Property DTOs
// =============================================================================

// CreatePropertyRequest represents a request to register a property
type CreatePropertyRequest struct {
	MemberID      uuid.UUID `json:"member_id" binding:"required"`
	AccountNumber string    `json:"account_number" binding:"required,min=1,max=50"`
	MeterSerial   string    `json:"meter_serial" binding:"max=100"`
	Sector        string    `json:"sector" binding:"max=100"`
}

// UpdatePropertyRequest edits a property. Omitted fields keep their value.
// The account number cannot be changed.
type UpdatePropertyRequest struct {
	MemberID    *uuid.UUID `json:"member_id"`
	MeterSerial *string    `json:"meter_serial" binding:"omitempty,max=100"`
	Sector      *string    `json:"sector" binding:"omitempty,max=100"`
	Status      *string    `json:"status" binding:"omitempty,oneof=ACTIVE SUSPENDED CUT"`
}

// ChangePropertyStatusRequest represents a request to change the service status
type ChangePropertyStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE SUSPENDED CUT"`
}

// PropertyListFilter represents filter options for the property list
type PropertyListFilter struct {
	Search   string `form:"search"`
	MemberID string `form:"member_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE SUSPENDED CUT"`
	Sector   string `form:"sector"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PropertyResponse represents a property in API responses
type PropertyResponse struct {
	ID            uuid.UUID `json:"id"`
	MemberID      uuid.UUID `json:"member_id"`
	AccountNumber string    `json:"account_number"`
	MeterSerial   string    `json:"meter_serial"`
	Sector        string    `json:"sector"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToPropertyResponse converts a domain Property to PropertyResponse
func ToPropertyResponse(p *membership.Property) PropertyResponse {
	return PropertyResponse{
		ID:            p.ID,
		MemberID:      p.MemberID,
		AccountNumber: p.AccountNumber,
		MeterSerial:   p.MeterSerial,
		Sector:        p.Sector,
		Status:        p.Status.String(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ToPropertyResponses converts a slice of properties
func ToPropertyResponses(properties []membership.Property) []PropertyResponse {
	out := make([]PropertyResponse, len(properties))
	for i := range properties {
		out[i] = ToPropertyResponse(&properties[i])
	}
	return out
}
