package membership

import (
	"fmt"
	"strings"

	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PropertyStatus represents the service status of a property
type PropertyStatus string

const (
	PropertyStatusActive    PropertyStatus = "ACTIVE"
	PropertyStatusSuspended PropertyStatus = "SUSPENDED"
	PropertyStatusCut       PropertyStatus = "CUT"
)

// IsValid checks if the status is a valid PropertyStatus
func (s PropertyStatus) IsValid() bool {
	switch s {
	case PropertyStatusActive, PropertyStatusSuspended, PropertyStatusCut:
		return true
	}
	return false
}

// String returns the string representation of PropertyStatus
func (s PropertyStatus) String() string {
	return string(s)
}

// Property is a billable unit with a meter, owned by exactly one member
type Property struct {
	shared.BaseAggregateRoot
	MemberID      uuid.UUID
	AccountNumber string
	MeterSerial   string
	Sector        string
	Status        PropertyStatus
}

// NewProperty creates an active property for the given member
func NewProperty(memberID uuid.UUID, accountNumber, meterSerial, sector string) (*Property, error) {
	if memberID == uuid.Nil {
		return nil, shared.NewValidationError("Member ID cannot be empty")
	}
	accountNumber = strings.TrimSpace(accountNumber)
	if accountNumber == "" {
		return nil, shared.NewValidationError("Account number cannot be empty")
	}
	if len(accountNumber) > 50 {
		return nil, shared.NewValidationError("Account number cannot exceed 50 characters")
	}

	return &Property{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		MemberID:          memberID,
		AccountNumber:     accountNumber,
		MeterSerial:       strings.TrimSpace(meterSerial),
		Sector:            strings.TrimSpace(sector),
		Status:            PropertyStatusActive,
	}, nil
}

// ChangeStatus moves the property to another service status
func (p *Property) ChangeStatus(status PropertyStatus) error {
	if !status.IsValid() {
		return shared.NewValidationError(fmt.Sprintf("Invalid property status: %s", status))
	}
	if p.Status == status {
		return nil
	}
	p.Status = status
	p.Touch()
	return nil
}

// ReplaceMeter records a new meter serial for the property
func (p *Property) ReplaceMeter(serial string) {
	p.MeterSerial = strings.TrimSpace(serial)
	p.Touch()
}

// MoveToSector records the distribution sector the property belongs to
func (p *Property) MoveToSector(sector string) {
	sector = strings.TrimSpace(sector)
	if p.Sector == sector {
		return
	}
	p.Sector = sector
	p.Touch()
}

// TransferTo reassigns the property to another member. Its readings and
// invoices stay with the property.
func (p *Property) TransferTo(memberID uuid.UUID) error {
	if memberID == uuid.Nil {
		return shared.NewValidationError("Member ID cannot be empty")
	}
	if p.MemberID == memberID {
		return nil
	}
	p.MemberID = memberID
	p.Touch()
	return nil
}
