package models

import (
	"github.com/aqueduct/backend/internal/domain/membership"
	"github.com/google/uuid"
)

// MemberModel is the persistence model for the Member aggregate
type MemberModel struct {
	AggregateModel
	Name       string `gorm:"type:varchar(200);not null"`
	NationalID string `gorm:"type:varchar(20);not null;uniqueIndex:idx_members_national_id"`
	Phone      string `gorm:"type:varchar(30)"`
	SearchKey  string `gorm:"type:varchar(200);not null;index"`
}

// TableName returns the table name for GORM
func (MemberModel) TableName() string {
	return "members"
}

// ToDomain converts the persistence model to a domain Member
func (m *MemberModel) ToDomain() *membership.Member {
	return &membership.Member{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		NationalID:        m.NationalID,
		Phone:             m.Phone,
		SearchKey:         m.SearchKey,
	}
}

// MemberModelFromDomain creates a persistence model from a domain Member
func MemberModelFromDomain(mb *membership.Member) *MemberModel {
	m := &MemberModel{
		Name:       mb.Name,
		NationalID: mb.NationalID,
		Phone:      mb.Phone,
		SearchKey:  mb.SearchKey,
	}
	m.FromDomainAggregateRoot(mb.BaseAggregateRoot)
	return m
}

// PropertyModel is the persistence model for the Property aggregate
type PropertyModel struct {
	AggregateModel
	MemberID      uuid.UUID                 `gorm:"type:uuid;not null;index"`
	AccountNumber string                    `gorm:"type:varchar(50);not null;uniqueIndex:idx_properties_account_number"`
	MeterSerial   string                    `gorm:"type:varchar(50)"`
	Sector        string                    `gorm:"type:varchar(100);index"`
	Status        membership.PropertyStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	Member        *MemberModel              `gorm:"foreignKey:MemberID;references:ID"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the persistence model to a domain Property
func (m *PropertyModel) ToDomain() *membership.Property {
	return &membership.Property{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		MemberID:          m.MemberID,
		AccountNumber:     m.AccountNumber,
		MeterSerial:       m.MeterSerial,
		Sector:            m.Sector,
		Status:            m.Status,
	}
}

// PropertyModelFromDomain creates a persistence model from a domain Property
func PropertyModelFromDomain(p *membership.Property) *PropertyModel {
	m := &PropertyModel{
		MemberID:      p.MemberID,
		AccountNumber: p.AccountNumber,
		MeterSerial:   p.MeterSerial,
		Sector:        p.Sector,
		Status:        p.Status,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
