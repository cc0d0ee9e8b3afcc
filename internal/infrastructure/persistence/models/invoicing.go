package models

import (
	"time"

	"github.com/aqueduct/backend/internal/domain/invoicing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for invoices. The partial unique
// index allows at most one non-retired invoice per reading.
type InvoiceModel struct {
	AggregateModel
	ReadingID     uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_active_reading,where:retired_at IS NULL"`
	PropertyID    uuid.UUID               `gorm:"type:uuid;not null;index"`
	Number        string                  `gorm:"type:varchar(80);not null;uniqueIndex:idx_invoices_number"`
	Total         decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Status        invoicing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaidAt        *time.Time
	PaymentMethod invoicing.PaymentMethod `gorm:"type:varchar(30)"`
	BatchID       *string                 `gorm:"type:varchar(40);index"`
	RetiredAt     *time.Time
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ReadingID:         m.ReadingID,
		PropertyID:        m.PropertyID,
		Number:            m.Number,
		Total:             m.Total,
		Status:            m.Status,
		PaidAt:            m.PaidAt,
		PaymentMethod:     m.PaymentMethod,
		RetiredAt:         m.RetiredAt,
	}
	if m.BatchID != nil {
		inv.BatchID = *m.BatchID
	}
	return inv
}

// InvoiceModelFromDomain creates a persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		ReadingID:     inv.ReadingID,
		PropertyID:    inv.PropertyID,
		Number:        inv.Number,
		Total:         inv.Total,
		Status:        inv.Status,
		PaidAt:        inv.PaidAt,
		PaymentMethod: inv.PaymentMethod,
		RetiredAt:     inv.RetiredAt,
	}
	if inv.BatchID != "" {
		batchID := inv.BatchID
		m.BatchID = &batchID
	}
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	return m
}
