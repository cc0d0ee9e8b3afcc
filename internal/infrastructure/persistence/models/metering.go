package models

import (
	"time"

	"github.com/aqueduct/backend/internal/domain/metering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReadingModel is the persistence model for meter readings.
// (property_id, sequence) is unique, so two writers that both read the same
// "last reading" cannot both commit.
type ReadingModel struct {
	AggregateModel
	PropertyID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_readings_property_sequence,priority:1"`
	Sequence      int64           `gorm:"not null;uniqueIndex:idx_readings_property_sequence,priority:2"`
	PeriodMonth   int             `gorm:"not null;index:idx_readings_period,priority:2"`
	PeriodYear    int             `gorm:"not null;index:idx_readings_period,priority:1"`
	PreviousValue decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CurrentValue  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Consumption   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReadAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReadingModel) TableName() string {
	return "readings"
}

// ToDomain converts the persistence model to a domain Reading
func (m *ReadingModel) ToDomain() *metering.Reading {
	return &metering.Reading{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		PropertyID:        m.PropertyID,
		Sequence:          m.Sequence,
		Period:            metering.Period{Month: m.PeriodMonth, Year: m.PeriodYear},
		PreviousValue:     m.PreviousValue,
		CurrentValue:      m.CurrentValue,
		Consumption:       m.Consumption,
		ReadAt:            m.ReadAt,
	}
}

// ReadingModelFromDomain creates a persistence model from a domain Reading
func ReadingModelFromDomain(r *metering.Reading) *ReadingModel {
	m := &ReadingModel{
		PropertyID:    r.PropertyID,
		Sequence:      r.Sequence,
		PeriodMonth:   r.Period.Month,
		PeriodYear:    r.Period.Year,
		PreviousValue: r.PreviousValue,
		CurrentValue:  r.CurrentValue,
		Consumption:   r.Consumption,
		ReadAt:        r.ReadAt,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}
