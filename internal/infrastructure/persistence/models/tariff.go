package models

import (
	"time"

	"github.com/aqueduct/backend/internal/domain/tariff"
	"github.com/shopspring/decimal"
)

// TariffConfigModel is the persistence model for tariff configurations
type TariffConfigModel struct {
	AggregateModel
	FixedCharge   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BasicLimit    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BasicRate     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ExcessRate    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	EffectiveFrom time.Time       `gorm:"not null"`
	Active        bool            `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (TariffConfigModel) TableName() string {
	return "tariff_configs"
}

// ToDomain converts the persistence model to a domain TariffConfig
func (m *TariffConfigModel) ToDomain() *tariff.TariffConfig {
	return &tariff.TariffConfig{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		FixedCharge:       m.FixedCharge,
		BasicLimit:        m.BasicLimit,
		BasicRate:         m.BasicRate,
		ExcessRate:        m.ExcessRate,
		EffectiveFrom:     m.EffectiveFrom,
		Active:            m.Active,
	}
}

// TariffConfigModelFromDomain creates a persistence model from a domain TariffConfig
func TariffConfigModelFromDomain(c *tariff.TariffConfig) *TariffConfigModel {
	m := &TariffConfigModel{
		FixedCharge:   c.FixedCharge,
		BasicLimit:    c.BasicLimit,
		BasicRate:     c.BasicRate,
		ExcessRate:    c.ExcessRate,
		EffectiveFrom: c.EffectiveFrom,
		Active:        c.Active,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}
