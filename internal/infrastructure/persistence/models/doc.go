// Package models contains GORM-specific persistence models that map to the
// billing tables created by migrations/. Domain entities stay free of GORM
// tags; each model carries its own ToDomain/FromDomain mappers.
//
// Structure:
//   - base.go: BaseModel and AggregateModel shared by every table
//   - membership.go: members and properties
//   - metering.go: readings
//   - tariff.go: tariff configurations
//   - invoicing.go: invoices
package models
