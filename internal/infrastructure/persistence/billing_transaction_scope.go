package persistence

import (
	"context"

	appshared "github.com/aqueduct/backend/internal/application/shared"
	"github.com/aqueduct/backend/internal/domain/invoicing"
	"github.com/aqueduct/backend/internal/domain/membership"
	"github.com/aqueduct/backend/internal/domain/metering"
	"github.com/aqueduct/backend/internal/domain/tariff"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshared.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormRepositories(tx))
	})
}

// GormRepositories bundles the repositories sharing one *gorm.DB, which is
// either the root connection or a transaction.
type GormRepositories struct {
	tx *gorm.DB
}

// NewGormRepositories creates the repository bundle over db
func NewGormRepositories(db *gorm.DB) *GormRepositories {
	return &GormRepositories{tx: db}
}

// Members returns the member repository scoped to the current transaction.
func (r *GormRepositories) Members() membership.MemberRepository {
	return NewGormMemberRepository(r.tx)
}

// Properties returns the property repository scoped to the current transaction.
func (r *GormRepositories) Properties() membership.PropertyRepository {
	return NewGormPropertyRepository(r.tx)
}

// Readings returns the reading repository scoped to the current transaction.
func (r *GormRepositories) Readings() metering.ReadingRepository {
	return NewGormReadingRepository(r.tx)
}

// Tariffs returns the tariff configuration repository scoped to the current transaction.
func (r *GormRepositories) Tariffs() tariff.TariffConfigRepository {
	return NewGormTariffConfigRepository(r.tx)
}

// Invoices returns the invoice repository scoped to the current transaction.
func (r *GormRepositories) Invoices() invoicing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appshared.TransactionScope = (*GormTransactionScope)(nil)

// Ensure GormRepositories implements TransactionalRepositories
var _ appshared.TransactionalRepositories = (*GormRepositories)(nil)
