// Package shared holds application-layer contracts used by more than one service.
package shared

import (
	"context"

	"github.com/aqueduct/backend/internal/domain/invoicing"
	"github.com/aqueduct/backend/internal/domain/membership"
	"github.com/aqueduct/backend/internal/domain/metering"
	"github.com/aqueduct/backend/internal/domain/tariff"
)

// TransactionScope provides transactional access to the billing repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type TransactionalRepositories interface {
	Members() membership.MemberRepository
	Properties() membership.PropertyRepository
	Readings() metering.ReadingRepository
	Tariffs() tariff.TariffConfigRepository
	Invoices() invoicing.InvoiceRepository
}
