package membership

import (
	"context"

	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MemberRepository defines persistence operations for members
type MemberRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Member, error)
	FindByNationalID(ctx context.Context, nationalID string) (*Member, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Member, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByNationalID(ctx context.Context, nationalID string) (bool, error)
	Save(ctx context.Context, member *Member) error
}

// PropertyRepository defines persistence operations for properties
type PropertyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (*Property, error)
	FindByMember(ctx context.Context, memberID uuid.UUID) ([]Property, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Property, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// Search returns the first property whose account number contains term or
	// whose owner's search key contains the folded term
	Search(ctx context.Context, term string) (*Property, error)
	Save(ctx context.Context, property *Property) error
}
