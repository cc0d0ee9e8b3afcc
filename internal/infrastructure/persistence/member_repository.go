package persistence

import (
	"context"
	"errors"

	"github.com/aqueduct/backend/internal/domain/membership"
	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/aqueduct/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMemberRepository implements MemberRepository using GORM
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// FindByID finds a member by ID
func (r *GormMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Member, error) {
	var model models.MemberModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNationalID finds a member by national id (digits only)
func (r *GormMemberRepository) FindByNationalID(ctx context.Context, nationalID string) (*membership.Member, error) {
	var model models.MemberModel
	if err := r.db.WithContext(ctx).
		First(&model, "national_id = ?", membership.DigitsOnly(nationalID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists members matching the filter
func (r *GormMemberRepository) FindAll(ctx context.Context, filter shared.Filter) ([]membership.Member, error) {
	var memberModels []models.MemberModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.MemberModel{}), filter)

	query = query.Order(orderBy("members", filter, memberSortColumns, "name")).
		Offset(filter.Offset()).
		Limit(filter.Limit())

	if err := query.Find(&memberModels).Error; err != nil {
		return nil, err
	}
	members := make([]membership.Member, len(memberModels))
	for i, model := range memberModels {
		members[i] = *model.ToDomain()
	}
	return members, nil
}

// Count counts members matching the filter
func (r *GormMemberRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.MemberModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByNationalID checks whether a member with the national id exists
func (r *GormMemberRepository) ExistsByNationalID(ctx context.Context, nationalID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.MemberModel{}).
		Where("national_id = ?", membership.DigitsOnly(nationalID)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a member
func (r *GormMemberRepository) Save(ctx context.Context, member *membership.Member) error {
	model := models.MemberModelFromDomain(member)
	if err := saveAggregate(r.db.WithContext(ctx), model, &model.AggregateModel); err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "A member with this national ID already exists")
		}
		return err
	}
	member.Version = model.Version
	return nil
}

func (r *GormMemberRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("search_key LIKE ? ESCAPE '\\' OR national_id LIKE ? ESCAPE '\\'",
			containsPattern(membership.SearchKey(filter.Search)),
			containsPattern(filter.Search))
	}
	return query
}

// Ensure GormMemberRepository implements MemberRepository
var _ membership.MemberRepository = (*GormMemberRepository)(nil)
