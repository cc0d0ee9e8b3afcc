package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/aqueduct/backend/internal/domain/membership"
	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/aqueduct/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPropertyRepository implements PropertyRepository using GORM
type GormPropertyRepository struct {
	db *gorm.DB
}

// NewGormPropertyRepository creates a new GormPropertyRepository
func NewGormPropertyRepository(db *gorm.DB) *GormPropertyRepository {
	return &GormPropertyRepository{db: db}
}

// FindByID finds a property by ID
func (r *GormPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Property, error) {
	var model models.PropertyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAccountNumber finds a property by its account number
func (r *GormPropertyRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (*membership.Property, error) {
	var model models.PropertyModel
	if err := r.db.WithContext(ctx).
		First(&model, "account_number = ?", strings.TrimSpace(accountNumber)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByMember lists the properties owned by a member
func (r *GormPropertyRepository) FindByMember(ctx context.Context, memberID uuid.UUID) ([]membership.Property, error) {
	var propertyModels []models.PropertyModel
	if err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("account_number ASC").
		Find(&propertyModels).Error; err != nil {
		return nil, err
	}
	return propertiesToDomain(propertyModels), nil
}

// FindAll lists properties matching the filter. Supported filter keys are
// "member_id", "status" and "sector".
func (r *GormPropertyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]membership.Property, error) {
	var propertyModels []models.PropertyModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PropertyModel{}), filter)

	query = query.Order(orderBy("properties", filter, propertySortColumns, "account_number")).
		Offset(filter.Offset()).
		Limit(filter.Limit())

	if err := query.Find(&propertyModels).Error; err != nil {
		return nil, err
	}
	return propertiesToDomain(propertyModels), nil
}

// Count counts properties matching the filter
func (r *GormPropertyRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PropertyModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Search returns the best property match for term. An exact account number
// wins, then an account number containing term, then an owner whose folded
// name contains it. Owners are matched by national id only when term is
// made of digits and separators.
func (r *GormPropertyRepository) Search(ctx context.Context, term string) (*membership.Property, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	var model models.PropertyModel
	err := r.db.WithContext(ctx).
		Model(&models.PropertyModel{}).
		Joins("JOIN members ON members.id = properties.member_id").
		Where(r.matchClause(term)).
		Order(clause.OrderBy{Expression: clause.Expr{
			SQL: "CASE WHEN LOWER(properties.account_number) = LOWER(?) THEN 0 " +
				"WHEN LOWER(properties.account_number) LIKE LOWER(?) ESCAPE '\\' THEN 1 " +
				"ELSE 2 END, properties.account_number ASC",
			Vars:               []any{term, containsPattern(term)},
			WithoutParentheses: true,
		}}).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a property
func (r *GormPropertyRepository) Save(ctx context.Context, property *membership.Property) error {
	model := models.PropertyModelFromDomain(property)
	if err := saveAggregate(r.db.WithContext(ctx), model, &model.AggregateModel); err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError(shared.CodeAlreadyExists, "A property with this account number already exists")
		}
		return err
	}
	property.Version = model.Version
	return nil
}

func (r *GormPropertyRepository) matchClause(term string) *gorm.DB {
	cond := r.db.Where("LOWER(properties.account_number) LIKE LOWER(?) ESCAPE '\\'", containsPattern(term)).
		Or("members.search_key LIKE ? ESCAPE '\\'", containsPattern(membership.SearchKey(term)))
	if digits, ok := nationalIDTerm(term); ok {
		cond = cond.Or("members.national_id LIKE ?", "%"+digits+"%")
	}
	return cond
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds a LIKE pattern matching term anywhere, with the
// wildcards in term taken literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// nationalIDTerm reports whether term reads as a national id ("4.002.999",
// "4002999") and returns its digits.
func nationalIDTerm(term string) (string, bool) {
	digits := 0
	for _, r := range term {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.' || r == '-' || r == ' ':
		default:
			return "", false
		}
	}
	if digits == 0 {
		return "", false
	}
	return membership.DigitsOnly(term), true
}

func (r *GormPropertyRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if v, ok := filter.Filters["member_id"]; ok {
		query = query.Where("properties.member_id = ?", v)
	}
	if v, ok := filter.Filters["status"]; ok {
		query = query.Where("properties.status = ?", v)
	}
	if v, ok := filter.Filters["sector"]; ok {
		query = query.Where("properties.sector = ?", v)
	}
	if filter.Search != "" {
		query = query.Joins("JOIN members ON members.id = properties.member_id").
			Where(r.matchClause(filter.Search))
	}
	return query
}

func propertiesToDomain(propertyModels []models.PropertyModel) []membership.Property {
	properties := make([]membership.Property, len(propertyModels))
	for i, model := range propertyModels {
		properties[i] = *model.ToDomain()
	}
	return properties
}

// Ensure GormPropertyRepository implements PropertyRepository
var _ membership.PropertyRepository = (*GormPropertyRepository)(nil)
