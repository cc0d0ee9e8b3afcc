package membership

import (
	"context"

	"github.com/aqueduct/backend/internal/domain/membership"
	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PropertyService handles property registration, lookup and service status
type PropertyService struct {
	propertyRepo membership.PropertyRepository
	memberRepo   membership.MemberRepository
	logger       *zap.Logger
}

// NewPropertyService creates a new PropertyService
func NewPropertyService(propertyRepo membership.PropertyRepository, memberRepo membership.MemberRepository, logger *zap.Logger) *PropertyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PropertyService{
		propertyRepo: propertyRepo,
		memberRepo:   memberRepo,
		logger:       logger,
	}
}

// Create registers a property for an existing member
func (s *PropertyService) Create(ctx context.Context, req CreatePropertyRequest) (*PropertyResponse, error) {
	member, err := s.memberRepo.FindByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, shared.NewNotFoundError("Member")
	}

	property, err := membership.NewProperty(member.ID, req.AccountNumber, req.MeterSerial, req.Sector)
	if err != nil {
		return nil, err
	}

	existing, err := s.propertyRepo.FindByAccountNumber(ctx, property.AccountNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "A property with this account number already exists")
	}

	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return nil, err
	}

	s.logger.Info("property registered",
		zap.String("property_id", property.ID.String()),
		zap.String("account_number", property.AccountNumber),
		zap.String("member_id", member.ID.String()),
	)

	resp := ToPropertyResponse(property)
	return &resp, nil
}

// GetByID returns a property
func (s *PropertyService) GetByID(ctx context.Context, id uuid.UUID) (*PropertyResponse, error) {
	property, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPropertyResponse(property)
	return &resp, nil
}

// GetByAccountNumber returns the property holding an account number
func (s *PropertyService) GetByAccountNumber(ctx context.Context, accountNumber string) (*PropertyResponse, error) {
	property, err := s.propertyRepo.FindByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, shared.NewNotFoundError("Property")
	}
	resp := ToPropertyResponse(property)
	return &resp, nil
}

// List returns a page of properties and the total matching count
func (s *PropertyService) List(ctx context.Context, filter PropertyListFilter) ([]PropertyResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "account_number"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.MemberID != "" {
		memberID, err := uuid.Parse(filter.MemberID)
		if err != nil {
			return nil, 0, shared.NewValidationError("Invalid member ID")
		}
		domainFilter.Filters["member_id"] = memberID
	}
	if filter.Status != "" {
		status := membership.PropertyStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("Invalid property status: " + filter.Status)
		}
		domainFilter.Filters["status"] = status.String()
	}
	if filter.Sector != "" {
		domainFilter.Filters["sector"] = filter.Sector
	}

	properties, err := s.propertyRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.propertyRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToPropertyResponses(properties), total, nil
}

// Update edits a property's meter, sector, status and owner. A new owner
// must be a registered member.
func (s *PropertyService) Update(ctx context.Context, id uuid.UUID, req UpdatePropertyRequest) (*PropertyResponse, error) {
	property, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	previousOwner := property.MemberID
	if req.MemberID != nil && *req.MemberID != property.MemberID {
		owner, err := s.memberRepo.FindByID(ctx, *req.MemberID)
		if err != nil {
			return nil, err
		}
		if owner == nil {
			return nil, shared.NewNotFoundError("Member")
		}
		if err := property.TransferTo(owner.ID); err != nil {
			return nil, err
		}
	}
	if req.MeterSerial != nil {
		property.ReplaceMeter(*req.MeterSerial)
	}
	if req.Sector != nil {
		property.MoveToSector(*req.Sector)
	}
	if req.Status != nil {
		if err := property.ChangeStatus(membership.PropertyStatus(*req.Status)); err != nil {
			return nil, err
		}
	}

	if err := s.propertyRepo.Save(ctx, property); err != nil {
		return nil, err
	}

	fields := []zap.Field{
		zap.String("property_id", property.ID.String()),
		zap.String("status", property.Status.String()),
	}
	if property.MemberID != previousOwner {
		fields = append(fields,
			zap.String("from_member_id", previousOwner.String()),
			zap.String("to_member_id", property.MemberID.String()),
		)
	}
	s.logger.Info("property updated", fields...)

	resp := ToPropertyResponse(property)
	return &resp, nil
}

// ChangeStatus moves a property to another service status
func (s *PropertyService) ChangeStatus(ctx context.Context, id uuid.UUID, req ChangePropertyStatusRequest) (*PropertyResponse, error) {
	property, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := property.Status
	if err := property.ChangeStatus(membership.PropertyStatus(req.Status)); err != nil {
		return nil, err
	}
	if property.Status != previous {
		if err := s.propertyRepo.Save(ctx, property); err != nil {
			return nil, err
		}
		s.logger.Info("property status changed",
			zap.String("property_id", property.ID.String()),
			zap.String("from", previous.String()),
			zap.String("to", property.Status.String()),
		)
	}

	resp := ToPropertyResponse(property)
	return &resp, nil
}

func (s *PropertyService) find(ctx context.Context, id uuid.UUID) (*membership.Property, error) {
	property, err := s.propertyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, shared.NewNotFoundError("Property")
	}
	return property, nil
}
