package membership

import (
	"context"
	"errors"
	"fmt"
	"io"

	appshared "github.com/aqueduct/backend/internal/application/shared"
	"github.com/aqueduct/backend/internal/domain/membership"
	"github.com/aqueduct/backend/internal/domain/shared"
	csvimport "github.com/aqueduct/backend/internal/infrastructure/import"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Columns of the member import file
const (
	ColumnName       = "nombre"
	ColumnNationalID = "cedula"
	ColumnPhone      = "telefono"
)

// MemberService handles member registration and lookup
type MemberService struct {
	memberRepo   membership.MemberRepository
	propertyRepo membership.PropertyRepository
	logger       *zap.Logger
	maxErrors    int
}

// MemberServiceConfig holds the dependencies of MemberService
type MemberServiceConfig struct {
	MemberRepo   membership.MemberRepository
	PropertyRepo membership.PropertyRepository
	Logger       *zap.Logger
	// ImportMaxErrors caps the row errors kept by ImportMembers
	ImportMaxErrors int
}

// NewMemberService creates a new MemberService
func NewMemberService(cfg MemberServiceConfig) *MemberService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{
		memberRepo:   cfg.MemberRepo,
		propertyRepo: cfg.PropertyRepo,
		logger:       logger,
		maxErrors:    cfg.ImportMaxErrors,
	}
}

// Create registers a new member. The national ID must be unique once reduced
// to its digits.
func (s *MemberService) Create(ctx context.Context, req CreateMemberRequest) (*MemberResponse, error) {
	member, err := membership.NewMember(req.Name, req.NationalID, req.Phone)
	if err != nil {
		return nil, err
	}

	exists, err := s.memberRepo.ExistsByNationalID(ctx, member.NationalID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "A member with this national ID already exists")
	}

	if err := s.memberRepo.Save(ctx, member); err != nil {
		return nil, err
	}

	s.logger.Info("member registered",
		zap.String("member_id", member.ID.String()),
		zap.String("national_id", member.NationalID),
	)

	resp := ToMemberResponse(member)
	return &resp, nil
}

// GetByID returns a member with its properties
func (s *MemberService) GetByID(ctx context.Context, id uuid.UUID) (*MemberResponse, error) {
	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, shared.NewNotFoundError("Member")
	}

	properties, err := s.propertyRepo.FindByMember(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToMemberResponse(member)
	resp.Properties = ToPropertyResponses(properties)
	return &resp, nil
}

// Update edits a member's name and phone
func (s *MemberService) Update(ctx context.Context, id uuid.UUID, req UpdateMemberRequest) (*MemberResponse, error) {
	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, shared.NewNotFoundError("Member")
	}

	if req.Name != nil {
		if err := member.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Phone != nil {
		member.UpdatePhone(*req.Phone)
	}

	if err := s.memberRepo.Save(ctx, member); err != nil {
		return nil, err
	}

	s.logger.Info("member updated", zap.String("member_id", member.ID.String()))

	resp := ToMemberResponse(member)
	return &resp, nil
}

// List returns a page of members and the total matching count
func (s *MemberService) List(ctx context.Context, filter MemberListFilter) ([]MemberResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
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

	members, err := s.memberRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.memberRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToMemberResponses(members), total, nil
}

// ImportMembers registers members from a CSV with columns nombre, cedula and
// telefono. Every row is stored on its own; rejected rows are reported in
// the result and never stop the import.
func (s *MemberService) ImportMembers(ctx context.Context, r io.Reader) (*csvimport.Result, error) {
	parser, err := appshared.OpenCSV(r, ColumnName, ColumnNationalID)
	if err != nil {
		return nil, err
	}

	errs := csvimport.NewErrorCollection(s.maxErrors)
	validator := csvimport.NewFieldValidator([]csvimport.FieldRule{
		csvimport.Field(ColumnName).MaxLength(200).Build(),
		csvimport.Field(ColumnNationalID).Digits().Unique().Build(),
	}, errs)

	imported := 0
	for {
		row, err := parser.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if !csvimport.IsMalformedRow(err) {
				return nil, err
			}
			errs.Malformed(parser.CurrentRow(), err)
			continue
		}
		if row.IsEmpty() {
			continue
		}

		name := row.Get(ColumnName)
		nationalID := csvimport.DigitsOf(row.Get(ColumnNationalID))
		if name == "" || nationalID == "" {
			errs.Reject(row.LineNumber, "Fila omitida: Nombre o Cédula vacíos")
			continue
		}
		if !validator.ValidateRow(row) {
			continue
		}
		if err := s.importMember(ctx, name, nationalID, row.Get(ColumnPhone)); err != nil {
			s.rejectRow(errs, row.LineNumber, nationalID, err)
			continue
		}
		imported++
	}

	s.logger.Info("member import finished",
		zap.Int("imported", imported),
		zap.Int("rejected", errs.Total()),
	)
	return csvimport.NewResult(imported, errs), nil
}

func (s *MemberService) importMember(ctx context.Context, name, nationalID, phone string) error {
	exists, err := s.memberRepo.ExistsByNationalID(ctx, nationalID)
	if err != nil {
		return err
	}
	if exists {
		return shared.ErrAlreadyExists
	}
	member, err := membership.NewMember(name, nationalID, phone)
	if err != nil {
		return err
	}
	return s.memberRepo.Save(ctx, member)
}

func (s *MemberService) rejectRow(errs *csvimport.ErrorCollection, line int, nationalID string, err error) {
	var de *shared.DomainError
	switch {
	case errors.Is(err, shared.ErrAlreadyExists):
		errs.Exists(line, ColumnNationalID, nationalID, fmt.Sprintf("Socio %s: Ya existe en el sistema", nationalID))
	case errors.As(err, &de):
		errs.Reject(line, fmt.Sprintf("Fila %d: %s", line, de.Message))
	default:
		s.logger.Warn("member import row failed", zap.Int("row", line), zap.Error(err))
		errs.Reject(line, fmt.Sprintf("Fila %d: Error inesperado", line))
	}
}
