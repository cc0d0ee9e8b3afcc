package metering

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	appshared "github.com/aqueduct/backend/internal/application/shared"
	"github.com/aqueduct/backend/internal/domain/membership"
	"github.com/aqueduct/backend/internal/domain/metering"
	"github.com/aqueduct/backend/internal/domain/shared"
	csvimport "github.com/aqueduct/backend/internal/infrastructure/import"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Columns of the reading import file and template
const (
	ColumnAccountNumber = "numero_cuenta"
	ColumnMember        = "socio"
	ColumnMeterSerial   = "serial_medidor"
	ColumnCurrentValue  = "lectura_actual"
)

// templatePageSize is the page size used to walk every property
const templatePageSize = 500

// ImportReadings records one reading per row of a CSV with columns
// numero_cuenta and lectura_actual, all for the given period. Rows with a
// blank value are skipped. Each row is stored on its own; rejected rows are
// reported in the result and never stop the import.
func (s *ReadingService) ImportReadings(ctx context.Context, r io.Reader, month, year int) (*csvimport.Result, error) {
	period, err := metering.NewPeriod(month, year)
	if err != nil {
		return nil, err
	}
	parser, err := appshared.OpenCSV(r, ColumnAccountNumber, ColumnCurrentValue)
	if err != nil {
		return nil, err
	}

	errs := csvimport.NewErrorCollection(s.maxErrors)
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

		raw := row.Get(ColumnCurrentValue)
		if raw == "" {
			continue
		}
		account := row.Get(ColumnAccountNumber)
		if account == "" {
			errs.Required(row.LineNumber, ColumnAccountNumber)
			continue
		}
		value, err := csvimport.ParseDecimal(raw)
		if err != nil {
			errs.InvalidType(row.LineNumber, ColumnCurrentValue, "un número", raw)
			continue
		}

		property, err := s.propertyRepo.FindByAccountNumber(ctx, account)
		if err != nil {
			return nil, err
		}
		if property == nil {
			errs.UnknownReference(row.LineNumber, ColumnAccountNumber, account,
				fmt.Sprintf("Cuenta %s: No encontrada", account))
			continue
		}

		if _, err := s.record(ctx, property.ID, period, value); err != nil {
			s.rejectRow(errs, row.LineNumber, account, err)
			continue
		}
		imported++
	}

	s.logger.Info("reading import finished",
		zap.String("period", period.String()),
		zap.Int("imported", imported),
		zap.Int("rejected", errs.Total()),
	)
	return csvimport.NewResult(imported, errs), nil
}

func (s *ReadingService) rejectRow(errs *csvimport.ErrorCollection, line int, account string, err error) {
	var de *shared.DomainError
	switch {
	case errors.Is(err, metering.ErrNonMonotonicReading):
		errs.OutOfRangeMessage(line, ColumnCurrentValue, account,
			fmt.Sprintf("Cuenta %s: Lectura menor a la anterior", account))
	case errors.As(err, &de):
		errs.Reject(line, fmt.Sprintf("Cuenta %s: %s", account, de.Message))
	default:
		s.logger.Warn("reading import row failed", zap.Int("row", line), zap.Error(err))
		errs.Reject(line, fmt.Sprintf("Fila %d: Error inesperado", line))
	}
}

// ReadingTemplate writes the CSV handed to meter readers: one row per
// property, ordered by account number, with a blank lectura_actual
func (s *ReadingService) ReadingTemplate(ctx context.Context, w io.Writer) error {
	out := csvimport.NewWriter(w)
	if err := out.Write(ColumnAccountNumber, ColumnMember, ColumnMeterSerial, ColumnCurrentValue); err != nil {
		return err
	}

	owners := newOwnerDirectory(s.propertyRepo, s.memberRepo)
	filter := shared.Filter{
		Page:     1,
		PageSize: templatePageSize,
		OrderBy:  "account_number",
		OrderDir: "asc",
		Filters:  make(map[string]interface{}),
	}
	for {
		properties, err := s.propertyRepo.FindAll(ctx, filter)
		if err != nil {
			return err
		}
		for i := range properties {
			p := &properties[i]
			name, err := owners.memberName(ctx, p.MemberID)
			if err != nil {
				return err
			}
			if err := out.Write(p.AccountNumber, name, p.MeterSerial, ""); err != nil {
				return err
			}
		}
		if len(properties) < templatePageSize {
			break
		}
		filter.Page++
	}
	return out.Flush()
}

type owner struct {
	accountNumber string
	memberName    string
}

// ownerDirectory resolves account numbers and member names, caching lookups
// for the duration of one report
type ownerDirectory struct {
	propertyRepo membership.PropertyRepository
	memberRepo   membership.MemberRepository
	owners       map[uuid.UUID]owner
	members      map[uuid.UUID]string
}

func newOwnerDirectory(propertyRepo membership.PropertyRepository, memberRepo membership.MemberRepository) *ownerDirectory {
	return &ownerDirectory{
		propertyRepo: propertyRepo,
		memberRepo:   memberRepo,
		owners:       make(map[uuid.UUID]owner),
		members:      make(map[uuid.UUID]string),
	}
}

func (d *ownerDirectory) lookup(ctx context.Context, propertyID uuid.UUID) (owner, error) {
	if o, ok := d.owners[propertyID]; ok {
		return o, nil
	}
	property, err := d.propertyRepo.FindByID(ctx, propertyID)
	if err != nil {
		return owner{}, err
	}
	var o owner
	if property != nil {
		o.accountNumber = property.AccountNumber
		if o.memberName, err = d.memberName(ctx, property.MemberID); err != nil {
			return owner{}, err
		}
	}
	d.owners[propertyID] = o
	return o, nil
}

func (d *ownerDirectory) memberName(ctx context.Context, memberID uuid.UUID) (string, error) {
	if name, ok := d.members[memberID]; ok {
		return name, nil
	}
	member, err := d.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return "", err
	}
	name := ""
	if member != nil {
		name = member.Name
	}
	d.members[memberID] = name
	return name, nil
}

func sortAuditRows(rows []AuditRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].AccountNumber < rows[j].AccountNumber
	})
}
