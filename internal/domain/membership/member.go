package membership

import (
	"strings"
	"unicode"

	"github.com/aqueduct/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Member is an account holder who owns one or more properties
type Member struct {
	shared.BaseAggregateRoot
	Name       string
	NationalID string
	Phone      string
	SearchKey  string
}

// NewMember creates a new member. The national id and phone are reduced to
// their digits; the national id must not be empty afterwards.
func NewMember(name, nationalID, phone string) (*Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("Member name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("Member name cannot exceed 200 characters")
	}
	nationalID = DigitsOnly(nationalID)
	if nationalID == "" {
		return nil, shared.NewValidationError("National ID must contain at least one digit")
	}
	if len(nationalID) > 20 {
		return nil, shared.NewValidationError("National ID cannot exceed 20 digits")
	}

	m := &Member{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		NationalID:        nationalID,
		Phone:             DigitsOnly(phone),
		SearchKey:         SearchKey(name),
	}
	return m, nil
}

// Rename changes the member's display name
func (m *Member) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("Member name cannot be empty")
	}
	m.Name = name
	m.SearchKey = SearchKey(name)
	m.Touch()
	return nil
}

// UpdatePhone replaces the contact phone
func (m *Member) UpdatePhone(phone string) {
	m.Phone = DigitsOnly(phone)
	m.Touch()
}

// DigitsOnly strips every non-digit rune from s
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SearchKey folds case and strips diacritics so that "José Peña" and
// "jose pena" share the same key.
func SearchKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}
