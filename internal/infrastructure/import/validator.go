package csvimport

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldType represents the expected type of a field
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeDecimal FieldType = "decimal"
	TypeDigits  FieldType = "digits"
)

// FieldRule defines validation rules for a column
type FieldRule struct {
	Column     string
	Type       FieldType
	Required   bool
	MaxLength  int
	MinValue   *decimal.Decimal
	Unique     bool
	CustomFunc func(value string) error
}

// FieldRuleBuilder helps build field rules fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field creates a new field rule builder
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{
		rule: FieldRule{
			Column: NormalizeHeader(column),
			Type:   TypeString,
		},
	}
}

// Required marks the field as required
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// Decimal sets the field type to decimal. A comma is accepted as the decimal
// separator.
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// Digits requires the value to contain at least one digit once separators
// such as dots, dashes and spaces are ignored
func (b *FieldRuleBuilder) Digits() *FieldRuleBuilder {
	b.rule.Type = TypeDigits
	return b
}

// MaxLength sets the maximum length in runes
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// MinValue sets the minimum numeric value
func (b *FieldRuleBuilder) MinValue(v decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &v
	return b
}

// Unique marks the field as unique within the file
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Custom sets a custom validation function
func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

// Build returns the built field rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator validates rows against a fixed set of column rules
type FieldValidator struct {
	rules       []FieldRule
	uniqueCheck map[string]map[string]int // column -> value -> first row number
	errors      *ErrorCollection
}

// NewFieldValidator creates a validator that reports into errors
func NewFieldValidator(rules []FieldRule, errors *ErrorCollection) *FieldValidator {
	return &FieldValidator{
		rules:       rules,
		uniqueCheck: make(map[string]map[string]int),
		errors:      errors,
	}
}

// ValidateRow checks every rule against row, recording failures. It returns
// false when at least one rule failed.
func (v *FieldValidator) ValidateRow(row *Row) bool {
	ok := true
	for _, rule := range v.rules {
		if !v.validateField(row, rule) {
			ok = false
		}
	}
	return ok
}

func (v *FieldValidator) validateField(row *Row, rule FieldRule) bool {
	value := row.Get(rule.Column)
	if value == "" {
		if rule.Required {
			v.errors.Required(row.LineNumber, rule.Column)
			return false
		}
		return true
	}

	switch rule.Type {
	case TypeDecimal:
		d, err := ParseDecimal(value)
		if err != nil {
			v.errors.InvalidType(row.LineNumber, rule.Column, "un número", value)
			return false
		}
		if rule.MinValue != nil && d.LessThan(*rule.MinValue) {
			v.errors.OutOfRange(row.LineNumber, rule.Column,
				fmt.Sprintf("mayor o igual a %s", rule.MinValue.String()), value)
			return false
		}
	case TypeDigits:
		if DigitsOf(value) == "" {
			v.errors.InvalidType(row.LineNumber, rule.Column, "dígitos", value)
			return false
		}
		value = DigitsOf(value)
	}

	if rule.MaxLength > 0 && len([]rune(value)) > rule.MaxLength {
		v.errors.Invalid(row.LineNumber, rule.Column, value,
			fmt.Sprintf("Fila %d: %s supera %d caracteres", row.LineNumber, rule.Column, rule.MaxLength))
		return false
	}

	if rule.Unique {
		if v.uniqueCheck[rule.Column] == nil {
			v.uniqueCheck[rule.Column] = make(map[string]int)
		}
		if firstRow, exists := v.uniqueCheck[rule.Column][value]; exists {
			v.errors.Duplicate(row.LineNumber, rule.Column, value, firstRow)
			return false
		}
		v.uniqueCheck[rule.Column][value] = row.LineNumber
	}

	if rule.CustomFunc != nil {
		if err := rule.CustomFunc(value); err != nil {
			v.errors.Invalid(row.LineNumber, rule.Column, value,
				fmt.Sprintf("Fila %d: %v", row.LineNumber, err))
			return false
		}
	}
	return true
}

// Reset clears the per-file uniqueness state
func (v *FieldValidator) Reset() {
	v.uniqueCheck = make(map[string]map[string]int)
}

// ParseDecimal parses a number written with either '.' or ',' as the decimal
// separator. Thousands separators are not accepted.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

// DigitsOf strips every non-digit rune from s
func DigitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
