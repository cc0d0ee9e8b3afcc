package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/aqueduct/backend/internal/domain/shared"
	"github.com/aqueduct/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// SetupValidator registers the custom validation tags and reports fields by
// their json (or form) names. It is safe to call more than once.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	// decimals are struct values; expose them to tags as their canonical string
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("decimal_gte0", decimalGTE0)
	_ = v.RegisterValidation("decimal_scale", decimalScale)
}

// decimalGTE0 accepts non-negative decimal values
func decimalGTE0(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	d, err := decimal.NewFromString(field.String())
	return err == nil && !d.IsNegative()
}

// decimalScale accepts decimals with at most param fractional digits,
// ignoring trailing zeros. Without a param shared.DecimalScale applies.
func decimalScale(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	d, err := decimal.NewFromString(field.String())
	if err != nil {
		return false
	}
	places := int32(shared.DecimalScale)
	if p := fl.Param(); p != "" {
		n, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return false
		}
		places = int32(n)
	}
	return d.Truncate(places).Equal(d)
}

// ValidationDetails converts binding errors into per-field details. Errors
// that are not validator errors (malformed JSON) yield no details.
func ValidationDetails(err error) []dto.ValidationDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, e := range verrs {
		details = append(details, dto.ValidationDetail{Field: e.Field(), Message: validationMessage(e)})
	}
	return details
}

// HandleValidationError writes a 400 response describing a binding error
func HandleValidationError(c *gin.Context, err error) {
	details := ValidationDetails(err)
	if details == nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeInvalidJSON, err.Error(), GetRequestID(c)))
		return
	}
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", GetRequestID(c), details))
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "lte":
		return "Must be less than or equal to " + e.Param()
	case "decimal_gte0":
		return "Must be a non-negative number"
	case "decimal_scale":
		if e.Param() == "" {
			return "Must have at most " + strconv.Itoa(shared.DecimalScale) + " decimal places"
		}
		return "Must have at most " + e.Param() + " decimal places"
	default:
		return "Invalid value"
	}
}
