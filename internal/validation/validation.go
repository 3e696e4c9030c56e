// Package validation wraps go-playground/validator with the marketplace's
// custom rules and renders failures as one readable message.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrValidation = errors.New("validation failed")

// Error lists every problem found on a value. It matches ErrValidation.
type Error struct {
	Problems []string
}

func (e *Error) Error() string {
	return strings.Join(e.Problems, "; ")
}

func (e *Error) Is(target error) bool {
	return target == ErrValidation
}

var (
	once     sync.Once
	validate *validator.Validate

	cardExpiryRE = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	phoneRE      = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,19}$`)

	// now is swapped in tests
	now = time.Now
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("cardexpiry", isFutureCardExpiry)
		_ = v.RegisterValidation("phone", isPhone)
		_ = v.RegisterValidation("nopassword", notContainsPassword)
		validate = v
	})
	return validate
}

// Struct validates v. Field failures come back as *Error.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	verr := &Error{Problems: make([]string, 0, len(verrs))}
	for _, fe := range verrs {
		verr.Problems = append(verr.Problems, message(fe))
	}
	return verr
}

func message(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " is invalid"
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "url", "http_url":
		return field + " must be a valid URL"
	case "credit_card":
		return field + " is invalid"
	case "cardexpiry":
		return field + " must be a future date in MM/YY format"
	case "nopassword":
		return field + ` cannot contain "password"`
	case "len":
		return fmt.Sprintf("%s must be %s characters long", field, fe.Param())
	case "numeric":
		return field + " must be numeric"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

func isFutureCardExpiry(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if !cardExpiryRE.MatchString(value) {
		return false
	}

	var month, year int
	if _, err := fmt.Sscanf(value, "%02d/%02d", &month, &year); err != nil {
		return false
	}

	t := now()
	curYear := t.Year() % 100
	curMonth := int(t.Month())
	return year > curYear || (year == curYear && month >= curMonth)
}

func isPhone(fl validator.FieldLevel) bool {
	return phoneRE.MatchString(fl.Field().String())
}

func notContainsPassword(fl validator.FieldLevel) bool {
	return !strings.Contains(strings.ToLower(fl.Field().String()), "password")
}
