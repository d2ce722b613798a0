package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"cleanease/internal/domain"
)

var (
	usernamePattern        = regexp.MustCompile(`^[A-Za-z0-9]{3,30}$`)
	passwordCharsetPattern = regexp.MustCompile(`^[A-Za-z0-9@$!%*?&]+$`)
)

// PasswordPolicy acota la longitud de las contraseñas nuevas.
type PasswordPolicy struct {
	MinLength int
	MaxLength int
}

func (p PasswordPolicy) Check(password string) error {
	if len(password) < p.MinLength || len(password) > p.MaxLength {
		return fmt.Errorf("password must be between %d-%d characters", p.MinLength, p.MaxLength)
	}
	if !isStrongPassword(password) {
		return errors.New("password must contain uppercase, lowercase, and numbers")
	}
	return nil
}

// RegisterValidators agrega las reglas propias al validador de gin.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected gin validator engine")
	}
	rules := map[string]validator.Func{
		"username": func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		},
		"strongpassword": func(fl validator.FieldLevel) bool {
			return isStrongPassword(fl.Field().String())
		},
		"category": func(fl validator.FieldLevel) bool {
			return domain.IsValidCategory(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validator: %w", tag, err)
		}
	}
	return nil
}

func isStrongPassword(password string) bool {
	if !passwordCharsetPattern.MatchString(password) {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			return field + " is required"
		case "username":
			return "Username can only contain letters and numbers (3-30 characters)"
		case "strongpassword":
			return "Password must contain uppercase, lowercase, and numbers"
		case "category":
			return "category must be one of " + strings.Join(domain.Categories, ", ")
		case "email":
			return "email must be a valid email"
		default:
			return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
		}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "Malformed JSON body"
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return "Invalid request"
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// flexString acepta un string o un número JSON y lo guarda en forma decimal.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("expected a string or number")
	}
	if i, err := n.Int64(); err == nil {
		*f = flexString(strconv.FormatInt(i, 10))
		return nil
	}
	v, err := n.Float64()
	if err != nil {
		return errors.New("expected a string or number")
	}
	*f = flexString(strconv.FormatFloat(v, 'f', -1, 64))
	return nil
}

func (f flexString) String() string {
	return string(f)
}
