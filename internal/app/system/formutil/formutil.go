// Package formutil decodes posted forms into structs and validates them.
//
// Form structs carry `form` tags for decoding and `validate` tags for
// checking. Validation failures are reported as a single user-facing
// message looked up by "Field.tag":
//
//	type loginForm struct {
//		Email    string `form:"email" validate:"required,loginemail"`
//		Password string `form:"password" validate:"required"`
//	}
//
//	var f loginForm
//	if err := formutil.Decode(r, &f); err != nil { ... }
//	if msg := formutil.Check(&f, loginMessages, "Login failed."); msg != "" { ... }
package formutil

import (
	"errors"
	"html/template"
	"net/http"
	"regexp"
	"strings"

	"github.com/dalemusser/leadhub/internal/domain/models"
	"github.com/go-playground/form"
	"github.com/go-playground/validator/v10"
)

// EmailPattern is the address shape accepted by the login and account forms.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	decoder  = form.NewDecoder()
	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("loginemail", func(fl validator.FieldLevel) bool {
		return EmailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("leadtype", func(fl validator.FieldLevel) bool {
		return models.IsLeadType(fl.Field().String())
	})
	return v
}

// Decode parses the request form into dst and trims every string field.
func Decode(r *http.Request, dst any) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	values := r.Form
	for k, vs := range values {
		for i := range vs {
			if !strings.EqualFold(k, "password") && !strings.EqualFold(k, "passwordConfirm") && k != "memo" {
				vs[i] = strings.TrimSpace(vs[i])
			}
		}
	}
	return decoder.Decode(dst, values)
}

// Check validates v. It returns "" when v is valid, otherwise the message
// registered for the first failing "Field.tag" (or "Field"), or fallback.
func Check(v any, messages map[string]string, fallback string) string {
	err := validate.Struct(v)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fallback
	}
	fe := verrs[0]
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := messages[fe.Field()]; ok {
		return msg
	}
	return fallback
}

// Base holds the error banner of a re-rendered form.
type Base struct {
	Error template.HTML
}

// SetError sets the error banner text, escaped.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(template.HTMLEscapeString(msg))
}
