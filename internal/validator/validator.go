package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// trans is the singleton English translator for validation errors.
var (
	trans     ut.Translator
	setupOnce sync.Once
)

// emailPattern is the address shape the add-school form accepts.
var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// fieldMessages overrides the generic translation for a field/tag pair.
var fieldMessages = map[string]string{
	"name.required":         "School name is required",
	"address.required":      "Address is required",
	"city.required":         "City is required",
	"state.required":        "State is required",
	"contact.required":      "Contact number is required",
	"contact.min":           "Contact number must be at least 10 digits",
	"email_id.required":     "Email is required",
	"email_id.school_email": "Invalid email address",
}

// Setup registers the validator with English translations on Gin's binding engine.
// Safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*govalidator.Validate)
		if !ok {
			return
		}

		// Report fields by their form (or JSON) name.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})

		_ = v.RegisterValidation("school_email", func(fl govalidator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)
		_ = v.RegisterTranslation("school_email", trans,
			func(ut ut.Translator) error {
				return ut.Add("school_email", "{0} must be a valid email address", true)
			},
			func(ut ut.Translator, fe govalidator.FieldError) string {
				t, _ := ut.T("school_email", fe.Field())
				return t
			},
		)
	})
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
				fields[fe.Field()] = msg
				continue
			}
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

// BindForm binds and validates a url-encoded or multipart form into dst.
// Validation failures come back as a translated field error map; any other
// failure (unreadable or oversized body) is returned as err.
func BindForm(c *gin.Context, dst interface{}) (map[string]string, error) {
	err := c.ShouldBind(dst)
	if err == nil {
		return nil, nil
	}
	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		return TranslateErrors(err), nil
	}
	return nil, err
}

// Struct validates an already populated struct.
func Struct(dst interface{}) map[string]string {
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
