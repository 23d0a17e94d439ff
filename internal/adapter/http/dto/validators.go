package dto

import (
	"html"
	"reflect"
	"strings"

	"github.com/DmitriySvyatov/WalletApi/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// TagWalletID is the validation tag for wallet identifiers.
const TagWalletID = "wallet_id"

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation(TagWalletID, validateWalletID)
		v.RegisterTagNameFunc(fieldName)
	}
}

// validateWalletID accepts the canonical 36-character UUID form.
func validateWalletID(fl validator.FieldLevel) bool {
	_, err := domain.ParseWalletID(fl.Field().String())
	return err == nil
}

// fieldName reports json or uri names in validation errors so they match the wire.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "uri"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				elem.SetString(sanitize(elem.String()))
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
