package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	safeStringRe     = regexp.MustCompile(`^[a-zA-Z0-9_\-\.:]+$`)
	idempotencyKeyRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.:]{8,128}$`)
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("safe_id", validateSafeID)
	}
}

// validateSafeID allows alphanumeric, underscore, dash, dot, and colon.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

// ValidIdempotencyKey reports whether key is acceptable: 8-128 chars from
// the safe identifier alphabet. Keys travel in headers and become database
// keys, so the alphabet stays narrow.
func ValidIdempotencyKey(key string) bool {
	return idempotencyKeyRe.MatchString(key)
}

// ValidProviderName reports whether a webhook path provider segment is a
// plausible provider slug. The route namespace keys the idempotency store,
// so arbitrary segments are refused.
func ValidProviderName(name string) bool {
	return len(name) <= 50 && safeStringRe.MatchString(name)
}

// ValidAgentID reports whether a path agent id segment is well formed.
func ValidAgentID(id string) bool {
	return len(id) <= 100 && safeStringRe.MatchString(id)
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
