package fleet

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report field names the way they are spelled in the YAML document.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks required fields and cross-entry rules. The first problem
// found is returned as a *ConfigError.
func (f *Fleet) Validate() error {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &ConfigError{Field: fieldPath(fe.Namespace()), Msg: describe(fe)}
		}
		return &ConfigError{Err: err}
	}
	seen := make(map[string]int, len(f.Hosts))
	for i, h := range f.Hosts {
		if j, dup := seen[h.Name]; dup {
			return &ConfigError{
				Field: fmt.Sprintf("hosts[%d].name", i),
				Msg:   fmt.Sprintf("duplicate host name %q (also hosts[%d])", h.Name, j),
			}
		}
		seen[h.Name] = i
	}
	return nil
}

// fieldPath strips the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s entries", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %v", fe.Param(), fe.Value())
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}
