package model

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator"
)

const (
	tagCompanyIdentity = "company_identity"
	tagNotBlank        = "notblank"
)

var validate = newValidator() //nolint:gochecknoglobals // validator caches struct metadata

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation(tagNotBlank, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		ref := sl.Current().Interface().(CompanyRef)
		if ref.Key() == "" {
			sl.ReportError(ref.URN, "company_urn", "URN", tagCompanyIdentity, "")
		}
	}, CompanyRef{})
	return v
}

// ValidateEmployee checks the fields ranking and flow depend on: profile_urn,
// a non-empty experience list and a company identity on every experience.
// index is the position of the record in its batch.
func ValidateEmployee(index int, e Employee) *ValidationError {
	err := validate.Struct(e)
	if err == nil {
		return nil
	}
	ve := &ValidationError{Record: e.ProfileURN, Index: index, Field: "record", Reason: err.Error()}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		ve.Field = trimRoot(fe.Namespace())
		ve.Reason = reason(fe.Tag())
	}
	return ve
}

// trimRoot drops the struct name: "Employee.experience[0].company.company_urn" -> "experience[0].company.company_urn".
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reason(tag string) string {
	switch tag {
	case "required", tagNotBlank:
		return "is required"
	case "min":
		return "must not be empty"
	case tagCompanyIdentity:
		return "needs a company urn or name"
	default:
		return "failed " + tag
	}
}
