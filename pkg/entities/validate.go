package entities

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"trackcore/pkg/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldFailures runs the struct-tag rules declared on a record and maps each
// violation onto the property of the same name.
func fieldFailures(rec any) []domain.Failure {
	err := validate.Struct(rec)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []domain.Failure{{Reason: err.Error()}}
	}
	out := make([]domain.Failure, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, domain.Failure{Field: domain.Property(fe.StructField()), Reason: reason(fe)})
	}
	return out
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

// requireKey reports a missing mandatory foreign key.
func requireKey(failures []domain.Failure, key domain.Identity, field domain.Property) []domain.Failure {
	if key.IsZero() {
		return append(failures, domain.Failure{Field: field, Reason: "must be set"})
	}
	return failures
}

// differ collects changed properties in the order they are checked.
type differ struct {
	props []domain.Property
}

func (d *differ) check(changed bool, p domain.Property) {
	if changed {
		d.props = append(d.props, p)
	}
}
