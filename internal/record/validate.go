package record

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sells-group/company-profiler/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ownership", func(fl validator.FieldLevel) bool {
		return IsOwnership(fl.Field().String())
	})
	return v
}

// IsOwnership reports whether s is one of the ownership values, ignoring case
// and surrounding whitespace.
func IsOwnership(s string) bool {
	s = strings.TrimSpace(s)
	for _, o := range model.OwnershipValues {
		if strings.EqualFold(o, s) {
			return true
		}
	}
	return false
}

// Validate returns a copy of c restricted to schema keys. Unknown keys are
// dropped; missing keys stay missing. An ownership value outside the known
// set is logged and kept.
func Validate(c model.Candidate) model.Candidate {
	out := make(model.Candidate, len(c))
	for k, v := range c {
		if !model.IsField(k) {
			zap.L().Debug("record: dropping unknown field", zap.String("field", k))
			continue
		}
		out[k] = v
	}

	if s, ok := out[model.FieldOwnership].(string); ok && NonEmpty(s, DefaultPlaceholders()) {
		if err := validate.Var(s, "ownership"); err != nil {
			zap.L().Debug("record: ownership outside known values",
				zap.String("ownership", s),
			)
		}
	}
	return out
}
