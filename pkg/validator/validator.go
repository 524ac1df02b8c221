package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/deskline/service-desk/internal/domain"
	"github.com/deskline/service-desk/internal/lifecycle"
	"github.com/deskline/service-desk/internal/policy"
	apperrors "github.com/deskline/service-desk/pkg/util/errorutil"
)

// ErrorResponse describes a single failed field.
type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"param,omitempty"`
}

var validate = validator.New()

func init() {
	_ = validate.RegisterValidation("ticket_status", func(fl validator.FieldLevel) bool {
		_, ok := lifecycle.ParseStatus(fl.Field().String())
		return ok
	})
	_ = validate.RegisterValidation("ticket_priority", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParsePriority(fl.Field().String())
		return ok
	})
	_ = validate.RegisterValidation("asset_status", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseAssetStatus(fl.Field().String())
		return ok
	})
	_ = validate.RegisterValidation("asset_criticality", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseCriticality(fl.Field().String())
		return ok
	})
	_ = validate.RegisterValidation("article_status", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseArticleStatus(fl.Field().String())
		return ok
	})
	_ = validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		_, ok := policy.ParseRole(fl.Field().String())
		return ok
	})
}

// ValidateStruct runs struct-tag validation and returns per-field failures.
func ValidateStruct(data interface{}) []*ErrorResponse {
	var result []*ErrorResponse
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []*ErrorResponse{{FailedField: "", Tag: err.Error()}}
	}
	for _, fe := range fieldErrs {
		result = append(result, &ErrorResponse{
			FailedField: fe.StructNamespace(),
			Tag:         fe.Tag(),
			Value:       fe.Param(),
		})
	}
	return result
}

// Validate wraps ValidateStruct into a VALIDATION_FAILED domain error.
func Validate(data interface{}) error {
	failures := ValidateStruct(data)
	if len(failures) == 0 {
		return nil
	}
	return apperrors.NewValidationError("invalid payload", map[string]any{"fields": failures})
}
