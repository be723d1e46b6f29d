package outfit

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/yanqian/ootd-recommender/pkg/errors"
)

var validate = validator.New()

// ValidateInputs rejects malformed profiles and weather snapshots. It is the only
// failure the scoring strategies surface.
func ValidateInputs(user UserProfile, weather Weather) error {
	if err := validate.Struct(user); err != nil {
		return apperrors.Wrap("invalid_input", "invalid user profile", err)
	}
	if err := validate.Struct(weather); err != nil {
		return apperrors.Wrap("invalid_input", "invalid weather snapshot", err)
	}
	if weather.Instant().IsZero() {
		return apperrors.Wrap("invalid_input", "invalid weather snapshot", errors.New("forecastAt or createdAt is required"))
	}
	return nil
}

func validateRequest(req Request) error {
	if err := validate.Struct(req); err != nil {
		return apperrors.Wrap("invalid_input", fmt.Sprintf("invalid request: %v", firstFieldError(err)), err)
	}
	return nil
}

func firstFieldError(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fe.Field() + " failed " + fe.Tag()
	}
	return err.Error()
}
