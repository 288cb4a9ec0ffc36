package filter

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidState wraps every validation failure returned by Validate.
var ErrInvalidState = errors.New("filter: invalid state")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks score bounds and ordering.
func (s State) Validate() error {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidState, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("score %s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("score %s must be at most %s", field, fe.Param())
	case "ltefield":
		return "score from must not exceed score to"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
