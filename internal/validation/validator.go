package validation

import (
	"regexp"
	"strconv"
	"strings"

	"quiz-shell/internal/domain"
)

var leadingInt = regexp.MustCompile(`^\s*[+-]?\d+`)

// Validator checks the arguments typed after a command.
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ParseID reads the integer at the start of arg, so "12abc" is 12 and
// "abc" is invalid. param names the argument in the error message.
func (v *Validator) ParseID(param, arg string) (int64, error) {
	if strings.TrimSpace(arg) == "" {
		return 0, domain.NewMissingParameterError(param)
	}

	prefix := leadingInt.FindString(arg)
	if prefix == "" {
		return 0, domain.NewInvalidParameterError(param)
	}

	id, err := strconv.ParseInt(strings.TrimSpace(prefix), 10, 64)
	if err != nil {
		// only a range error is possible here
		return 0, domain.NewInvalidParameterError(param)
	}
	return id, nil
}
