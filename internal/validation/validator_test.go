package validation

import (
	"math"
	"strconv"
	"testing"

	"quiz-shell/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ParseID(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name     string
		arg      string
		wantID   int64
		wantCode domain.ErrorCode
	}{
		{name: "Plain", arg: "3", wantID: 3},
		{name: "Padded", arg: "  7  ", wantID: 7},
		{name: "LeadingDigits", arg: "12abc", wantID: 12},
		{name: "Signed", arg: "-4", wantID: -4},
		{name: "ExplicitPlus", arg: "+5", wantID: 5},
		{name: "Zero", arg: "0", wantID: 0},
		{name: "MaxInt64", arg: strconv.FormatInt(math.MaxInt64, 10), wantID: math.MaxInt64},
		{name: "Empty", arg: "", wantCode: domain.CodeMissingParameter},
		{name: "Blank", arg: "   ", wantCode: domain.CodeMissingParameter},
		{name: "Word", arg: "abc", wantCode: domain.CodeInvalidParameter},
		{name: "SignOnly", arg: "-", wantCode: domain.CodeInvalidParameter},
		{name: "Hex", arg: "x10", wantCode: domain.CodeInvalidParameter},
		{name: "Overflow", arg: "99999999999999999999", wantCode: domain.CodeInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := v.ParseID("quizId", tt.arg)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, domain.HasCode(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestValidator_ParseIDMessages(t *testing.T) {
	v := NewValidator()

	_, err := v.ParseID("quizId", "")
	assert.EqualError(t, err, "Falta el parámetro quizId.")

	_, err = v.ParseID("quizId", "uno")
	assert.EqualError(t, err, "El valor del parámetro quizId no es un número.")
}
