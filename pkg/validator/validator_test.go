package validator

import (
	"math"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

type loginPayload struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type measurementPayload struct {
	Weight float64 `json:"weight" validate:"finite"`
	Label  string  `form:"custom_label" validate:"max=5"`
}

func TestValidateStructSuccess(t *testing.T) {
	require.NoError(t, ValidateStruct(loginPayload{Username: "admin", Password: "correct-horse"}))
}

func TestValidateStructFailures(t *testing.T) {
	err := ValidateStruct(loginPayload{Password: "short"})
	require.Error(t, err)

	vErrs, ok := err.(ValidationErrors)
	require.True(t, ok, "expected ValidationErrors, got %T", err)
	require.Len(t, vErrs, 2)
	require.Equal(t, "username", vErrs[0].Field)
	require.Equal(t, "required", vErrs[0].Tag)
	require.Equal(t, "password", vErrs[1].Field)
	require.Equal(t, "8", vErrs[1].Param)
	require.Contains(t, vErrs.Error(), "password failed on min=8")
}

func TestFiniteRule(t *testing.T) {
	require.NoError(t, ValidateStruct(measurementPayload{Weight: 70}))

	err := ValidateStruct(measurementPayload{Weight: math.Inf(1)})
	require.Error(t, err)
	vErrs := err.(ValidationErrors)
	require.Equal(t, "weight", vErrs[0].Field)
	require.Equal(t, "finite", vErrs[0].Tag)
}

func TestFormTagNames(t *testing.T) {
	err := ValidateStruct(measurementPayload{Label: "too long"})
	require.Error(t, err)
	require.Equal(t, "custom_label", err.(ValidationErrors)[0].Field)
}

func TestRegisterValidation(t *testing.T) {
	require.NoError(t, RegisterValidation("is_kg", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "kg"
	}))

	type unitPayload struct {
		Unit string `json:"unit" validate:"is_kg"`
	}

	require.NoError(t, ValidateStruct(unitPayload{Unit: "kg"}))
	require.Error(t, ValidateStruct(unitPayload{Unit: "lb"}))
}

type computePayload struct {
	Weight     float64 `json:"weight" validate:"gt=0,finite"`
	WeightUnit string  `json:"weight_unit" validate:"omitempty,oneof=kg lb"`
	Note       string  `json:"-" form:"note" validate:"max=3"`
}

func TestValidationMessages(t *testing.T) {
	err := ValidateStruct(computePayload{Weight: -1, WeightUnit: "stone", Note: "long"})
	require.Error(t, err)

	vErrs := err.(ValidationErrors)
	require.Len(t, vErrs, 3)
	require.Equal(t, "weight must be greater than 0", vErrs[0].Message())
	require.Equal(t, "weight unit must be one of: kg, lb", vErrs[1].Message())
	require.Equal(t, "Note", vErrs[2].Field)
	require.Equal(t,
		"weight must be greater than 0; weight unit must be one of: kg, lb; note must be at most 3 characters",
		vErrs.Messages())

	require.Equal(t, map[string]string{
		"weight":      "weight must be greater than 0",
		"weight_unit": "weight unit must be one of: kg, lb",
		"Note":        "note must be at most 3 characters",
	}, vErrs.Fields())

	require.Equal(t, "password is required", ValidationError{Field: "password", Tag: "required"}.Message())
	require.Equal(t, "field failed validation: uuid", ValidationError{Tag: "uuid"}.Message())
	require.Equal(t, "invalid request payload", ValidationErrors{}.Messages())
}
