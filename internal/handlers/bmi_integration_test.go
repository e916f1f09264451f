package handlers_test

import (
	"maps"
	"net/http"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fropcore/bmiwidget/internal/handlers/testutil"
	"github.com/fropcore/bmiwidget/internal/services"
)

type bmiResponse struct {
	Configured         bool       `json:"configured"`
	BMI                float64    `json:"bmi"`
	BMIFormatted       string     `json:"bmi_formatted"`
	Classification     string     `json:"classification"`
	ClassificationSlug string     `json:"classification_slug"`
	DisplayWeight      string     `json:"display_weight"`
	UpdatedAt          *time.Time `json:"updated_at"`
}

func decodeBMI(t *testing.T, env *testutil.Env, method, path string, body any) bmiResponse {
	t.Helper()
	resp := env.Request(method, path, body, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	payload := testutil.DecodeResponse(t, resp)
	require.True(t, payload.Success)

	var result bmiResponse
	testutil.DecodeInto(t, payload.Data, &result)
	return result
}

func TestBMIHandler_CurrentUnconfigured(t *testing.T) {
	env := testutil.NewEnv(t)

	result := decodeBMI(t, env, http.MethodGet, "/api/bmi", nil)
	require.False(t, result.Configured)
	require.Zero(t, result.BMI)
	require.Empty(t, result.Classification)
	require.Nil(t, result.UpdatedAt)
}

func TestBMIHandler_CurrentConfigured(t *testing.T) {
	env := testutil.NewEnv(t)
	saved := saveSettings(t, env, services.SettingsInput{Weight: "95", Height: "180", ShowUpdated: "1"})

	result := decodeBMI(t, env, http.MethodGet, "/api/bmi", nil)
	require.True(t, result.Configured)
	require.Equal(t, 29.3, result.BMI)
	require.Equal(t, "29.3", result.BMIFormatted)
	require.Equal(t, "Overweight", result.Classification)
	require.Equal(t, "overweight", result.ClassificationSlug)
	require.Equal(t, "95.0 kg (209.4 lb)", result.DisplayWeight)
	require.NotNil(t, result.UpdatedAt)
	require.True(t, saved.UpdatedAt.Equal(*result.UpdatedAt))

	// show_updated only drives the widget's "Last updated" line.
	resaved := saveSettings(t, env, services.SettingsInput{Weight: "95", Height: "180"})
	hidden := decodeBMI(t, env, http.MethodGet, "/api/bmi", nil)
	require.True(t, hidden.Configured)
	require.NotNil(t, hidden.UpdatedAt)
	require.True(t, resaved.UpdatedAt.Equal(*hidden.UpdatedAt))
}

func TestBMIHandler_Compute(t *testing.T) {
	env := testutil.NewEnv(t)

	cases := []struct {
		name  string
		body  map[string]any
		bmi   float64
		class string
		shown string
	}{
		{
			name:  "metric defaults",
			body:  map[string]any{"weight": 50, "height": 170},
			bmi:   17.3,
			class: "Underweight",
			shown: "50.0 kg (110.2 lb)",
		},
		{
			name:  "imperial",
			body:  map[string]any{"weight": 154, "weight_unit": "lb", "height": 69, "height_unit": "in"},
			bmi:   22.7,
			class: "Normal weight",
			shown: "154.0 lb (69.9 kg)",
		},
		{
			name:  "obesity class two",
			body:  map[string]any{"weight": 110, "height": 175},
			bmi:   35.9,
			class: "Obesity class II",
			shown: "110.0 kg (242.5 lb)",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := decodeBMI(t, env, http.MethodPost, "/api/bmi/compute", tc.body)
			require.True(t, result.Configured)
			require.Equal(t, tc.bmi, result.BMI)
			require.Equal(t, tc.class, result.Classification)
			require.Equal(t, tc.shown, result.DisplayWeight)
			require.Nil(t, result.UpdatedAt)
		})
	}
}

func TestBMIHandler_ComputeValidation(t *testing.T) {
	env := testutil.NewEnv(t)

	cases := map[string]struct {
		body    map[string]any
		message string
	}{
		"zero weight":   {body: map[string]any{"weight": 0, "height": 170}, message: "weight must be greater than 0"},
		"negative":      {body: map[string]any{"weight": 70, "height": -1}, message: "height must be greater than 0"},
		"unknown unit":  {body: map[string]any{"weight": 70, "weight_unit": "stone", "height": 170}, message: "weight unit must be one of: kg, lb"},
		"missing input": {body: map[string]any{}, message: "weight must be greater than 0"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp := env.Request(http.MethodPost, "/api/bmi/compute", tc.body, "")
			require.Equal(t, http.StatusBadRequest, resp.Code)
			payload := testutil.DecodeResponse(t, resp)
			require.False(t, payload.Success)
			require.Equal(t, "BAD_REQUEST", payload.Error.Code)
			require.Contains(t, payload.Error.Message, tc.message)
			require.Contains(t, slices.Collect(maps.Values(payload.Error.Fields)), tc.message)
		})
	}
}
