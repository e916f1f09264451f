package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/fropcore/bmiwidget/pkg/errors"
	"github.com/fropcore/bmiwidget/pkg/response"
	appValidator "github.com/fropcore/bmiwidget/pkg/validator"
)

// bindAndValidate decodes the JSON body into dest and applies its validate
// tags. On failure the 400 response is already written.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		var failures appValidator.ValidationErrors
		if !errors.As(err, &failures) {
			response.Error(c, appErrors.NewBadRequest("invalid request payload"))
			return false
		}
		response.Error(c, appErrors.NewBadRequest(failures.Messages()).WithFields(failures.Fields()))
		return false
	}
	return true
}

// parseIntQuery reads a positive integer query parameter.
func parseIntQuery(c *gin.Context, key string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
