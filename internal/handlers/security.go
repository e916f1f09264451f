package handlers

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fropcore/bmiwidget/internal/security"
	"github.com/fropcore/bmiwidget/pkg/response"
)

// SecurityHandler serves the configuration audit.
type SecurityHandler struct {
	audit *security.AuditService
}

func NewSecurityHandler(audit *security.AuditService) (*SecurityHandler, error) {
	if audit == nil {
		return nil, errors.New("security handler: audit service is required")
	}
	return &SecurityHandler{audit: audit}, nil
}

// Audit runs every check. ?status=warn,fail narrows the returned checks; the
// summary always counts the full run.
//
// GET /api/security/audit
func (h *SecurityHandler) Audit(c *gin.Context) {
	result := h.audit.Run(requestContext(c))

	if wanted := statusFilter(c.Query("status")); len(wanted) > 0 {
		result.Checks = slices.DeleteFunc(result.Checks, func(check security.Check) bool {
			return !slices.Contains(wanted, check.Status)
		})
	}
	response.Success(c, http.StatusOK, result)
}

func statusFilter(raw string) []security.CheckStatus {
	var out []security.CheckStatus
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, security.CheckStatus(part))
		}
	}
	return out
}
