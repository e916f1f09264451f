package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fropcore/bmiwidget/internal/services"
	appErrors "github.com/fropcore/bmiwidget/pkg/errors"
	"github.com/fropcore/bmiwidget/pkg/response"
)

// AuditHandler exposes the settings change trail to the admin.
type AuditHandler struct {
	svc *services.AuditService
}

func NewAuditHandler(svc *services.AuditService) (*AuditHandler, error) {
	if svc == nil {
		return nil, errors.New("audit handler: service is required")
	}
	return &AuditHandler{svc: svc}, nil
}

// GET /api/audit
func (h *AuditHandler) List(c *gin.Context) {
	filters := services.AuditFilters{
		Actor:    c.Query("actor"),
		Action:   c.Query("action"),
		Result:   c.Query("result"),
		Resource: c.Query("resource"),
	}

	var err error
	if filters.Since, err = timeQuery(c, "since"); err != nil {
		response.Error(c, err)
		return
	}
	if filters.Until, err = timeQuery(c, "until"); err != nil {
		response.Error(c, err)
		return
	}

	page, err := h.svc.List(requestContext(c), services.AuditListOptions{
		Page:     parseIntQuery(c, "page", 1),
		PageSize: parseIntQuery(c, "per_page", services.DefaultAuditPageSize),
		Filters:  filters,
	})
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer.WithInternal(err))
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, page.Logs, &response.Meta{
		Page:       page.Page,
		PerPage:    page.PerPage,
		Total:      int(page.Total),
		TotalPages: page.TotalPages(),
	})
}

func timeQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, appErrors.NewBadRequest(key + " must be an RFC 3339 timestamp")
	}
	return &ts, nil
}
