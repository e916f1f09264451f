package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/fropcore/bmiwidget/internal/models"
)

// Audit outcomes.
const (
	AuditResultSuccess = "success"
	AuditResultFailure = "failure"
)

// Page sizing for audit listings.
const (
	DefaultAuditPageSize = 50
	MaxAuditPageSize     = 200
)

var (
	errAuditActionRequired = errors.New("audit service: action is required")
	errAuditResultRequired = errors.New("audit service: result is required")
)

// AuditEntry is one event on the settings trail: who saved which measurements
// and whether the save went through.
type AuditEntry struct {
	Actor     string
	Action    string
	Resource  string
	Result    string
	IPAddress string
	UserAgent string
	Metadata  map[string]any
}

func (e AuditEntry) record() (models.AuditLog, error) {
	rec := models.AuditLog{
		Actor:     strings.TrimSpace(e.Actor),
		Action:    strings.TrimSpace(e.Action),
		Resource:  strings.TrimSpace(e.Resource),
		Result:    strings.TrimSpace(e.Result),
		IPAddress: strings.TrimSpace(e.IPAddress),
		UserAgent: strings.TrimSpace(e.UserAgent),
	}
	switch {
	case rec.Action == "":
		return rec, errAuditActionRequired
	case rec.Result == "":
		return rec, errAuditResultRequired
	}
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return rec, fmt.Errorf("audit service: marshal metadata: %w", err)
		}
		rec.Metadata = datatypes.JSON(raw)
	}
	return rec, nil
}

// AuditFilters narrows an audit query. Zero values match everything.
type AuditFilters struct {
	Actor    string
	Action   string
	Result   string
	Resource string
	Since    *time.Time
	Until    *time.Time
}

func (f AuditFilters) scope(db *gorm.DB) *gorm.DB {
	columns := map[string]string{
		"actor":    f.Actor,
		"action":   f.Action,
		"result":   f.Result,
		"resource": f.Resource,
	}
	for column, value := range columns {
		if value = strings.TrimSpace(value); value != "" {
			db = db.Where(column+" = ?", value)
		}
	}
	if f.Since != nil {
		db = db.Where("created_at >= ?", *f.Since)
	}
	if f.Until != nil {
		db = db.Where("created_at <= ?", *f.Until)
	}
	return db
}

// AuditListOptions controls pagination and filtering for audit queries.
type AuditListOptions struct {
	Page     int
	PageSize int
	Filters  AuditFilters
}

func (o AuditListOptions) normalized() AuditListOptions {
	if o.Page <= 0 {
		o.Page = 1
	}
	if o.PageSize <= 0 || o.PageSize > MaxAuditPageSize {
		o.PageSize = DefaultAuditPageSize
	}
	return o
}

// AuditPage is one page of audit records, newest first.
type AuditPage struct {
	Logs    []models.AuditLog
	Total   int64
	Page    int
	PerPage int
}

// TotalPages reports how many pages of PerPage records Total spans.
func (p AuditPage) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// AuditService persists and retrieves audit log entries.
type AuditService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAuditService constructs an AuditService using the provided database handle.
func NewAuditService(db *gorm.DB) (*AuditService, error) {
	if db == nil {
		return nil, errors.New("audit service: db is required")
	}
	return &AuditService{db: db, now: time.Now}, nil
}

// Log validates and stores entry.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	rec, err := entry.record()
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ensureContext(ctx)).Create(&rec).Error; err != nil {
		return fmt.Errorf("audit service: create log: %w", err)
	}
	return nil
}

// List returns one page of audit logs matching opts. Out-of-range paging falls
// back to the first page of DefaultAuditPageSize records.
func (s *AuditService) List(ctx context.Context, opts AuditListOptions) (AuditPage, error) {
	opts = opts.normalized()
	page := AuditPage{Page: opts.Page, PerPage: opts.PageSize, Logs: []models.AuditLog{}}

	base := s.db.WithContext(ensureContext(ctx)).Model(&models.AuditLog{}).Scopes(opts.Filters.scope)
	if err := base.Session(&gorm.Session{}).Count(&page.Total).Error; err != nil {
		return AuditPage{}, fmt.Errorf("audit service: count logs: %w", err)
	}
	if page.Total == 0 {
		return page, nil
	}

	err := base.
		Order("created_at DESC").
		Order("id DESC").
		Offset((opts.Page - 1) * opts.PageSize).
		Limit(opts.PageSize).
		Find(&page.Logs).Error
	if err != nil {
		return AuditPage{}, fmt.Errorf("audit service: list logs: %w", err)
	}
	return page, nil
}

// CleanupOlderThan deletes records created more than retentionDays ago and
// reports how many were removed.
func (s *AuditService) CleanupOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, errors.New("audit service: retentionDays must be positive")
	}

	cutoff := s.now().AddDate(0, 0, -retentionDays)
	res := s.db.WithContext(ensureContext(ctx)).
		Where("created_at < ?", cutoff).
		Delete(&models.AuditLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("audit service: cleanup logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}
