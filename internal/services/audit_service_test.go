package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fropcore/bmiwidget/internal/database/testutil"
	"github.com/fropcore/bmiwidget/internal/models"
)

func TestAuditServiceLogAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.Log(ctx, AuditEntry{
		Actor:    "admin",
		Action:   AuditActionSettingsUpdate,
		Resource: SettingsResource,
		Result:   AuditResultSuccess,
		Metadata: map[string]any{"weight": 70},
	}))
	require.NoError(t, svc.Log(ctx, AuditEntry{
		Actor:  "admin",
		Action: "auth.login",
		Result: AuditResultFailure,
	}))

	all, err := svc.List(ctx, AuditListOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, all.Total)
	require.Len(t, all.Logs, 2)
	require.Equal(t, 1, all.TotalPages())

	filtered, err := svc.List(ctx, AuditListOptions{Filters: AuditFilters{Action: AuditActionSettingsUpdate}})
	require.NoError(t, err)
	require.EqualValues(t, 1, filtered.Total)

	var metadata map[string]any
	require.NoError(t, json.Unmarshal(filtered.Logs[0].Metadata, &metadata))
	require.EqualValues(t, 70, metadata["weight"])

	failures, err := svc.List(ctx, AuditListOptions{Filters: AuditFilters{Result: AuditResultFailure, Actor: "admin"}})
	require.NoError(t, err)
	require.EqualValues(t, 1, failures.Total)

	none, err := svc.List(ctx, AuditListOptions{Filters: AuditFilters{Actor: "nobody"}})
	require.NoError(t, err)
	require.Zero(t, none.Total)
	require.NotNil(t, none.Logs)
	require.Empty(t, none.Logs)
}

func TestAuditServiceListPaging(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	ctx := context.Background()
	for range 5 {
		require.NoError(t, svc.Log(ctx, AuditEntry{Action: AuditActionSettingsUpdate, Result: AuditResultSuccess}))
	}

	second, err := svc.List(ctx, AuditListOptions{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, second.Logs, 2)
	require.Equal(t, 3, second.TotalPages())

	clamped, err := svc.List(ctx, AuditListOptions{Page: -1, PageSize: MaxAuditPageSize + 1})
	require.NoError(t, err)
	require.Equal(t, 1, clamped.Page)
	require.Equal(t, DefaultAuditPageSize, clamped.PerPage)
	require.Len(t, clamped.Logs, 5)
}

func TestAuditServiceLogValidation(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	require.Error(t, svc.Log(context.Background(), AuditEntry{Result: AuditResultSuccess}))
	require.Error(t, svc.Log(context.Background(), AuditEntry{Action: "x"}))

	_, err = NewAuditService(nil)
	require.Error(t, err)
}

func TestAuditServiceCleanupOlderThan(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewAuditService(db)
	require.NoError(t, err)

	oldLog := models.AuditLog{
		Action:    "old.action",
		Result:    AuditResultSuccess,
		CreatedAt: time.Now().AddDate(0, 0, -10),
	}
	require.NoError(t, db.Create(&oldLog).Error)
	require.NoError(t, svc.Log(context.Background(), AuditEntry{Action: "new.action", Result: AuditResultSuccess}))

	ctx := context.Background()
	rows, err := svc.CleanupOlderThan(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, int64(1), rows)

	_, err = svc.CleanupOlderThan(ctx, 0)
	require.Error(t, err)
}
