package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/oppia-go-api/internal/dto"
	"github.com/noah-isme/oppia-go-api/internal/repository"
	"github.com/noah-isme/oppia-go-api/internal/testutil"
)

func TestAdminSiteListsAccessLogsWithDisplayColumns(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	logs := NewAccessLogService(repository.NewAccessLogRepository(db), zerolog.Nop())
	ctx := context.Background()

	demoID, adminID := fx.Demo.ID, fx.Admin.ID
	require.NoError(t, logs.Record(ctx, dto.AccessLogEntry{UserID: &demoID, URL: "/profile/4/regenerate/", IP: "10.0.0.1", Agent: "firefox"}))
	require.NoError(t, logs.Record(ctx, dto.AccessLogEntry{UserID: &adminID, URL: "/admin/", IP: "10.0.0.2"}))

	site := NewAdminSite()
	require.NoError(t, site.Register(NewDashboardAccessLogAdmin(logs)))
	require.Error(t, site.Register(NewDashboardAccessLogAdmin(logs)))

	list, err := site.ChangeList(ctx, "reports", "dashboardaccesslog", dto.AdminListRequest{Search: "demo"})
	require.NoError(t, err)
	require.Len(t, list.Results, 1)
	row := list.Results[0]
	require.Equal(t, "demo", row["user"])
	require.Equal(t, "/profile/4/regenerate/", row["url"])
	require.Contains(t, row, "access_date")
	require.NotContains(t, row, "agent")
	require.True(t, list.Model.ReadOnly)

	detail, err := site.Detail(ctx, "reports", "dashboardaccesslog", row["id"].(uint))
	require.NoError(t, err)
	require.Equal(t, "firefox", detail.Fields["agent"])

	_, err = site.Detail(ctx, "reports", "dashboardaccesslog", 9999)
	require.ErrorIs(t, err, ErrAdminObjectNotFound)

	_, err = site.ChangeList(ctx, "reports", "tracker", dto.AdminListRequest{})
	require.ErrorIs(t, err, ErrAdminModelNotRegistered)
}

func TestAdminSiteModelsAreSorted(t *testing.T) {
	db := testutil.NewDB(t)
	logs := NewAccessLogService(repository.NewAccessLogRepository(db), zerolog.Nop())
	recovery := NewDataRecoveryService(repository.NewDataRecoveryRepository(db), newValidator(), zerolog.Nop())

	site := NewAdminSite()
	require.NoError(t, site.Register(NewDashboardAccessLogAdmin(logs)))
	require.NoError(t, site.Register(NewDataRecoveryAdmin(recovery)))

	models := site.Models()
	require.Len(t, models, 2)
	require.Equal(t, "/admin/datarecovery/datarecovery/", models[0].URL)
	require.Equal(t, []string{"recover"}, models[0].Actions)
	require.Equal(t, "/admin/reports/dashboardaccesslog/", models[1].URL)
}
