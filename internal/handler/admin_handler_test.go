package handler_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/oppia-go-api/internal/dto"
	"github.com/noah-isme/oppia-go-api/internal/models"
	"github.com/noah-isme/oppia-go-api/internal/utils"
)

type changeListEnvelope struct {
	Success bool                `json:"success"`
	Data    dto.AdminChangeList `json:"data"`
}

func seedRecovery(t *testing.T, srv *testServer, userID *uint) models.DataRecovery {
	t.Helper()
	reasons := "user not found"
	record := models.DataRecovery{
		DataType: models.DataRecoveryUserProfile,
		Reasons:  &reasons,
		Data:     `{"username":"ghost"}`,
		UserID:   userID,
	}
	require.NoError(t, srv.db.Create(&record).Error)
	return record
}

func TestAdminRequiresStaff(t *testing.T) {
	srv := newTestServer(t)

	for _, user := range []models.User{srv.fx.Teacher, srv.fx.Demo} {
		resp := srv.page(t, http.MethodGet, "/admin/reports/dashboardaccesslog/", user, nil, nil)
		require.Equal(t, http.StatusForbidden, resp.StatusCode, user.Username)
	}

	resp := srv.page(t, http.MethodGet, "/admin/", models.User{}, nil, nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	for _, user := range []models.User{srv.fx.Admin, srv.fx.Staff} {
		resp := srv.page(t, http.MethodGet, "/admin/", user, nil, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, user.Username)

		var envelope struct {
			Data []dto.AdminModelSummary `json:"data"`
		}
		decodeJSON(t, resp, &envelope)
		require.Len(t, envelope.Data, 2)
		require.Equal(t, "datarecovery", envelope.Data[0].AppLabel)
		require.Equal(t, "reports", envelope.Data[1].AppLabel)
	}
}

func TestAdminAccessLogChangeList(t *testing.T) {
	srv := newTestServer(t)
	schema := compileSchema(t, "admin_change_list.schema.json")

	srv.page(t, http.MethodGet, regeneratePath(srv.fx.Demo.ID), srv.fx.Demo, nil, nil)
	srv.page(t, http.MethodGet, regeneratePath(srv.fx.Teacher.ID), srv.fx.Teacher, nil, nil)

	resp := srv.page(t, http.MethodGet, "/admin/reports/dashboardaccesslog/", srv.fx.Staff, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))

	var envelope changeListEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.Equal(t, []string{"user", "access_date", "url", "ip", "data"}, envelope.Data.Model.ListDisplay)
	require.Len(t, envelope.Data.Results, 2)
	for _, row := range envelope.Data.Results {
		for _, column := range envelope.Data.Model.ListDisplay {
			require.Contains(t, row, column)
		}
		require.NotContains(t, row, "agent")
	}

	resp = srv.page(t, http.MethodGet, "/admin/reports/dashboardaccesslog/?q=teacher", srv.fx.Staff, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	envelope = changeListEnvelope{}
	decodeJSON(t, resp, &envelope)
	require.Len(t, envelope.Data.Results, 1)
	require.Equal(t, "teacher", envelope.Data.Results[0]["user"])
}

func TestAdminDataRecoveryChangeListAndDetail(t *testing.T) {
	srv := newTestServer(t)
	schema := compileSchema(t, "admin_change_list.schema.json")
	record := seedRecovery(t, srv, nil)
	seedRecovery(t, srv, &srv.fx.Demo.ID)

	resp := srv.page(t, http.MethodGet, "/admin/datarecovery/datarecovery/", srv.fx.Admin, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))

	var envelope changeListEnvelope
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.Equal(t, []string{"user", "created_date", "data_type", "recovered", "reasons"}, envelope.Data.Model.ListDisplay)
	require.Equal(t, []string{"recover"}, envelope.Data.Model.Actions)
	require.Len(t, envelope.Data.Results, 2)

	resp = srv.page(t, http.MethodGet, fmt.Sprintf("/admin/datarecovery/datarecovery/%d/", record.ID), srv.fx.Admin, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail struct {
		Data dto.AdminDetail `json:"data"`
	}
	decodeJSON(t, resp, &detail)
	require.Equal(t, `{"username":"ghost"}`, detail.Data.Fields["data"])

	resp = srv.page(t, http.MethodGet, "/admin/datarecovery/datarecovery/999999/", srv.fx.Admin, nil, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = srv.page(t, http.MethodGet, "/admin/unknown/model/", srv.fx.Admin, nil, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminRegistrationsAreReadOnly(t *testing.T) {
	srv := newTestServer(t)
	record := seedRecovery(t, srv, nil)

	paths := []string{
		"/admin/reports/dashboardaccesslog/",
		"/admin/datarecovery/datarecovery/",
		fmt.Sprintf("/admin/datarecovery/datarecovery/%d/", record.ID),
	}
	for _, path := range paths {
		for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
			resp := srv.page(t, method, path, srv.fx.Admin, nil, nil)
			require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, "%s %s", method, path)

			var envelope utils.APIResponse
			decodeJSON(t, resp, &envelope)
			require.False(t, envelope.Success)
		}
	}

	var stored models.DataRecovery
	require.NoError(t, srv.db.First(&stored, record.ID).Error)
	require.False(t, stored.Recovered)
}

func TestAdminRecoverAction(t *testing.T) {
	srv := newTestServer(t)
	record := seedRecovery(t, srv, nil)
	path := fmt.Sprintf("/admin/datarecovery/datarecovery/%d/recover/", record.ID)

	resp := srv.page(t, http.MethodPost, path, srv.fx.Demo, nil, nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = srv.page(t, http.MethodPost, path, srv.fx.Staff, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.DataRecovery
	require.NoError(t, srv.db.First(&stored, record.ID).Error)
	require.True(t, stored.Recovered)

	resp = srv.page(t, http.MethodPost, "/admin/datarecovery/datarecovery/999999/recover/", srv.fx.Staff, nil, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
