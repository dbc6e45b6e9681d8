package service

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/models"
	"github.com/noah-isme/oppia-go-api/internal/repository"
	"github.com/noah-isme/oppia-go-api/internal/testutil"
)

func newBackfillService(db *gorm.DB) ProfileBackfillService {
	recovery := NewDataRecoveryService(repository.NewDataRecoveryRepository(db), newValidator(), zerolog.Nop())
	return NewProfileBackfillService(repository.NewUserRepository(db), repository.NewCustomFieldRepository(db), recovery, zerolog.Nop())
}

func seedCustomFields(t *testing.T, db *gorm.DB) {
	t.Helper()
	fields := []models.CustomField{
		{ID: models.ParticipantIDField, Label: "Participant ID", Type: models.CustomFieldTypeStr, Order: 1},
		{ID: "age", Label: "Age", Type: models.CustomFieldTypeInt, Order: 2},
		{ID: "consent", Label: "Consent given", Type: models.CustomFieldTypeBool, Order: 3},
	}
	require.NoError(t, db.Create(&fields).Error)
}

func strPtr(v string) *string { return &v }

func TestProfileBackfillSkipsUnknownUsersAndKeepsThemForRecovery(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	seedCustomFields(t, db)

	rows, err := ReadProfileCSV(strings.NewReader("username,phone_number,participant_id,age,consent\n" +
		"ghost,+100,12,30,yes\n" +
		"demo,+255700000001,7,41,no\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	report, err := newBackfillService(db).Run(context.Background(), rows, &out)
	require.NoError(t, err)
	require.Equal(t, 2, report.Rows)
	require.Equal(t, 1, report.UnknownUsers)
	require.Empty(t, report.Errors)
	require.Contains(t, out.String(), "user not found: ghost\n")
	require.Contains(t, out.String(), "demo: phone_number updated to +255700000001\n")
	require.Contains(t, out.String(), "demo: age updated to 41\n")
	require.Contains(t, out.String(), "demo: consent updated to false\n")

	var recoveries []models.DataRecovery
	require.NoError(t, db.Find(&recoveries).Error)
	require.Len(t, recoveries, 1)
	require.Equal(t, models.DataRecoveryUserProfile, recoveries[0].DataType)
	require.Nil(t, recoveries[0].UserID)
	require.Contains(t, recoveries[0].Data, `"username":"ghost"`)

	var values []models.UserProfileCustomField
	require.NoError(t, db.Find(&values).Error)
	require.Len(t, values, 3)
	for _, value := range values {
		require.Equal(t, fx.Demo.ID, value.UserID)
	}

	var participant models.UserProfileCustomField
	require.NoError(t, db.Where("key_name = ?", models.ParticipantIDField).First(&participant).Error)
	require.Equal(t, "0007", *participant.ValueStr)
}

func TestProfileBackfillOnlyFillsEmptyValues(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	seedCustomFields(t, db)

	require.NoError(t, db.Create(&models.UserProfile{UserID: fx.Demo.ID, PhoneNumber: strPtr("+1 existing")}).Error)
	require.NoError(t, db.Create(&models.UserProfileCustomField{UserID: fx.Demo.ID, KeyName: models.ParticipantIDField, ValueStr: strPtr("ABCD")}).Error)
	require.NoError(t, db.Create(&models.UserProfileCustomField{UserID: fx.Demo.ID, KeyName: "age"}).Error)

	rows, err := ReadProfileCSV(strings.NewReader("username,phone_number,participant_id,age\ndemo,+2 new,99,<b>27</b>\n"))
	require.NoError(t, err)

	var out bytes.Buffer
	report, err := newBackfillService(db).Run(context.Background(), rows, &out)
	require.NoError(t, err)
	require.Zero(t, report.PhoneNumbers)
	require.Equal(t, 1, report.FieldsUpdated)
	require.Zero(t, report.FieldsCreated)
	require.Equal(t, "demo: age updated to 27\n", out.String())

	var profile models.UserProfile
	require.NoError(t, db.Where("user_id = ?", fx.Demo.ID).First(&profile).Error)
	require.Equal(t, "+1 existing", *profile.PhoneNumber)

	var participant models.UserProfileCustomField
	require.NoError(t, db.Where("user_id = ? AND key_name = ?", fx.Demo.ID, models.ParticipantIDField).First(&participant).Error)
	require.Equal(t, "ABCD", *participant.ValueStr)
}

func TestProfileBackfillReportsUnparsableValues(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Seed(t, db)
	seedCustomFields(t, db)

	rows, err := ReadProfileCSV(strings.NewReader("username,age,consent\ndemo,old,maybe\n"))
	require.NoError(t, err)

	report, err := newBackfillService(db).Run(context.Background(), rows, &bytes.Buffer{})
	require.NoError(t, err)
	require.Len(t, report.Errors, 2)
	require.Zero(t, report.FieldsCreated)
}

func TestProfileBackfillPadsExistingParticipantIDs(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	seedCustomFields(t, db)

	require.NoError(t, db.Create(&models.UserProfileCustomField{UserID: fx.Teacher.ID, KeyName: models.ParticipantIDField, ValueStr: strPtr("42")}).Error)
	require.NoError(t, db.Create(&models.UserProfileCustomField{UserID: fx.Staff.ID, KeyName: models.ParticipantIDField, ValueStr: strPtr("12345")}).Error)

	var out bytes.Buffer
	report, err := newBackfillService(db).Run(context.Background(), nil, &out)
	require.NoError(t, err)
	require.Equal(t, 1, report.Padded)
	require.Equal(t, "teacher: participant_id updated to 0042\n", out.String())
}

func TestReadProfileRowsFromWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Username", "Phone_Number", "participant_id"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"demo", "+255", "5"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"teacher"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := ReadProfileRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "demo", rows[0].Get("username"))
	require.Equal(t, "+255", rows[0].Get("phone_number"))
	require.Equal(t, 4, rows[1].Line)
	require.Equal(t, "", rows[1].Get("participant_id"))
}

func TestReadProfileCSVRequiresUsernameColumn(t *testing.T) {
	_, err := ReadProfileCSV(strings.NewReader("user,phone_number\ndemo,1\n"))
	require.ErrorIs(t, err, ErrMissingUsernameColumn)
}
