package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/oppia-go-api/internal/models"
	"github.com/noah-isme/oppia-go-api/internal/testutil"
)

func TestUserProfileFixRequiresFilepath(t *testing.T) {
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"user-profile-fix"})

	err := root.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "filepath")
}

func TestRunUserProfileFix(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	require.NoError(t, db.Create(&models.CustomField{ID: models.ParticipantIDField, Label: "Participant ID", Type: models.CustomFieldTypeStr, Order: 1}).Error)

	path := filepath.Join(t.TempDir(), "profiles.csv")
	require.NoError(t, os.WriteFile(path, []byte("username,phone_number,participant_id\nghost,+1 555,1\ndemo,+44 20,7\n"), 0o600))

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})

	require.NoError(t, runUserProfileFix(cmd, db, path))

	output := out.String()
	require.Contains(t, output, "user not found: ghost")
	require.Contains(t, output, "demo: phone_number updated to +44 20")
	require.Contains(t, output, "rows processed: 2")
	require.Contains(t, output, "users not found: 1")

	var field models.UserProfileCustomField
	require.NoError(t, db.Where("user_id = ? AND key_name = ?", fx.Demo.ID, models.ParticipantIDField).First(&field).Error)
	require.NotNil(t, field.ValueStr)
	require.Equal(t, "0007", *field.ValueStr)

	var recovered []models.DataRecovery
	require.NoError(t, db.Find(&recovered).Error)
	require.Len(t, recovered, 1)
	require.Equal(t, models.DataRecoveryUserProfile, recovered[0].DataType)
	require.Nil(t, recovered[0].UserID)
}

func TestRunUserProfileFixMissingFile(t *testing.T) {
	db := testutil.NewDB(t)
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	err := runUserProfileFix(cmd, db, filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}
