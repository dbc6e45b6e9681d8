// Package testutil builds in-memory databases seeded with the users, courses and
// quiz data the handler and service tests share.
package testutil

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/oppia-go-api/internal/models"
)

// API keys issued to the fixture users.
const (
	DemoAPIKey    = "demo-key-0001"
	AdminAPIKey   = "admin-key-0001"
	StaffAPIKey   = "staff-key-0001"
	TeacherAPIKey = "teacher-key-0001"
)

// Fixtures holds the seeded records.
type Fixtures struct {
	Demo      models.User
	Admin     models.User
	Staff     models.User
	Teacher   models.User
	Live      models.Course
	Draft     models.Course
	Archived  models.Course
	Quiz      models.Quiz
	UploadDir string
}

// NewDB opens a private in-memory SQLite database with every table migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

// Seed inserts the fixture users, api keys, courses, quiz attempts and awards.
func Seed(t *testing.T, db *gorm.DB) Fixtures {
	t.Helper()

	fx := Fixtures{UploadDir: t.TempDir()}

	fx.Admin = createUser(t, db, models.User{Username: "admin", Email: "admin@example.com", FirstName: "Admin", LastName: "User", IsStaff: true, IsSuperuser: true}, AdminAPIKey)
	fx.Staff = createUser(t, db, models.User{Username: "staff", Email: "staff@example.com", FirstName: "Staff", LastName: "User", IsStaff: true}, StaffAPIKey)
	fx.Teacher = createUser(t, db, models.User{Username: "teacher", Email: "teacher@example.com", FirstName: "Teacher", LastName: "User"}, TeacherAPIKey)
	fx.Demo = createUser(t, db, models.User{Username: "demo", Email: "demo@example.com", FirstName: "Demo", LastName: "User"}, DemoAPIKey)

	require.NoError(t, db.Create(&models.UserProfile{UserID: fx.Admin.ID, Organisation: "Digital Campus"}).Error)

	fx.Live = createCourse(t, db, fx.UploadDir, models.Course{Shortname: "anc1-all", Title: "Antenatal Care Part 1", Description: "ANC basics", Version: 20150611100319, UserID: fx.Admin.ID, Filename: "anc1-all_20150611100319.zip"}, true)
	createCourse(t, db, fx.UploadDir, models.Course{Shortname: "ref-1", Title: "Reference course", Version: 20150611100320, UserID: fx.Admin.ID, Filename: "ref-1.zip"}, true)
	createCourse(t, db, fx.UploadDir, models.Course{Shortname: "missing-package", Title: "Course without package", Version: 20150611100321, UserID: fx.Admin.ID, Filename: "missing.zip"}, false)
	fx.Draft = createCourse(t, db, fx.UploadDir, models.Course{Shortname: "draft-test", Title: "Draft course", Version: 20150611100322, UserID: fx.Admin.ID, IsDraft: true, Filename: "draft-test.zip"}, true)
	fx.Archived = createCourse(t, db, fx.UploadDir, models.Course{Shortname: "archived-test", Title: "Archived course", Version: 20150611100323, UserID: fx.Admin.ID, IsArchived: true, Filename: "archived-test.zip"}, true)

	fx.Quiz = models.Quiz{Title: "Pre-test"}
	require.NoError(t, db.Create(&fx.Quiz).Error)

	start := time.Date(2023, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 17; i++ {
		attempt := models.QuizAttempt{
			UserID:      fx.Demo.ID,
			QuizID:      fx.Quiz.ID,
			AttemptDate: start.Add(time.Duration(i) * time.Hour),
			Score:       float64(i % 5),
			MaxScore:    4,
			Responses: []models.QuizAttemptResponse{
				{QuestionTitle: "Question 1", Score: 1, Text: "answer"},
			},
		}
		require.NoError(t, db.Create(&attempt).Error)
	}

	for i := 0; i < 4; i++ {
		courseID := fx.Live.ID
		award := models.Award{
			UserID:      fx.Demo.ID,
			CourseID:    &courseID,
			Description: fmt.Sprintf("Course completed %d", i+1),
			AwardDate:   start.AddDate(0, i, 0),
		}
		require.NoError(t, db.Create(&award).Error)
	}

	return fx
}

// SetVisibility changes a course's draft and archived flags.
func SetVisibility(t *testing.T, db *gorm.DB, courseID uint, draft, archived bool) {
	t.Helper()
	require.NoError(t, db.Model(&models.Course{}).Where("id = ?", courseID).
		Updates(map[string]interface{}{"is_draft": draft, "is_archived": archived}).Error)
}

// SetOwner changes the owner of a course.
func SetOwner(t *testing.T, db *gorm.DB, courseID, userID uint) {
	t.Helper()
	require.NoError(t, db.Model(&models.Course{}).Where("id = ?", courseID).Update("user_id", userID).Error)
}

// CountTrackers returns the number of tracker rows.
func CountTrackers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Tracker{}).Count(&count).Error)
	return count
}

func createUser(t *testing.T, db *gorm.DB, user models.User, key string) models.User {
	t.Helper()
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.ApiKey{UserID: user.ID, Key: key}).Error)
	return user
}

func createCourse(t *testing.T, db *gorm.DB, dir string, course models.Course, withPackage bool) models.Course {
	t.Helper()
	require.NoError(t, db.Create(&course).Error)
	if withPackage {
		writeZip(t, filepath.Join(dir, course.Filename), course.Shortname)
	}
	return course
}

func writeZip(t *testing.T, path, shortname string) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer file.Close()

	archive := zip.NewWriter(file)
	entry, err := archive.Create(shortname + "/module.xml")
	require.NoError(t, err)
	_, err = entry.Write([]byte("<module><meta><shortname>" + shortname + "</shortname></meta></module>"))
	require.NoError(t, err)
	require.NoError(t, archive.Close())
}
