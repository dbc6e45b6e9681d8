package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/dto"
	"github.com/noah-isme/oppia-go-api/internal/models"
	"github.com/noah-isme/oppia-go-api/internal/repository"
	"github.com/noah-isme/oppia-go-api/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []dto.TrackerEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event dto.TrackerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func newCourseService(t *testing.T, db *gorm.DB, fx testutil.Fixtures, cache *redis.Client, publisher TrackerPublisher) CourseService {
	t.Helper()
	return NewCourseService(
		repository.NewCourseRepository(db),
		repository.NewUserRepository(db),
		repository.NewTrackerRepository(db),
		publisher,
		cache,
		CourseServiceConfig{BaseURL: "http://localhost:8080/", UploadDir: fx.UploadDir, CacheTTL: time.Minute},
		zerolog.Nop(),
	)
}

func TestCourseServiceListAppliesVisibility(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	svc := newCourseService(t, db, fx, nil, nil)

	demo, err := svc.List(context.Background(), fx.Demo)
	require.NoError(t, err)
	require.Len(t, demo.Courses, 3)
	for _, course := range demo.Courses {
		require.False(t, course.IsDraft)
		require.NotEqual(t, "archived-test", course.Shortname)
	}

	admin, err := svc.List(context.Background(), fx.Admin)
	require.NoError(t, err)
	require.Len(t, admin.Courses, 4)

	live := demo.Courses[0]
	require.Equal(t, "Admin User", live.Author)
	require.Equal(t, "Digital Campus", live.Organisation)
	require.Contains(t, live.URL, "http://localhost:8080/api/v3/course/")
}

func TestCourseServiceDraftVisibility(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	svc := newCourseService(t, db, fx, nil, nil)
	ctx := context.Background()
	ref := "draft-test"

	for _, viewer := range []models.User{fx.Admin, fx.Staff} {
		_, err := svc.Get(ctx, viewer, ref)
		require.NoError(t, err, viewer.Username)
	}
	for _, viewer := range []models.User{fx.Teacher, fx.Demo} {
		_, err := svc.Get(ctx, viewer, ref)
		require.ErrorIs(t, err, ErrCourseNotFound, viewer.Username)
	}

	testutil.SetOwner(t, db, fx.Draft.ID, fx.Teacher.ID)
	_, err := svc.Get(ctx, fx.Teacher, ref)
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.CoursePermission{CourseID: fx.Draft.ID, UserID: fx.Demo.ID, Role: models.CoursePermissionViewer}).Error)
	_, err = svc.Get(ctx, fx.Demo, ref)
	require.NoError(t, err)
}

func TestCourseServiceArchivedIsHiddenFromEveryone(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	svc := newCourseService(t, db, fx, nil, nil)

	for _, viewer := range []models.User{fx.Admin, fx.Staff, fx.Teacher, fx.Demo} {
		_, err := svc.Download(context.Background(), viewer, "archived-test", dto.CourseDownloadMeta{})
		require.ErrorIs(t, err, ErrCourseNotFound, viewer.Username)
	}
	require.Zero(t, testutil.CountTrackers(t, db))
}

func TestCourseServiceShortnameMatchingSeveralCourses(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	svc := newCourseService(t, db, fx, nil, nil)

	duplicate := models.Course{Shortname: "anc1-all", Title: "Copy", Version: 1, UserID: fx.Admin.ID}
	require.NoError(t, db.Create(&duplicate).Error)

	_, err := svc.Get(context.Background(), fx.Demo, "anc1-all")
	require.ErrorIs(t, err, ErrMultipleCourses)

	testutil.SetVisibility(t, db, duplicate.ID, false, true)
	course, err := svc.Get(context.Background(), fx.Demo, "anc1-all")
	require.NoError(t, err)
	require.Equal(t, fx.Live.ID, course.ID)
}

func TestCourseServiceDownloadRecordsOneTracker(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	publisher := &recordingPublisher{}
	svc := newCourseService(t, db, fx, nil, publisher)

	pkg, err := svc.Download(context.Background(), fx.Demo, "anc1-all", dto.CourseDownloadMeta{IP: "127.0.0.1", Agent: "test"})
	require.NoError(t, err)
	require.Equal(t, "application/zip", pkg.ContentType)
	require.FileExists(t, pkg.Path)
	require.EqualValues(t, 1, testutil.CountTrackers(t, db))

	require.Len(t, publisher.events, 1)
	require.Equal(t, "anc1-all", publisher.events[0].Shortname)
	require.Equal(t, models.TrackerTypeDownload, publisher.events[0].Type)

	activity, err := svc.Activity(context.Background(), fx.Demo, "anc1-all")
	require.NoError(t, err)
	require.Len(t, activity.Trackers, 1)
	require.Equal(t, "anc1-all", activity.Trackers[0].Data["shortname"])
}

func TestCourseServiceDownloadRejectsMissingOrInvalidPackages(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	svc := newCourseService(t, db, fx, nil, nil)

	_, err := svc.Download(context.Background(), fx.Demo, "missing-package", dto.CourseDownloadMeta{})
	require.ErrorIs(t, err, ErrCoursePackageMissing)

	require.NoError(t, os.WriteFile(filepath.Join(fx.UploadDir, "ref-1.zip"), []byte("not a zip archive"), 0o644))
	_, err = svc.Download(context.Background(), fx.Demo, "ref-1", dto.CourseDownloadMeta{})
	require.ErrorIs(t, err, ErrCoursePackageMissing)

	require.Zero(t, testutil.CountTrackers(t, db))
}

func TestCourseServiceListIsCachedPerUser(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	svc := newCourseService(t, db, fx, client, nil)

	first, err := svc.List(context.Background(), fx.Demo)
	require.NoError(t, err)
	require.True(t, mini.Exists("courses:user:"+uintString(fx.Demo.ID)))

	testutil.SetVisibility(t, db, fx.Live.ID, false, true)

	cached, err := svc.List(context.Background(), fx.Demo)
	require.NoError(t, err)
	require.Equal(t, first, cached)

	mini.FastForward(2 * time.Minute)
	fresh, err := svc.List(context.Background(), fx.Demo)
	require.NoError(t, err)
	require.Len(t, fresh.Courses, len(first.Courses)-1)
}
