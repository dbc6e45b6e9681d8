package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/oppia-go-api/internal/models"
	"github.com/noah-isme/oppia-go-api/internal/testutil"
)

func TestCourseRepositoryListVisibleHidesDraftsAndArchived(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	repo := NewCourseRepository(db)

	courses, err := repo.ListVisible(context.Background(), CourseViewer{UserID: fx.Demo.ID})
	require.NoError(t, err)
	require.Len(t, courses, 3)
	for _, course := range courses {
		require.False(t, course.IsDraft)
		require.False(t, course.IsArchived)
		require.Equal(t, fx.Admin.ID, course.User.ID, "owner should be preloaded")
	}

	courses, err = repo.ListVisible(context.Background(), CourseViewer{UserID: fx.Staff.ID, Privileged: true})
	require.NoError(t, err)
	require.Len(t, courses, 4)
}

func TestCourseRepositoryListVisibleIncludesOwnedAndPermittedDrafts(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	repo := NewCourseRepository(db)

	testutil.SetOwner(t, db, fx.Draft.ID, fx.Teacher.ID)
	courses, err := repo.ListVisible(context.Background(), CourseViewer{UserID: fx.Teacher.ID})
	require.NoError(t, err)
	require.Len(t, courses, 4)

	require.NoError(t, db.Create(&models.CoursePermission{CourseID: fx.Draft.ID, UserID: fx.Demo.ID, Role: models.CoursePermissionViewer}).Error)
	courses, err = repo.ListVisible(context.Background(), CourseViewer{UserID: fx.Demo.ID})
	require.NoError(t, err)
	require.Len(t, courses, 4)

	allowed, err := repo.HasPermission(context.Background(), fx.Draft.ID, fx.Demo.ID)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestCourseRepositoryListByShortname(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.Seed(t, db)
	repo := NewCourseRepository(db)

	courses, err := repo.ListByShortname(context.Background(), "anc1-all")
	require.NoError(t, err)
	require.Len(t, courses, 1)

	courses, err = repo.ListByShortname(context.Background(), "does-not-exist")
	require.NoError(t, err)
	require.Empty(t, courses)
}
