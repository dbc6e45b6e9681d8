package service

import (
	"archive/zip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/dto"
	"github.com/noah-isme/oppia-go-api/internal/models"
	"github.com/noah-isme/oppia-go-api/internal/observability"
	"github.com/noah-isme/oppia-go-api/internal/repository"
)

var (
	// ErrCourseNotFound covers unknown, archived and invisible courses alike.
	ErrCourseNotFound = errors.New("course not found")
	// ErrMultipleCourses indicates a shortname matched more than one visible course.
	ErrMultipleCourses = errors.New("more than one course matches")
	// ErrCoursePackageMissing indicates the course zip is absent or not a zip archive.
	ErrCoursePackageMissing = errors.New("course package not found")
)

const zipContentType = "application/zip"

// CourseService applies the course visibility policy to API requests.
type CourseService interface {
	List(ctx context.Context, viewer models.User) (dto.CourseListResponse, error)
	Get(ctx context.Context, viewer models.User, ref string) (dto.CourseResponse, error)
	Download(ctx context.Context, viewer models.User, ref string, meta dto.CourseDownloadMeta) (dto.CoursePackage, error)
	Activity(ctx context.Context, viewer models.User, ref string) (dto.CourseActivityResponse, error)
}

// CourseServiceConfig carries the deployment settings the course service needs.
type CourseServiceConfig struct {
	BaseURL   string
	UploadDir string
	CacheTTL  time.Duration
}

type courseService struct {
	courses   repository.CourseRepository
	users     repository.UserRepository
	trackers  repository.TrackerRepository
	publisher TrackerPublisher
	cache     *redis.Client
	cfg       CourseServiceConfig
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewCourseService constructs the course service. cache and publisher are optional.
func NewCourseService(courses repository.CourseRepository, users repository.UserRepository, trackers repository.TrackerRepository, publisher TrackerPublisher, cache *redis.Client, cfg CourseServiceConfig, logger zerolog.Logger) CourseService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if publisher == nil {
		publisher = noopPublisher{}
	}

	return &courseService{
		courses:   courses,
		users:     users,
		trackers:  trackers,
		publisher: publisher,
		cache:     cache,
		cfg:       cfg,
		logger:    logger.With().Str("component", "course_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/oppia-go-api/internal/service/course"),
	}
}

func (s *courseService) List(ctx context.Context, viewer models.User) (dto.CourseListResponse, error) {
	ctx, span := s.tracer.Start(ctx, "course.list", trace.WithAttributes(attribute.Int64("course.viewer_id", int64(viewer.ID))))
	defer span.End()

	cacheKey := fmt.Sprintf("courses:user:%d", viewer.ID)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.CourseListResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				span.SetAttributes(attribute.Bool("course.cache_hit", true))
				return response, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read course list cache")
		}
	}

	courses, err := s.courses.ListVisible(ctx, repository.CourseViewer{UserID: viewer.ID, Privileged: viewer.IsPrivileged()})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_failed")
		return dto.CourseListResponse{}, err
	}

	ownerIDs := make([]uint, 0, len(courses))
	for _, course := range courses {
		ownerIDs = append(ownerIDs, course.UserID)
	}
	profiles, err := s.users.ProfilesByUserIDs(ctx, ownerIDs)
	if err != nil {
		span.RecordError(err)
		return dto.CourseListResponse{}, err
	}

	response := dto.CourseListResponse{Courses: make([]dto.CourseResponse, 0, len(courses))}
	for _, course := range courses {
		response.Courses = append(response.Courses, dto.NewCourseResponse(course, profiles[course.UserID], s.cfg.BaseURL))
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cfg.CacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store course list cache")
			}
		}
	}

	return response, nil
}

func (s *courseService) Get(ctx context.Context, viewer models.User, ref string) (dto.CourseResponse, error) {
	ctx, span := s.tracer.Start(ctx, "course.get", trace.WithAttributes(attribute.String("course.ref", ref)))
	defer span.End()

	course, err := s.resolve(ctx, viewer, ref)
	if err != nil {
		span.RecordError(err)
		return dto.CourseResponse{}, err
	}

	profile, err := s.users.GetProfile(ctx, course.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.CourseResponse{}, err
	}

	return dto.NewCourseResponse(course, profile, s.cfg.BaseURL), nil
}

func (s *courseService) Download(ctx context.Context, viewer models.User, ref string, meta dto.CourseDownloadMeta) (dto.CoursePackage, error) {
	ctx, span := s.tracer.Start(ctx, "course.download", trace.WithAttributes(attribute.String("course.ref", ref)))
	defer span.End()

	course, err := s.resolve(ctx, viewer, ref)
	if err != nil {
		observability.CourseDownloads().WithLabelValues("denied").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "not_visible")
		return dto.CoursePackage{}, err
	}

	pkg, err := s.locatePackage(course)
	if err != nil {
		observability.CourseDownloads().WithLabelValues("missing").Inc()
		s.logger.Warn().Err(err).Uint("course_id", course.ID).Str("filename", course.Filename).Msg("course package unavailable")
		span.RecordError(err)
		span.SetStatus(codes.Error, "package_missing")
		return dto.CoursePackage{}, ErrCoursePackageMissing
	}

	courseID := course.ID
	tracker := models.Tracker{
		UserID:   viewer.ID,
		CourseID: &courseID,
		Type:     models.TrackerTypeDownload,
		IP:       meta.IP,
		Agent:    meta.Agent,
		Data: datatypes.JSONMap{
			"version":   course.Version,
			"shortname": course.Shortname,
		},
	}
	if err := s.trackers.Create(ctx, &tracker); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tracker_failed")
		return dto.CoursePackage{}, err
	}

	event := dto.TrackerEvent{
		TrackerID:     tracker.ID,
		UserID:        viewer.ID,
		Username:      viewer.Username,
		CourseID:      course.ID,
		Shortname:     course.Shortname,
		Version:       course.Version,
		Type:          tracker.Type,
		SubmittedDate: tracker.SubmittedDate,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("tracker_id", tracker.ID).Msg("failed to publish tracker event")
	}

	observability.CourseDownloads().WithLabelValues(course.Status()).Inc()
	span.SetStatus(codes.Ok, "downloaded")

	return pkg, nil
}

func (s *courseService) Activity(ctx context.Context, viewer models.User, ref string) (dto.CourseActivityResponse, error) {
	course, err := s.resolve(ctx, viewer, ref)
	if err != nil {
		return dto.CourseActivityResponse{}, err
	}

	trackers, err := s.trackers.ListForCourse(ctx, viewer.ID, course.ID)
	if err != nil {
		return dto.CourseActivityResponse{}, err
	}

	response := dto.CourseActivityResponse{Course: course.Shortname, Trackers: make([]dto.TrackerResponse, 0, len(trackers))}
	for _, tracker := range trackers {
		response.Trackers = append(response.Trackers, dto.NewTrackerResponse(tracker))
	}
	return response, nil
}

// resolve looks a course up by numeric id first, then by shortname.
func (s *courseService) resolve(ctx context.Context, viewer models.User, ref string) (models.Course, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Course{}, ErrCourseNotFound
	}

	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		course, err := s.courses.GetByID(ctx, uint(id))
		switch {
		case err == nil:
			if ok, err := s.canView(ctx, viewer, course); err != nil {
				return models.Course{}, err
			} else if !ok {
				return models.Course{}, ErrCourseNotFound
			}
			return course, nil
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return models.Course{}, err
		}
	}

	candidates, err := s.courses.ListByShortname(ctx, ref)
	if err != nil {
		return models.Course{}, err
	}

	visible := make([]models.Course, 0, len(candidates))
	for _, course := range candidates {
		ok, err := s.canView(ctx, viewer, course)
		if err != nil {
			return models.Course{}, err
		}
		if ok {
			visible = append(visible, course)
		}
	}

	switch len(visible) {
	case 0:
		return models.Course{}, ErrCourseNotFound
	case 1:
		return visible[0], nil
	default:
		return models.Course{}, ErrMultipleCourses
	}
}

func (s *courseService) canView(ctx context.Context, viewer models.User, course models.Course) (bool, error) {
	if course.IsArchived {
		return false, nil
	}
	if !course.IsDraft || viewer.IsPrivileged() || course.UserID == viewer.ID {
		return true, nil
	}
	return s.courses.HasPermission(ctx, course.ID, viewer.ID)
}

func (s *courseService) locatePackage(course models.Course) (dto.CoursePackage, error) {
	name := filepath.Base(strings.TrimSpace(course.Filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return dto.CoursePackage{}, fmt.Errorf("course %d has no package", course.ID)
	}

	path := filepath.Join(s.cfg.UploadDir, name)
	info, err := os.Stat(path)
	if err != nil {
		return dto.CoursePackage{}, err
	}
	if info.IsDir() {
		return dto.CoursePackage{}, fmt.Errorf("%s is a directory", path)
	}

	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return dto.CoursePackage{}, err
	}
	if !isZip(detected) {
		return dto.CoursePackage{}, fmt.Errorf("%s is %s, not a zip archive", path, detected.String())
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return dto.CoursePackage{}, err
	}
	_ = reader.Close()

	return dto.CoursePackage{
		Path:        path,
		Filename:    name,
		ContentType: zipContentType,
		Size:        info.Size(),
	}, nil
}

func isZip(detected *mimetype.MIME) bool {
	for mime := detected; mime != nil; mime = mime.Parent() {
		if mime.Is(zipContentType) {
			return true
		}
	}
	return false
}
