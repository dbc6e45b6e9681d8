package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/config"
	"github.com/noah-isme/oppia-go-api/internal/handler"
	"github.com/noah-isme/oppia-go-api/internal/middleware"
	"github.com/noah-isme/oppia-go-api/internal/models"
	"github.com/noah-isme/oppia-go-api/internal/repository"
	"github.com/noah-isme/oppia-go-api/internal/router"
	"github.com/noah-isme/oppia-go-api/internal/service"
	"github.com/noah-isme/oppia-go-api/internal/testutil"
	"github.com/noah-isme/oppia-go-api/internal/views"
	"github.com/noah-isme/oppia-go-api/pkg/mailer"
	"github.com/noah-isme/oppia-go-api/pkg/storage"
)

const testSecret = "handler-test-secret"

type recordingSender struct {
	mu       sync.Mutex
	messages []mailer.Message
}

func (r *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

type testServer struct {
	app  *fiber.App
	db   *gorm.DB
	fx   testutil.Fixtures
	mail *recordingSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	logger := zerolog.Nop()
	validate := validator.New()
	const baseURL = "http://localhost:8080"

	users := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)

	media, err := storage.NewLocal(t.TempDir(), baseURL+"/media/certificates", logger)
	require.NoError(t, err)

	sender := &recordingSender{}
	engine := views.New()

	auth := service.NewAuthService(users)
	courses := service.NewCourseService(courseRepo, users, repository.NewTrackerRepository(db), nil, nil,
		service.CourseServiceConfig{BaseURL: baseURL, UploadDir: fx.UploadDir}, logger)
	certificates := service.NewCertificateService(users, repository.NewAwardRepository(db), repository.NewSettingRepository(db),
		media, engine, sender, validate, baseURL, logger)
	quizzes := service.NewQuizAttemptService(repository.NewQuizRepository(db), users, courseRepo, logger)
	recovery := service.NewDataRecoveryService(repository.NewDataRecoveryRepository(db), validate, logger)
	accessLogs := service.NewAccessLogService(repository.NewAccessLogRepository(db), logger)

	site := service.NewAdminSite()
	require.NoError(t, site.Register(service.NewDashboardAccessLogAdmin(accessLogs)))
	require.NoError(t, site.Register(service.NewDataRecoveryAdmin(recovery)))

	cfg := config.Config{AppName: "Oppia", AppEnv: "test", DownloadRateLimit: 100}

	app := fiber.New(fiber.Config{Views: engine})
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:  handler.NewCourseHandler(courses, logger, router.DownloadLimiter(cfg)),
		ProfileHandler: handler.NewProfileHandler(certificates, quizzes, logger),
		AdminHandler:   handler.NewAdminHandler(site, recovery, logger),
		HealthProbes: map[string]handler.HealthProbe{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		},
		APIKeyMiddleware:    middleware.APIKeyAuth(auth),
		SessionMiddleware:   []fiber.Handler{middleware.JWTProtected(testSecret), middleware.LoadUser(auth)},
		AccessLogMiddleware: middleware.AccessLog(accessLogs, logger),
	})

	return &testServer{app: app, db: db, fx: fx, mail: sender}
}

func (s *testServer) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// api calls the v3 API with the given credentials appended to the query string.
func (s *testServer) api(t *testing.T, method, path, username, key string) *http.Response {
	t.Helper()
	if username != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + url.Values{"username": {username}, "api_key": {key}}.Encode()
	}
	return s.do(t, httptest.NewRequest(method, path, nil))
}

// page calls a web route logged in as user.
func (s *testServer) page(t *testing.T, method, path string, user models.User, form url.Values, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	}
	if user.ID != 0 {
		token, err := middleware.IssueToken(testSecret, user.ID, time.Hour)
		require.NoError(t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	return s.do(t, req)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func decodeJSON(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func compileSchema(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	schemaPath, err := filepath.Abs(filepath.Join("testdata", name))
	require.NoError(t, err)

	schema, err := jsonschema.NewCompiler().Compile("file://" + schemaPath)
	require.NoError(t, err)
	return schema
}
