package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/oppia-go-api/internal/dto"
	"github.com/noah-isme/oppia-go-api/internal/models"
	"github.com/noah-isme/oppia-go-api/internal/observability"
	"github.com/noah-isme/oppia-go-api/internal/repository"
	"github.com/noah-isme/oppia-go-api/pkg/mailer"
)

var (
	// ErrInvalidEmail indicates the posted email fields failed validation.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrEmailMismatch indicates old_email does not match the stored address.
	ErrEmailMismatch = errors.New("old email does not match the current address")
)

// CertificateTemplate is the view used to render certificate documents.
const CertificateTemplate = "certificates/document"

// FileStorage abstracts certificate destinations.
type FileStorage interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// DocumentRenderer renders a named template. fiber.Views satisfies it.
type DocumentRenderer interface {
	Render(out io.Writer, name string, binding interface{}, layout ...string) error
}

// EmailSender delivers certificate emails.
type EmailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// CertificateService regenerates and emails award certificates.
type CertificateService interface {
	Form(ctx context.Context, viewer models.User, userID uint) (dto.RegenerateCertificatesView, error)
	Regenerate(ctx context.Context, viewer models.User, userID uint, req dto.RegenerateCertificatesRequest) (dto.RegenerateCertificatesResult, error)
}

type certificateService struct {
	users     repository.UserRepository
	awards    repository.AwardRepository
	settings  repository.SettingRepository
	storage   FileStorage
	renderer  DocumentRenderer
	sender    EmailSender
	validator *validator.Validate
	baseURL   string
	logger    zerolog.Logger
	tracer    trace.Tracer
}

// NewCertificateService constructs the certificate service.
func NewCertificateService(users repository.UserRepository, awards repository.AwardRepository, settings repository.SettingRepository, storage FileStorage, renderer DocumentRenderer, sender EmailSender, validate *validator.Validate, baseURL string, logger zerolog.Logger) CertificateService {
	return &certificateService{
		users:     users,
		awards:    awards,
		settings:  settings,
		storage:   storage,
		renderer:  renderer,
		sender:    sender,
		validator: validate,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger.With().Str("component", "certificate_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/oppia-go-api/internal/service/certificate"),
	}
}

func (s *certificateService) Form(ctx context.Context, viewer models.User, userID uint) (dto.RegenerateCertificatesView, error) {
	user, err := s.authorize(ctx, viewer, userID)
	if err != nil {
		return dto.RegenerateCertificatesView{}, err
	}

	awards, err := s.awards.ListByUser(ctx, user.ID)
	if err != nil {
		return dto.RegenerateCertificatesView{}, err
	}

	return dto.RegenerateCertificatesView{
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Certificates: certificateItems(awards),
	}, nil
}

func (s *certificateService) Regenerate(ctx context.Context, viewer models.User, userID uint, req dto.RegenerateCertificatesRequest) (dto.RegenerateCertificatesResult, error) {
	ctx, span := s.tracer.Start(ctx, "certificate.regenerate", trace.WithAttributes(
		attribute.Int64("certificate.user_id", int64(userID)),
		attribute.Int64("certificate.actor_id", int64(viewer.ID)),
	))
	defer span.End()

	user, err := s.authorize(ctx, viewer, userID)
	if err != nil {
		span.RecordError(err)
		return dto.RegenerateCertificatesResult{}, err
	}

	result := dto.RegenerateCertificatesResult{UserID: user.ID}

	changed, err := s.applyEmailChange(ctx, &user, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "email_change_failed")
		return dto.RegenerateCertificatesResult{}, err
	}
	result.EmailChanged = changed

	awards, err := s.awards.ListByUser(ctx, user.ID)
	if err != nil {
		span.RecordError(err)
		return dto.RegenerateCertificatesResult{}, err
	}

	documents := make(map[uint][]byte, len(awards))
	for i := range awards {
		document, err := s.regenerate(ctx, user, &awards[i])
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "regenerate_failed")
			return result, err
		}
		documents[awards[i].ID] = document
		result.Regenerated++
		observability.CertificatesRegenerated().Inc()
	}
	result.Certificates = certificateItems(awards)

	emailEnabled, err := s.settings.GetBool(ctx, models.SettingEmailCertificates, false)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read certificate email setting")
	}
	if emailEnabled {
		result.Emailed = s.emailCertificates(ctx, user, awards, documents)
	}

	span.SetAttributes(
		attribute.Int("certificate.regenerated", result.Regenerated),
		attribute.Int("certificate.emailed", result.Emailed),
	)
	s.logger.Info().
		Uint("user_id", user.ID).
		Uint("actor_id", viewer.ID).
		Int("regenerated", result.Regenerated).
		Int("emailed", result.Emailed).
		Bool("email_changed", result.EmailChanged).
		Msg("certificates regenerated")

	return result, nil
}

func (s *certificateService) authorize(ctx context.Context, viewer models.User, userID uint) (models.User, error) {
	if !CanViewProfile(viewer, userID) {
		return models.User{}, ErrForbidden
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return models.User{}, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

func (s *certificateService) applyEmailChange(ctx context.Context, user *models.User, req dto.RegenerateCertificatesRequest) (bool, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.OldEmail = strings.TrimSpace(req.OldEmail)

	if err := s.validator.Struct(req); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidEmail, err)
	}
	if req.Email == "" || strings.EqualFold(req.Email, user.Email) {
		return false, nil
	}
	if req.OldEmail != "" && !strings.EqualFold(req.OldEmail, user.Email) {
		return false, ErrEmailMismatch
	}

	if err := s.users.UpdateEmail(ctx, user.ID, req.Email); err != nil {
		return false, err
	}
	s.logger.Info().Uint("user_id", user.ID).Msg("user email changed before certificate regeneration")
	user.Email = req.Email
	return true, nil
}

func (s *certificateService) regenerate(ctx context.Context, user models.User, award *models.Award) ([]byte, error) {
	award.ValidationUUID = uuid.NewString()

	document := dto.CertificateDocument{
		Name:           user.FullName(),
		Description:    award.Description,
		AwardDate:      award.AwardDate,
		ValidationUUID: award.ValidationUUID,
		ValidationURL:  fmt.Sprintf("%s/awards/certificate/validate/%s/", s.baseURL, award.ValidationUUID),
	}
	if award.Course != nil {
		document.CourseTitle = award.Course.Title
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, CertificateTemplate, document); err != nil {
		return nil, fmt.Errorf("render certificate %d: %w", award.ID, err)
	}

	url, err := s.storage.Upload(ctx, certificateFileName(*award), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("store certificate %d: %w", award.ID, err)
	}

	award.CertificateURL = url
	if err := s.awards.Save(ctx, award); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *certificateService) emailCertificates(ctx context.Context, user models.User, awards []models.Award, documents map[uint][]byte) int {
	if strings.TrimSpace(user.Email) == "" {
		s.logger.Warn().Uint("user_id", user.ID).Msg("user has no email address, certificates not sent")
		return 0
	}

	sent := 0
	for _, award := range awards {
		msg := mailer.Message{
			To:          []mail.Address{{Name: user.FullName(), Address: user.Email}},
			Subject:     "Your certificate: " + award.Description,
			TextContent: fmt.Sprintf("Dear %s,\n\nYour certificate for %q is available at %s\n", user.FullName(), award.Description, award.CertificateURL),
			Attachments: []mailer.Attachment{{
				Filename:    certificateFileName(award),
				ContentType: "text/html",
				Content:     documents[award.ID],
			}},
		}
		if err := s.sender.Send(ctx, msg); err != nil {
			observability.CertificateEmails().WithLabelValues("failed").Inc()
			s.logger.Error().Err(err).Uint("award_id", award.ID).Msg("failed to email certificate")
			continue
		}
		observability.CertificateEmails().WithLabelValues("sent").Inc()
		sent++
	}
	return sent
}

func certificateFileName(award models.Award) string {
	return fmt.Sprintf("certificate-%d-%s.html", award.ID, award.ValidationUUID)
}

func certificateItems(awards []models.Award) []dto.CertificateItem {
	items := make([]dto.CertificateItem, 0, len(awards))
	for _, award := range awards {
		item := dto.CertificateItem{
			AwardID:        award.ID,
			Description:    award.Description,
			AwardDate:      award.AwardDate,
			CertificateURL: award.CertificateURL,
			ValidationUUID: award.ValidationUUID,
		}
		if award.Course != nil {
			item.CourseTitle = award.Course.Title
		}
		items = append(items, item)
	}
	return items
}
