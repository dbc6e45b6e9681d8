package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/oppia-go-api/internal/dto"
	"github.com/noah-isme/oppia-go-api/internal/models"
	"github.com/noah-isme/oppia-go-api/internal/observability"
	"github.com/noah-isme/oppia-go-api/internal/repository"
)

const (
	phoneNumberColumn   = "phone_number"
	participantIDLength = 4
)

// BackfillReport summarises a profile backfill run.
type BackfillReport struct {
	Rows          int
	UnknownUsers  int
	PhoneNumbers  int
	FieldsCreated int
	FieldsUpdated int
	Padded        int
	Errors        []string
}

// ProfileBackfillService fills empty profile attributes from imported rows.
type ProfileBackfillService interface {
	Run(ctx context.Context, rows []ProfileRow, out io.Writer) (BackfillReport, error)
}

type profileBackfillService struct {
	users    repository.UserRepository
	fields   repository.CustomFieldRepository
	recovery DataRecoveryService
	logger   zerolog.Logger
}

// NewProfileBackfillService constructs the backfill service.
func NewProfileBackfillService(users repository.UserRepository, fields repository.CustomFieldRepository, recovery DataRecoveryService, logger zerolog.Logger) ProfileBackfillService {
	return &profileBackfillService{
		users:    users,
		fields:   fields,
		recovery: recovery,
		logger:   logger.With().Str("component", "profile_backfill").Logger(),
	}
}

// Run applies every row, then zero pads short participant ids. Each write is
// saved on its own; a failing row is reported and the run continues.
func (s *profileBackfillService) Run(ctx context.Context, rows []ProfileRow, out io.Writer) (BackfillReport, error) {
	report := BackfillReport{}

	fields, err := s.fields.List(ctx)
	if err != nil {
		return report, fmt.Errorf("load custom fields: %w", err)
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Rows++
		if err := s.applyRow(ctx, row, fields, out, &report); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: %v", row.Line, err))
			s.logger.Warn().Err(err).Int("line", row.Line).Msg("profile row skipped")
		}
	}

	if err := s.padParticipantIDs(ctx, out, &report); err != nil {
		return report, err
	}

	s.logger.Info().
		Int("rows", report.Rows).
		Int("unknown_users", report.UnknownUsers).
		Int("created", report.FieldsCreated).
		Int("updated", report.FieldsUpdated).
		Int("padded", report.Padded).
		Int("errors", len(report.Errors)).
		Msg("profile backfill finished")

	return report, nil
}

func (s *profileBackfillService) applyRow(ctx context.Context, row ProfileRow, fields []models.CustomField, out io.Writer, report *BackfillReport) error {
	username := sanitizeText(row.Get("username"))
	if username == "" {
		return errors.New("missing username")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		fmt.Fprintf(out, "user not found: %s\n", username)
		report.UnknownUsers++
		observability.ProfileBackfill().WithLabelValues("unknown_user").Inc()
		return s.keepForRecovery(ctx, row)
	}

	if phone := sanitizeText(row.Get(phoneNumberColumn)); phone != "" {
		updated, err := s.fillPhoneNumber(ctx, user.ID, phone)
		if err != nil {
			return err
		}
		if updated {
			fmt.Fprintf(out, "%s: %s updated to %s\n", user.Username, phoneNumberColumn, phone)
			report.PhoneNumbers++
			observability.ProfileBackfill().WithLabelValues("phone_number").Inc()
		}
	}

	for _, field := range fields {
		raw := sanitizeText(row.Get(strings.ToLower(field.ID)))
		if raw == "" {
			continue
		}
		if err := s.fillCustomField(ctx, user, field, raw, out, report); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("line %d: %s: %s: %v", row.Line, user.Username, field.ID, err))
		}
	}
	return nil
}

func (s *profileBackfillService) keepForRecovery(ctx context.Context, row ProfileRow) error {
	_, err := s.recovery.Record(ctx, dto.DataRecoveryEntry{
		DataType: models.DataRecoveryUserProfile,
		Reasons:  "user not found",
		Data:     row.Values,
	})
	return err
}

func (s *profileBackfillService) fillPhoneNumber(ctx context.Context, userID uint, phone string) (bool, error) {
	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}
		profile = models.UserProfile{UserID: userID}
	}
	if profile.HasPhoneNumber() {
		return false, nil
	}

	profile.PhoneNumber = &phone
	if err := s.users.SaveProfile(ctx, &profile); err != nil {
		return false, err
	}
	return true, nil
}

func (s *profileBackfillService) fillCustomField(ctx context.Context, user models.User, field models.CustomField, raw string, out io.Writer, report *BackfillReport) error {
	value, err := s.fields.GetValue(ctx, user.ID, field.ID)
	created := false
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		value = models.UserProfileCustomField{UserID: user.ID, KeyName: field.ID}
		created = true
	case err != nil:
		return err
	case !value.IsEmptyFor(field.Type):
		return nil
	}

	display, err := assignFieldValue(&value, field.Type, raw)
	if err != nil {
		return err
	}
	if err := s.fields.SaveValue(ctx, &value); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %s updated to %s\n", user.Username, field.ID, display)
	if created {
		report.FieldsCreated++
		observability.ProfileBackfill().WithLabelValues("created").Inc()
	} else {
		report.FieldsUpdated++
		observability.ProfileBackfill().WithLabelValues("updated").Inc()
	}
	return nil
}

func (s *profileBackfillService) padParticipantIDs(ctx context.Context, out io.Writer, report *BackfillReport) error {
	values, err := s.fields.ListValuesByKey(ctx, models.ParticipantIDField)
	if err != nil {
		return fmt.Errorf("load participant ids: %w", err)
	}

	for i := range values {
		value := &values[i]
		if value.ValueStr == nil {
			continue
		}
		current := strings.TrimSpace(*value.ValueStr)
		if current == "" || len(current) >= participantIDLength {
			continue
		}

		padded := strings.Repeat("0", participantIDLength-len(current)) + current
		value.ValueStr = &padded
		if err := s.fields.SaveValue(ctx, value); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("pad participant id of user %d: %v", value.UserID, err))
			continue
		}

		fmt.Fprintf(out, "%s: %s updated to %s\n", value.User.Username, models.ParticipantIDField, padded)
		report.Padded++
		observability.ProfileBackfill().WithLabelValues("padded").Inc()
	}
	return nil
}

// assignFieldValue converts raw to the field type and stores it in the
// matching column, returning the value as printed.
func assignFieldValue(value *models.UserProfileCustomField, fieldType, raw string) (string, error) {
	switch fieldType {
	case models.CustomFieldTypeInt:
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return "", fmt.Errorf("invalid int value %q", raw)
		}
		value.ValueInt = &parsed
		return strconv.FormatInt(parsed, 10), nil
	case models.CustomFieldTypeBool:
		parsed, err := parseBool(raw)
		if err != nil {
			return "", err
		}
		value.ValueBool = &parsed
		return strconv.FormatBool(parsed), nil
	default:
		value.ValueStr = &raw
		return raw, nil
	}
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "1", "true", "t", "yes", "y":
		return true, nil
	case "0", "false", "f", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
}
