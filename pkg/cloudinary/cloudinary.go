// Package cloudinary stores generated certificate documents on Cloudinary.
package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/rs/zerolog"
)

// Config contains credentials required to talk to Cloudinary.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Store uploads certificate documents as raw Cloudinary assets.
type Store struct {
	client *cloudinary.Cloudinary
	folder string
	logger zerolog.Logger
}

// New constructs a Cloudinary store.
func New(cfg Config, logger zerolog.Logger) (*Store, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("cloudinary credentials must be provided")
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &Store{
		client: cld,
		folder: strings.Trim(cfg.Folder, "/"),
		logger: logger.With().Str("component", "cloudinary").Logger(),
	}, nil
}

// Upload stores the document under a public id derived from name, replacing
// any previous version, and returns its secure URL.
func (s *Store) Upload(ctx context.Context, name string, reader io.Reader) (string, error) {
	params := uploader.UploadParams{
		Folder:         s.folder,
		PublicID:       PublicID(name),
		ResourceType:   "raw",
		Overwrite:      api.Bool(true),
		UniqueFilename: api.Bool(false),
	}

	result, err := s.client.Upload.Upload(ctx, reader, params)
	if err != nil {
		return "", fmt.Errorf("failed to upload certificate: %w", err)
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary rejected certificate: %s", result.Error.Message)
	}

	s.logger.Info().Str("public_id", result.PublicID).Msg("certificate uploaded to cloudinary")

	return result.SecureURL, nil
}

// PublicID keeps alphanumerics, dots and dashes of the file name. Raw assets
// keep their extension in the public id.
func PublicID(name string) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return '-'
		}
	}, path.Base(name))

	base = strings.Trim(base, "-.")
	if base == "" {
		return "certificate"
	}
	return base
}
