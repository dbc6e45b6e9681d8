package views

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/oppia-go-api/internal/dto"
)

func TestCertificateDocumentRendersWithoutLayout(t *testing.T) {
	engine := New()
	require.NoError(t, engine.Load())

	var buf bytes.Buffer
	err := engine.Render(&buf, "certificates/document", dto.CertificateDocument{
		Name:           "Demo User",
		Description:    "Course completed",
		CourseTitle:    "Antenatal Care",
		AwardDate:      time.Date(2023, 3, 1, 10, 0, 0, 0, time.UTC),
		ValidationUUID: "0b4c7c8e-3f6e-4f8a-9c77-6a8f0d1e2b3c",
		ValidationURL:  "http://localhost/awards/certificate/validate/0b4c7c8e-3f6e-4f8a-9c77-6a8f0d1e2b3c/",
	})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "Demo User")
	require.Contains(t, buf.String(), "1 March 2023")
	require.Contains(t, buf.String(), "0b4c7c8e-3f6e-4f8a-9c77-6a8f0d1e2b3c")
}
