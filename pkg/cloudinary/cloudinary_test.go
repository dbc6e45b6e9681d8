package cloudinary

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestPublicIDKeepsExtensionAndStripsPaths(t *testing.T) {
	require.Equal(t, "certificate-12-abc.html", PublicID("certificate-12-abc.html"))
	require.Equal(t, "cert-a-b.html", PublicID("../../cert a_b.html"))
	require.Equal(t, "certificate", PublicID("///"))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo"}, zerolog.Nop())
	require.Error(t, err)

	store, err := New(Config{CloudName: "demo", APIKey: "key", APISecret: "secret", Folder: "/oppia/certificates/"}, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "oppia/certificates", store.folder)
}
