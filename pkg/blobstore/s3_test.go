package blobstore

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/classdesk/tenantbroker/pkg/storageprofile"
)

// Presigning is pure request signing and needs no live backend.

func presignStore(t *testing.T) Store {
	t.Helper()
	store, err := FromProfile(openBYOS(storageprofile.ProviderGeneric, "https://minio.tenant.example"), nil)
	require.NoError(t, err)
	return store
}

func TestPresignedURL_Defaults(t *testing.T) {
	t.Parallel()

	signed, err := presignStore(t).PresignedURL(context.Background(), "docs/abc.pdf")
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, "minio.tenant.example", u.Host)
	require.Contains(t, u.Path, "tenant-bucket/docs/abc.pdf")

	q := u.Query()
	require.Equal(t, "900", q.Get("X-Amz-Expires"))
	require.NotEmpty(t, q.Get("X-Amz-Signature"))
	require.Empty(t, q.Get("response-content-disposition"))
}

func TestPresignedURL_TTLAndDisposition(t *testing.T) {
	t.Parallel()
	store := presignStore(t)

	signed, err := store.PresignedURL(context.Background(), "docs/abc.pdf",
		WithTTL(time.Hour),
		WithDownload("report.pdf"),
	)
	require.NoError(t, err)

	q, err := url.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, "3600", q.Query().Get("X-Amz-Expires"))
	require.Equal(t, `attachment; filename="report.pdf"`, q.Query().Get("response-content-disposition"))
}

func TestPresignedURL_Inline(t *testing.T) {
	t.Parallel()

	signed, err := presignStore(t).PresignedURL(context.Background(), "docs/abc.pdf",
		WithInline("preview.pdf"),
	)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, `inline; filename="preview.pdf"`, u.Query().Get("response-content-disposition"))
}

func TestPresignedURL_NonPositiveTTLFallsBack(t *testing.T) {
	t.Parallel()

	signed, err := presignStore(t).PresignedURL(context.Background(), "a.txt", WithTTL(-time.Minute))
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	require.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}
