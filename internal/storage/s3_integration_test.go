//go:build integration

package storage

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentora-ai/mentora/internal/testutil"
)

func setupS3Client(ctx context.Context, t *testing.T) *S3Client {
	t.Helper()

	container := testutil.NewRustFSContainer(ctx, t)
	t.Cleanup(func() { container.Terminate(ctx) })

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        container.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "test-documents",
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))

	return client
}

func TestS3Client_TextRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := setupS3Client(ctx, t)

	key := "documents/roundtrip.txt"
	content := "Value-based pricing anchors the conversation on outcomes.\nSecond line."

	require.NoError(t, client.PutObjectText(ctx, key, content))

	got, err := client.GetObjectText(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	meta, err := client.HeadObject(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), meta.ContentLength)
}

func TestS3Client_GetObjectText_Missing(t *testing.T) {
	ctx := context.Background()
	client := setupS3Client(ctx, t)

	_, err := client.GetObjectText(ctx, "documents/does-not-exist.txt")
	assert.Error(t, err)
}

func TestS3Client_PresignedUpload(t *testing.T) {
	ctx := context.Background()
	client := setupS3Client(ctx, t)

	key := "documents/presigned.txt"
	content := "uploaded through the presigned URL"

	uploadURL, err := client.GenerateUploadURL(ctx, key, "text/plain; charset=utf-8")
	require.NoError(t, err)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, strings.NewReader(content))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := client.GetObjectText(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestS3Client_DeleteObject(t *testing.T) {
	ctx := context.Background()
	client := setupS3Client(ctx, t)

	key := "documents/delete-me.txt"
	require.NoError(t, client.PutObjectText(ctx, key, "transient"))

	require.NoError(t, client.DeleteObject(ctx, key))

	_, err := client.GetObjectText(ctx, key)
	assert.Error(t, err)
}
