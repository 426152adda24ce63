package blob_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"preloved/backend/internal/blob"
)

func TestLocalUploaderWritesFileAndBuildsURL(t *testing.T) {
	dir := t.TempDir()
	up, err := blob.NewLocalUploader(dir, "/uploads/")
	assert.NoError(t, err)

	url, err := up.Upload(context.Background(), []byte("png bytes"), "image/png")
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	data, err := os.ReadFile(filepath.Join(dir, filepath.Base(url)))
	assert.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)
}

func TestLocalUploaderDefaultsToJpg(t *testing.T) {
	up, err := blob.NewLocalUploader(t.TempDir(), "/uploads")
	assert.NoError(t, err)

	url, err := up.Upload(context.Background(), []byte("bytes"), "application/octet-stream")
	assert.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, ".jpg"))
}

func TestLocalUploaderUniqueNames(t *testing.T) {
	up, err := blob.NewLocalUploader(t.TempDir(), "/uploads")
	assert.NoError(t, err)

	first, err := up.Upload(context.Background(), []byte("a"), "image/png")
	assert.NoError(t, err)
	second, err := up.Upload(context.Background(), []byte("b"), "image/png")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
}
