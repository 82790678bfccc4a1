package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	content := []byte("accident report bytes")
	require.NoError(t, s.Upload(ctx, "u1/doc-1.pdf", bytes.NewReader(content), int64(len(content)), "application/pdf"))

	rc, err := s.Download(ctx, "u1/doc-1.pdf")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestLocalStorageDelete(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Upload(ctx, "u1/gone.txt", bytes.NewReader([]byte("x")), 1, "text/plain"))
	require.NoError(t, s.Delete(ctx, "u1/gone.txt"))

	_, err = s.Download(ctx, "u1/gone.txt")
	require.Error(t, err)

	// deleting twice stays quiet
	require.NoError(t, s.Delete(ctx, "u1/gone.txt"))
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	err = s.Upload(ctx, "../escape.txt", bytes.NewReader([]byte("x")), 1, "text/plain")
	require.Error(t, err)
	_, err = s.Download(ctx, "/etc/passwd")
	require.Error(t, err)
}
