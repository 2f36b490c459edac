package storage

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_PutGet(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	key, err := s.Put("/adhd//high.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "adhd/high.png", key)

	rc, err := s.Get("adhd/high.png")
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))

	_, err = s.Get("adhd/missing.png")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCleanKey_RejectsTraversal(t *testing.T) {
	for _, k := range []string{"", "/", "../etc/passwd", "a/../../b", "  "} {
		_, err := CleanKey(k)
		assert.ErrorIs(t, err, ErrInvalidKey, k)
	}
}
