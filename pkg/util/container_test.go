package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnyExists(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, ".containerenv")

	paths := []string{filepath.Join(dir, ".dockerenv"), marker}
	assert.False(t, anyExists(paths))

	require.NoError(t, os.WriteFile(marker, nil, 0o600))
	assert.True(t, anyExists(paths))
}
