package system

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDiskInfoForPath(t *testing.T) {
	dir := t.TempDir()

	info, err := GetDiskInfoForPath(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, info.Path)
	assert.Positive(t, info.TotalSize)
	assert.LessOrEqual(t, info.FreeSize, info.TotalSize)
	assert.Equal(t, info.TotalSize-info.FreeSize, info.UsedSize)
	assert.True(t, info.IsWritable)
}

func TestGetDiskInfoForFileUsesParentDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "payload.bin")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	info, err := GetDiskInfoForPath(file)
	require.NoError(t, err)
	assert.Equal(t, dir, info.Path, "file paths resolve to the containing directory")
}

func TestGetDiskInfoForMissingPath(t *testing.T) {
	_, err := GetDiskInfoForPath(filepath.Join(t.TempDir(), "нет_такого"))
	assert.Error(t, err)
}
