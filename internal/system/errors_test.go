package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"not exist sentinel", os.ErrNotExist, KindNotFound},
		{"wrapped not exist", fmt.Errorf("ошибка доступа: %w", os.ErrNotExist), KindNotFound},
		{"permission sentinel", os.ErrPermission, KindPermissionDenied},
		{"wrapped permission", fmt.Errorf("ошибка открытия: %w", os.ErrPermission), KindPermissionDenied},
		{"disk full text", errors.New("write /tmp/x: no space left on device"), KindDiskFull},
		{"disk full windows text", errors.New("There is not enough space on the disk."), KindDiskFull},
		{"disk full russian text", errors.New("Недостаточно места на диске"), KindDiskFull},
		{"device not ready text", errors.New("read \\\\.\\E:: The device is not ready."), KindDeviceNotReady},
		{"generic io", errors.New("input/output error"), KindIoFailure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyError(tc.err))
		})
	}
}

func TestClassifyErrorRealPathError(t *testing.T) {
	_, err := os.Open(filepath.Join(t.TempDir(), "нет_такого_файла"))
	require.Error(t, err)

	assert.Equal(t, KindNotFound, ClassifyError(err),
		"a real *PathError must classify through the wrap chain")
	assert.Equal(t, KindNotFound, ClassifyError(fmt.Errorf("обёртка: %w", err)))
}

func TestIsDiskFullError(t *testing.T) {
	assert.False(t, IsDiskFullError(nil))
	assert.False(t, IsDiskFullError(errors.New("permission denied")))
	assert.True(t, IsDiskFullError(errors.New("Disk full")))
}

func TestIsDeviceNotReadyError(t *testing.T) {
	assert.False(t, IsDeviceNotReadyError(nil))
	assert.False(t, IsDeviceNotReadyError(errors.New("no space left on device")))
	assert.True(t, IsDeviceNotReadyError(errors.New("device not ready")))
}
