package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wipefile_enterprise/internal/config"
)

func protectedConfig(t *testing.T) (*config.Config, string) {
	t.Helper()

	protected := filepath.Join(t.TempDir(), "critical")
	require.NoError(t, os.MkdirAll(protected, 0755))

	cfg := config.Default()
	cfg.Security.ProtectedPaths = []string{protected}
	return cfg, protected
}

func TestCheckTargetProtectedPaths(t *testing.T) {
	cfg, protected := protectedConfig(t)

	testCases := []struct {
		name    string
		target  string
		blocked bool
	}{
		{"exact protected path", protected, true},
		{"inside protected path", filepath.Join(protected, "db", "main.ibd"), true},
		{"parent of protected path", filepath.Dir(protected), true},
		{"unrelated path", filepath.Join(os.TempDir(), "unrelated.tmp"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckTarget(cfg, tc.target)
			if tc.blocked {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "защищён от затирания")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckTargetAllowProtectedOverride(t *testing.T) {
	cfg, protected := protectedConfig(t)
	cfg.Security.AllowProtected = true

	assert.NoError(t, CheckTarget(cfg, filepath.Join(protected, "export.csv")),
		"explicit override disables path protection")
}

func TestCheckTargetRunningExecutable(t *testing.T) {
	exe, err := os.Executable()
	if err != nil {
		t.Skip("executable path unavailable")
	}

	cfg := config.Default()
	cfg.Security.AllowProtected = true
	cfg.Security.ProtectedPaths = nil

	err = CheckTarget(cfg, exe)
	require.Error(t, err, "own binary must never be a target")
	assert.Contains(t, err.Error(), "исполняемый файл")

	// директория с запущенным исполняемым файлом тоже отклоняется
	err = CheckTarget(cfg, filepath.Dir(exe))
	require.Error(t, err)
}

func TestSecurityChecksStopsAtFirstViolation(t *testing.T) {
	cfg, protected := protectedConfig(t)

	safe := filepath.Join(t.TempDir(), "safe.tmp")
	err := SecurityChecks(cfg, []string{safe, filepath.Join(protected, "x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "защищён")

	assert.NoError(t, SecurityChecks(cfg, []string{safe}))
}

func TestSecurityChecksNilConfigUsesDefaults(t *testing.T) {
	neutral := filepath.Join(string(filepath.Separator), "home", "operator", "scratch.tmp")
	assert.NoError(t, SecurityChecks(nil, []string{neutral}))

	systemPath := config.Default().Security.ProtectedPaths[0]
	require.Error(t, SecurityChecks(nil, []string{systemPath}),
		"system paths are protected out of the box")
}
