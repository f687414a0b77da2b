package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wipefile_enterprise/internal/config"
	"wipefile_enterprise/internal/logging"
)

func newCleanTestLogger(t *testing.T) *logging.EnterpriseLogger {
	t.Helper()

	cfg := config.Default()
	cfg.Logging.Level = "ERROR"

	logger, err := logging.NewEnterpriseLogger(cfg, false)
	require.NoError(t, err)

	t.Cleanup(func() { _ = logger.Close() })
	return logger
}

// createAged создает файл или директорию с датой изменения в прошлом
func createAged(t *testing.T, root, name string, size int, ageDays int) string {
	t.Helper()

	path := filepath.Join(root, name)
	if size < 0 {
		require.NoError(t, os.MkdirAll(path, 0755))
	} else {
		require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
	}

	if ageDays > 0 {
		old := time.Now().AddDate(0, 0, -ageDays)
		require.NoError(t, os.Chtimes(path, old, old))
	}
	return path
}

func TestCollectCleanTargetsFilters(t *testing.T) {
	logger := newCleanTestLogger(t)
	root := t.TempDir()

	oldReport := createAged(t, root, "old_report.tmp", 100, 30)
	cache := createAged(t, root, "cache", -1, 30)
	private := createAged(t, root, "private", -1, 30)

	// моложе порога, больше лимита, системные расширения, паттерн
	createAged(t, root, "fresh.tmp", 100, 0)
	createAged(t, root, "huge.bin", 2048, 30)
	createAged(t, root, "setup.exe", 100, 30)
	createAged(t, root, "native.dll", 100, 30)
	createAged(t, root, "session.lock", 100, 30)

	rules := CleanRules{
		ExcludePaths:    []string{private},
		ExcludePatterns: []string{"*.lock"},
		MaxFileSize:     1024,
		MinFileAgeDays:  7,
	}

	targets := CollectCleanTargets([]string{root}, rules, logger)

	assert.ElementsMatch(t, []string{oldReport, cache}, targets)
}

func TestCollectCleanTargetsNoLimits(t *testing.T) {
	logger := newCleanTestLogger(t)
	root := t.TempDir()

	data := createAged(t, root, "data.tmp", 10, 0)
	sub := createAged(t, root, "leftovers", -1, 0)
	createAged(t, root, "driver.sys", 10, 0)

	targets := CollectCleanTargets([]string{root}, CleanRules{}, logger)

	assert.ElementsMatch(t, []string{data, sub}, targets,
		"without limits everything except system artifacts qualifies")
}

func TestCollectCleanTargetsDirIgnoresSizeLimit(t *testing.T) {
	logger := newCleanTestLogger(t)
	root := t.TempDir()

	sub := createAged(t, root, "bulky_dir", -1, 0)
	writeInside := filepath.Join(sub, "inner.bin")
	require.NoError(t, os.WriteFile(writeInside, make([]byte, 4096), 0644))

	targets := CollectCleanTargets([]string{root}, CleanRules{MaxFileSize: 1}, logger)

	assert.Contains(t, targets, sub, "size limit applies to files, not directories")
}

func TestCollectCleanTargetsMissingRoot(t *testing.T) {
	logger := newCleanTestLogger(t)

	targets := CollectCleanTargets([]string{filepath.Join(t.TempDir(), "нет")}, CleanRules{}, logger)
	assert.Empty(t, targets, "unreadable root is skipped, not fatal")
}

func TestCollectCleanTargetsMultipleRoots(t *testing.T) {
	logger := newCleanTestLogger(t)

	root1 := t.TempDir()
	root2 := t.TempDir()
	a := createAged(t, root1, "a.tmp", 10, 0)
	b := createAged(t, root2, "b.tmp", 10, 0)

	targets := CollectCleanTargets([]string{root1, root2}, CleanRules{}, logger)
	assert.ElementsMatch(t, []string{a, b}, targets)
}

func TestIsExcludedPath(t *testing.T) {
	base := t.TempDir()

	testCases := []struct {
		name  string
		path  string
		rules CleanRules
		want  bool
	}{
		{
			name: "exe always excluded",
			path: filepath.Join(base, "Setup.EXE"),
			want: true,
		},
		{
			name: "pagefile always excluded",
			path: filepath.Join(base, "pagefile.sys"),
			want: true,
		},
		{
			name:  "pattern match",
			path:  filepath.Join(base, "apt.LOCK"),
			rules: CleanRules{ExcludePatterns: []string{"*.lock"}},
			want:  true,
		},
		{
			name:  "exact excluded path",
			path:  filepath.Join(base, "keep"),
			rules: CleanRules{ExcludePaths: []string{filepath.Join(base, "keep")}},
			want:  true,
		},
		{
			name:  "inside excluded path",
			path:  filepath.Join(base, "keep", "child.txt"),
			rules: CleanRules{ExcludePaths: []string{filepath.Join(base, "keep")}},
			want:  true,
		},
		{
			name: "plain file not excluded",
			path: filepath.Join(base, "report.tmp"),
			want: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isExcludedPath(tc.path, tc.rules))
		})
	}
}

func TestIsSubpath(t *testing.T) {
	sep := string(filepath.Separator)

	testCases := []struct {
		parent string
		child  string
		want   bool
	}{
		{sep + "a", sep + "a" + sep + "b", true},
		{sep + "a", sep + "a" + sep + "b" + sep + "c", true},
		{sep + "a", sep + "a", false},
		{sep + "a", sep + "b", false},
		{sep + "a" + sep + "b", sep + "a", false},
		{sep + "a", sep + "ab", false},
	}

	for _, tc := range testCases {
		t.Run(tc.parent+"_"+tc.child, func(t *testing.T) {
			assert.Equal(t, tc.want, IsSubpath(tc.parent, tc.child))
		})
	}
}
