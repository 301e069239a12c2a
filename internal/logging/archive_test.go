package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard) // Suppress log output during tests
	return logger
}

// TestNewArchive tests archive creation
func TestNewArchive(t *testing.T) {
	tests := []struct {
		name   string
		subdir string
		useUTC bool
	}{
		{
			name:   "Local time",
			subdir: "archive",
		},
		{
			name:   "UTC",
			subdir: "archive_utc",
			useUTC: true,
		},
		{
			name:   "Nested directory",
			subdir: "nested/archive/dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), tt.subdir)

			archive, err := NewArchive(dir, tt.useUTC, quietLogger())
			require.NoError(t, err)
			defer archive.Close()

			assert.DirExists(t, dir)

			current := archive.CurrentFile()
			assert.FileExists(t, current)
			assert.True(t, strings.HasPrefix(filepath.Base(current), "cat034_"))
			assert.True(t, strings.HasSuffix(current, ".jsonl"))

			if tt.useUTC {
				assert.Contains(t, current, time.Now().UTC().Format(dateLayout))
			}
		})
	}
}

func TestArchive_WriteLine(t *testing.T) {
	archive, err := NewArchive(t.TempDir(), false, quietLogger())
	require.NoError(t, err)
	defer archive.Close()

	require.NoError(t, archive.WriteLine([]byte(`{"category":34}`)))
	require.NoError(t, archive.WriteLine([]byte(`{"category":34,"records":[]}`)))

	content, err := os.ReadFile(archive.CurrentFile())
	require.NoError(t, err)
	assert.Equal(t, "{\"category\":34}\n{\"category\":34,\"records\":[]}\n", string(content))
}

func TestArchive_Rotation(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)

	archive, err := NewArchive(dir, true, quietLogger())
	require.NoError(t, err)

	// Reopen on a fixed clock
	archive.mutex.Lock()
	archive.now = func() time.Time { return day }
	require.NoError(t, archive.rotate())
	archive.mutex.Unlock()

	first := archive.CurrentFile()
	assert.Equal(t, filepath.Join(dir, "cat034_2024-03-01.jsonl"), first)
	require.NoError(t, archive.WriteLine([]byte("day one")))

	// Same date, nothing happens
	archive.checkRotation()
	assert.Equal(t, first, archive.CurrentFile())

	day = day.Add(2 * time.Minute)
	archive.checkRotation()
	assert.Equal(t, filepath.Join(dir, "cat034_2024-03-02.jsonl"), archive.CurrentFile())
	require.NoError(t, archive.WriteLine([]byte("day two")))

	require.NoError(t, archive.Close())

	assert.NoFileExists(t, first)
	gzFile, err := os.Open(first + ".gz")
	require.NoError(t, err)
	defer gzFile.Close()

	gzReader, err := gzip.NewReader(gzFile)
	require.NoError(t, err)
	defer gzReader.Close()

	decompressed, err := io.ReadAll(gzReader)
	require.NoError(t, err)
	assert.Equal(t, "day one\n", string(decompressed))
}

func TestArchive_Files(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewArchive(dir, false, quietLogger())
	require.NoError(t, err)
	defer archive.Close()

	testFiles := []string{
		"cat034_2023-01-01.jsonl",
		"cat034_2023-01-02.jsonl.gz",
	}
	for _, name := range testFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}\n"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.log"), nil, 0644))

	files, err := archive.Files()
	require.NoError(t, err)
	assert.Len(t, files, len(testFiles)+1)

	fileSet := make(map[string]bool)
	for _, file := range files {
		fileSet[filepath.Base(file)] = true
	}
	for _, name := range testFiles {
		assert.True(t, fileSet[name], "Expected file %s not found", name)
	}
	assert.False(t, fileSet["other.log"])
}

func TestArchive_CleanupOld(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewArchive(dir, false, quietLogger())
	require.NoError(t, err)
	defer archive.Close()

	oldFile := filepath.Join(dir, "cat034_2023-01-01.jsonl.gz")
	require.NoError(t, os.WriteFile(oldFile, []byte("old"), 0644))
	oldTime := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(oldFile, oldTime, oldTime))

	recentFile := filepath.Join(dir, "cat034_2023-12-31.jsonl")
	require.NoError(t, os.WriteFile(recentFile, []byte("recent"), 0644))

	require.NoError(t, archive.CleanupOld(5))

	assert.NoFileExists(t, oldFile)
	assert.FileExists(t, recentFile)
	assert.FileExists(t, archive.CurrentFile())

	err = archive.CleanupOld(0)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "maxDays must be positive")
}

func TestArchive_Close(t *testing.T) {
	archive, err := NewArchive(t.TempDir(), false, quietLogger())
	require.NoError(t, err)

	require.NoError(t, archive.WriteLine([]byte("data")))
	assert.NoError(t, archive.Close())

	err = archive.WriteLine([]byte("late"))
	assert.Error(t, err)
}

func TestArchive_ConcurrentWrites(t *testing.T) {
	archive, err := NewArchive(t.TempDir(), false, quietLogger())
	require.NoError(t, err)
	defer archive.Close()

	numGoroutines := 10
	numOps := 100

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOps; j++ {
				if err := archive.WriteLine([]byte(fmt.Sprintf("goroutine-%d-op-%d", id, j))); err != nil {
					t.Errorf("WriteLine failed: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	content, err := os.ReadFile(archive.CurrentFile())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	assert.Len(t, lines, numGoroutines*numOps)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "goroutine-"), "Interleaved line %q", line)
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("Stderr only", func(t *testing.T) {
		logger, closer, err := NewLogger(true, FileConfig{})
		require.NoError(t, err)
		assert.Equal(t, logrus.DebugLevel, logger.Level)
		assert.NoError(t, closer.Close())
	})

	t.Run("Rotated file", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "logs")
		logger, closer, err := NewLogger(false, FileConfig{Directory: dir, MaxSizeMB: 1, MaxBackups: 2})
		require.NoError(t, err)
		assert.Equal(t, logrus.InfoLevel, logger.Level)

		logger.SetOutput(io.MultiWriter(io.Discard, closer.(io.Writer)))
		logger.Info("hello archive")
		require.NoError(t, closer.Close())

		content, err := os.ReadFile(filepath.Join(dir, "cat034.log"))
		require.NoError(t, err)
		assert.Contains(t, string(content), "hello archive")
	})
}

func BenchmarkArchive_WriteLine(b *testing.B) {
	archive, err := NewArchive(b.TempDir(), false, quietLogger())
	if err != nil {
		b.Fatal(err)
	}
	defer archive.Close()

	line := []byte(`{"category":34,"length":23,"records":[{"message_type":"north_marker"}]}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := archive.WriteLine(line); err != nil {
			b.Fatal(err)
		}
	}
}
