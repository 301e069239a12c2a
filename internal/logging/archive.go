package logging

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	archivePrefix    = "cat034_"
	archiveExtension = ".jsonl"
	dateLayout       = "2006-01-02"
)

// Archive writes decoded records as JSON lines into one file per day and
// gzip-compresses the file of the previous day after rotation.
type Archive struct {
	dir         string
	useUTC      bool
	logger      *logrus.Logger
	currentFile *os.File
	currentDate string
	mutex       sync.RWMutex
	compressing sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	now         func() time.Time
}

// NewArchive creates the directory if needed and opens today's file
func NewArchive(dir string, useUTC bool, logger *logrus.Logger) (*Archive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	a := &Archive{
		dir:    dir,
		useUTC: useUTC,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		now:    time.Now,
	}

	a.mutex.Lock()
	err := a.rotate()
	a.mutex.Unlock()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize archive file: %w", err)
	}

	return a, nil
}

// Start checks once a minute whether the date changed
func (a *Archive) Start(ctx context.Context) {
	a.logger.Info("Starting record archive")

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Record archive stopping")
			return
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.checkRotation()
		}
	}
}

func (a *Archive) today() string {
	now := a.now()
	if a.useUTC {
		now = now.UTC()
	}
	return now.Format(dateLayout)
}

func (a *Archive) checkRotation() {
	date := a.today()

	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.currentFile != nil && a.currentDate != date {
		a.logger.WithFields(logrus.Fields{
			"old_date": a.currentDate,
			"new_date": date,
		}).Info("Rotating archive file")

		if err := a.rotate(); err != nil {
			a.logger.WithError(err).Error("Failed to rotate archive file")
		}
	}
}

// rotate must be called with the mutex held
func (a *Archive) rotate() error {
	date := a.today()

	if a.currentFile != nil {
		oldDate := a.currentDate
		if err := a.currentFile.Close(); err != nil {
			a.logger.WithError(err).Error("Failed to close old archive file")
		}
		a.currentFile = nil

		if oldDate != date {
			a.compressing.Add(1)
			go func() {
				defer a.compressing.Done()
				a.compress(oldDate)
			}()
		}
	}

	path := a.fileFor(date)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create archive file %s: %w", path, err)
	}

	a.currentFile = file
	a.currentDate = date

	a.logger.WithField("file", path).Info("Opened archive file")
	return nil
}

func (a *Archive) fileFor(date string) string {
	return filepath.Join(a.dir, archivePrefix+date+archiveExtension)
}

func (a *Archive) compress(date string) {
	src := a.fileFor(date)
	dst := src + ".gz"

	a.logger.WithFields(logrus.Fields{
		"source": src,
		"target": dst,
	}).Info("Compressing archive file")

	if err := gzipFile(src, dst); err != nil {
		a.logger.WithError(err).WithField("file", src).Error("Failed to compress archive file")
		return
	}

	if err := os.Remove(src); err != nil {
		a.logger.WithError(err).WithField("file", src).Error("Failed to remove original archive file")
		return
	}

	a.logger.WithField("file", dst).Info("Archive file compressed")
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	gz := gzip.NewWriter(out)
	gz.Name = filepath.Base(src)
	gz.ModTime = time.Now()

	if _, err := io.Copy(gz, in); err != nil {
		gz.Close()
		out.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// WriteLine appends line and a newline to the current file
func (a *Archive) WriteLine(line []byte) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.currentFile == nil {
		return fmt.Errorf("archive is closed")
	}

	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')
	_, err := a.currentFile.Write(buf)
	return err
}

// CurrentFile returns the path being written
func (a *Archive) CurrentFile() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	if a.currentDate == "" {
		return ""
	}
	return a.fileFor(a.currentDate)
}

// Files lists every archive file, compressed ones included
func (a *Archive) Files() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(a.dir, archivePrefix+"*"+archiveExtension+"*"))
	if err != nil {
		return nil, fmt.Errorf("failed to list archive files: %w", err)
	}
	return files, nil
}

// CleanupOld removes archive files last modified more than maxDays ago
func (a *Archive) CleanupOld(maxDays int) error {
	if maxDays <= 0 {
		return fmt.Errorf("maxDays must be positive")
	}

	files, err := a.Files()
	if err != nil {
		return err
	}

	cutoff := a.now().AddDate(0, 0, -maxDays)
	current := a.CurrentFile()

	removed := 0
	for _, file := range files {
		if file == current {
			continue
		}

		info, err := os.Stat(file)
		if err != nil {
			a.logger.WithError(err).WithField("file", file).Warn("Failed to stat archive file")
			continue
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err != nil {
				a.logger.WithError(err).WithField("file", file).Error("Failed to remove old archive file")
			} else {
				a.logger.WithField("file", file).Info("Removed old archive file")
				removed++
			}
		}
	}

	a.logger.WithField("count", removed).Info("Cleaned up old archive files")
	return nil
}

// Close closes the current file and waits for pending compression
func (a *Archive) Close() error {
	a.logger.Info("Closing record archive")

	a.cancel()

	a.mutex.Lock()
	var err error
	if a.currentFile != nil {
		err = a.currentFile.Close()
		a.currentFile = nil
	}
	a.mutex.Unlock()

	a.compressing.Wait()
	return err
}
