// Package logfile is the append-only history of probe outcomes: up.log and
// down.log under one directory.
//
// down.log is rotated aside when it grows past the threshold so down history
// survives; up.log is simply truncated.
package logfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/pinger/internal/domain"
)

const (
	UpLogName       = "up.log"
	DownLogName     = "down.log"
	DefaultMaxBytes = 1 << 20

	// rotatedTimeFormat sorts lexically and has no ':' so it is safe on
	// every filesystem.
	rotatedTimeFormat = "2006-01-02T15-04-05.000"
)

type Store struct {
	dir      string
	maxBytes int64
	logger   *zap.Logger

	// mu makes "check size, rotate or truncate, append" one step per call.
	mu  sync.Mutex
	now func() time.Time
}

func New(dir string, maxBytes int64, logger *zap.Logger) *Store {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, maxBytes: maxBytes, logger: logger, now: time.Now}
}

func (s *Store) Dir() string         { return s.dir }
func (s *Store) UpLogPath() string   { return filepath.Join(s.dir, UpLogName) }
func (s *Store) DownLogPath() string { return filepath.Join(s.dir, DownLogName) }

// Append writes rec to down.log or up.log depending on its status. Every call
// opens, writes and closes the file. Failures are logged here and returned so
// the caller can count them; they are never fatal.
func (s *Store) Append(ctx context.Context, rec domain.LogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	switch rec.Status {
	case domain.StatusDown:
		err = s.appendDown(rec)
	case domain.StatusUp:
		err = s.appendUp(rec)
	default:
		err = fmt.Errorf("no log for status %q", rec.Status)
	}
	if err != nil {
		s.logger.Error("log_write_error",
			zap.String("name", rec.Name),
			zap.String("url", rec.URL),
			zap.String("status", string(rec.Status)),
			zap.Error(err),
		)
	}
	return err
}

func (s *Store) appendDown(rec domain.LogRecord) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := s.rotateDownLogIfOversized(); err != nil {
		return err
	}
	return appendLine(s.DownLogPath(), rec)
}

func (s *Store) appendUp(rec domain.LogRecord) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	if err := appendLine(s.UpLogPath(), rec); err != nil {
		return err
	}
	return s.truncateUpLogIfOversized()
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	return nil
}

// rotateDownLogIfOversized renames down.log to down-<time>.log once it is
// larger than the threshold. The next append then creates a fresh file.
func (s *Store) rotateDownLogIfOversized() error {
	path := s.DownLogPath()
	size, err := fileSize(path)
	if err != nil || size <= s.maxBytes {
		return err
	}

	dest := s.rotatedName()
	if err := os.Rename(path, dest); err != nil {
		return fmt.Errorf("rotate %s: %w", DownLogName, err)
	}
	s.logger.Info("down_log_rotated",
		zap.String("to", filepath.Base(dest)),
		zap.Int64("bytes", size),
	)
	return nil
}

// truncateUpLogIfOversized empties up.log once it is larger than the
// threshold. Nothing is kept.
func (s *Store) truncateUpLogIfOversized() error {
	path := s.UpLogPath()
	size, err := fileSize(path)
	if err != nil || size <= s.maxBytes {
		return err
	}
	if err := os.Truncate(path, 0); err != nil {
		return fmt.Errorf("truncate %s: %w", UpLogName, err)
	}
	s.logger.Info("up_log_truncated", zap.Int64("bytes", size))
	return nil
}

// rotatedName picks an unused down-<time>.log name. If two rotations land in
// the same millisecond the later one moves forward so names still sort in
// rotation order.
func (s *Store) rotatedName() string {
	at := s.now()
	for {
		name := filepath.Join(s.dir, "down-"+at.Format(rotatedTimeFormat)+".log")
		if _, err := os.Stat(name); err != nil {
			return name
		}
		at = at.Add(time.Millisecond)
	}
}

func appendLine(path string, rec domain.LogRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return nil
}

// fileSize returns 0 for a file that does not exist yet.
func fileSize(path string) (int64, error) {
	st, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", filepath.Base(path), err)
	}
	return st.Size(), nil
}
