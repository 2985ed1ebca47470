package logging

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	defaultMaxBytes    = 10 << 20
	defaultMaxArchives = 5
	defaultMaxAge      = 24 * time.Hour
	defaultLogName     = "site.log"

	archiveStampLayout = "20060102T150405.000000000"
)

// RotateOptions configures a RotatingFile. Zero values take the defaults:
// site.log, 10MB per file, five archives, daily rotation.
type RotateOptions struct {
	Dir         string
	Name        string
	MaxBytes    int64
	MaxArchives int
	MaxAge      time.Duration
}

// RotatingFile is an io.Writer for JSON log lines that rolls the active file
// over by size or age. Rolled files are gzipped in the background and the
// oldest archives beyond MaxArchives are removed.
type RotatingFile struct {
	opts RotateOptions
	now  func() time.Time

	mu       sync.Mutex
	file     *os.File
	size     int64
	openedAt time.Time
	seq      int
	closed   bool

	// archiving serialises compress + prune so two rollovers never race.
	archiving sync.Mutex
	pending   sync.WaitGroup
}

// OpenRotatingFile creates opts.Dir if needed and opens the active log file for append.
func OpenRotatingFile(opts RotateOptions) (*RotatingFile, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, errors.New("logging: log dir is required")
	}
	if opts.Name == "" {
		opts.Name = defaultLogName
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.MaxArchives <= 0 {
		opts.MaxArchives = defaultMaxArchives
	}
	if opts.MaxAge <= 0 {
		opts.MaxAge = defaultMaxAge
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: create log dir: %w", err)
	}

	rf := &RotatingFile{opts: opts, now: time.Now}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *RotatingFile) activePath() string {
	return filepath.Join(rf.opts.Dir, rf.opts.Name)
}

func (rf *RotatingFile) open() error {
	f, err := os.OpenFile(rf.activePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("logging: open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("logging: stat log file: %w", err)
	}
	rf.file = f
	rf.size = info.Size()
	rf.openedAt = rf.now()
	return nil
}

// Write appends p to the active file, rolling over first when p would push
// the file past MaxBytes or the file is older than MaxAge. A single entry
// larger than MaxBytes still lands whole in a fresh file.
func (rf *RotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.closed {
		return 0, os.ErrClosed
	}

	full := rf.size > 0 && rf.size+int64(len(p)) > rf.opts.MaxBytes
	stale := rf.now().Sub(rf.openedAt) > rf.opts.MaxAge
	if full || (stale && rf.size > 0) {
		if err := rf.rollover(); err != nil {
			return 0, err
		}
	}

	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

// rollover renames the active file to a unique archive name and reopens.
// Callers hold rf.mu.
func (rf *RotatingFile) rollover() error {
	if err := rf.file.Close(); err != nil {
		return fmt.Errorf("logging: close log file: %w", err)
	}
	rf.seq++
	rolled := fmt.Sprintf("%s.%s-%04d", rf.activePath(), rf.now().UTC().Format(archiveStampLayout), rf.seq)
	if err := os.Rename(rf.activePath(), rolled); err != nil {
		// Keep logging into the old file rather than losing entries.
		if reopenErr := rf.open(); reopenErr != nil {
			return errors.Join(err, reopenErr)
		}
		return fmt.Errorf("logging: rotate log file: %w", err)
	}

	rf.pending.Add(1)
	go func() {
		defer rf.pending.Done()
		rf.archiving.Lock()
		defer rf.archiving.Unlock()
		if err := gzipFile(rolled); err != nil {
			fmt.Fprintf(os.Stderr, "logging: compress %s: %v\n", rolled, err)
		}
		rf.prune()
	}()

	return rf.open()
}

// gzipFile writes path+".gz" and removes path only once the archive is fully
// flushed. On any failure the partial archive is removed and path is kept.
func gzipFile(path string) (err error) {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	gzPath := path + ".gz"
	out, err := os.OpenFile(gzPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(gzPath)
		}
	}()

	zw := gzip.NewWriter(out)
	if _, err = io.Copy(zw, in); err != nil {
		_ = zw.Close()
		_ = out.Close()
		return err
	}
	if err = zw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	_ = in.Close()
	return os.Remove(path)
}

// archives lists rolled files, compressed or not, oldest first. Archive
// names embed a fixed-width timestamp and sequence so they sort by name.
func (rf *RotatingFile) archives() []string {
	matches, err := filepath.Glob(rf.activePath() + ".*")
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

func (rf *RotatingFile) prune() {
	var gz []string
	for _, path := range rf.archives() {
		if strings.HasSuffix(path, ".gz") {
			gz = append(gz, path)
		}
	}
	if len(gz) <= rf.opts.MaxArchives {
		return
	}
	for _, path := range gz[:len(gz)-rf.opts.MaxArchives] {
		_ = os.Remove(path)
	}
}

// Close waits for pending archive work and closes the active file.
func (rf *RotatingFile) Close() error {
	rf.mu.Lock()
	if rf.closed {
		rf.mu.Unlock()
		return nil
	}
	rf.closed = true
	err := rf.file.Close()
	rf.mu.Unlock()

	rf.pending.Wait()
	return err
}
