// Package buffer implements the durable on-disk store for log records that
// could not be delivered. Records are kept as JSON lines under one directory
// per service:
//
//	<root>/<service>/buffer.jsonl            active write target
//	<root>/<service>/buffer-<ts>.jsonl       rotated, awaiting compaction
//	<root>/<service>/buffer-<ts>.jsonl.zst   rotated and compacted
//	<root>/<service>/buffer.sending-<ts>.jsonl  snapshot being drained
//
// Draining uses the atomic-rename strategy: the active file is renamed to a
// sending snapshot so writers continue into a fresh file while the snapshot
// is consumed. A file is either the active target or a snapshot, never both.
package buffer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fastjson"

	"github.com/Red-Arch-Labs-LLC/red-arch-logging-go-client/internal/model"
)

// MaxFileSize is the rotation threshold for the active buffer file.
const MaxFileSize = 5 * 1024 * 1024

const (
	activeName    = "buffer.jsonl"
	rotatedPrefix = "buffer-"
	sendingPrefix = "buffer.sending-"
)

// Store owns the buffer directory tree for every service the process logs
// for. Writers within the process are serialized by a single mutex.
type Store struct {
	root    string
	maxSize int64
	mu      sync.Mutex
}

func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create buffer root: %w", err)
	}
	return &Store{root: root, maxSize: MaxFileSize}, nil
}

func (s *Store) serviceDir(service string) string {
	return filepath.Join(s.root, service)
}

func (s *Store) activePath(service string) string {
	return filepath.Join(s.serviceDir(service), activeName)
}

// Write durably appends one envelope to the active file of its service.
// The file is synced before Write reports success.
func (s *Store) Write(env model.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	dir := s.serviceDir(env.Service)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create service dir: %w", err)
	}
	s.rotateIfNeeded(env.Service)

	f, err := os.OpenFile(s.activePath(env.Service), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open buffer: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append buffer: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync buffer: %w", err)
	}
	return nil
}

// rotateIfNeeded renames an oversized active file to a timestamped rotated
// name and compacts it. Rotation failures are logged and writing continues
// into the oversized file.
func (s *Store) rotateIfNeeded(service string) {
	active := s.activePath(service)
	info, err := os.Stat(active)
	if err != nil || info.Size() < s.maxSize {
		return
	}
	rotated := filepath.Join(s.serviceDir(service),
		fmt.Sprintf("%s%d.jsonl", rotatedPrefix, time.Now().UnixNano()))
	if err := os.Rename(active, rotated); err != nil {
		log.Printf("[redarch] buffer rotate %s: %v", service, err)
		return
	}
	if err := compact(rotated); err != nil {
		log.Printf("[redarch] buffer compact %s: %v", rotated, err)
	}
}

// compact rewrites a rotated file as zstd and removes the original. On any
// failure the plain file is kept and remains readable by recovery.
func compact(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".zst")
	if err != nil {
		return err
	}
	zw, err := zstd.NewWriter(dst)
	if err != nil {
		dst.Close()
		return err
	}
	if _, err := io.Copy(zw, src); err != nil {
		zw.Close()
		dst.Close()
		os.Remove(path + ".zst")
		return err
	}
	if err := zw.Close(); err != nil {
		dst.Close()
		os.Remove(path + ".zst")
		return err
	}
	if err := dst.Close(); err != nil {
		os.Remove(path + ".zst")
		return err
	}
	return os.Remove(path)
}

// BeginDrain atomically hands the active file of a service off to a sending
// snapshot and reports its path. It returns false when there is nothing to
// drain.
func (s *Store) BeginDrain(service string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := s.activePath(service)
	info, err := os.Stat(active)
	if err != nil || info.Size() == 0 {
		return "", false
	}
	sending := filepath.Join(s.serviceDir(service),
		fmt.Sprintf("%s%d.jsonl", sendingPrefix, time.Now().UnixNano()))
	if err := os.Rename(active, sending); err != nil {
		return "", false
	}
	return sending, true
}

// DrainFile reads every valid envelope out of a snapshot or rotated file.
// Malformed lines are counted, logged and skipped. A fully valid file is
// removed; a file containing corrupted lines is set aside with a .corrupt
// suffix for manual inspection instead of being re-read forever.
func (s *Store) DrainFile(path string) ([]model.Envelope, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	var r io.Reader = f
	var zr *zstd.Decoder
	if strings.HasSuffix(path, ".zst") {
		zr, err = zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		r = zr
	}

	var envs []model.Envelope
	corrupt := 0
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if err := fastjson.Validate(line); err != nil {
			corrupt++
			continue
		}
		var env model.Envelope
		if err := json.Unmarshal([]byte(line), &env); err != nil {
			corrupt++
			continue
		}
		envs = append(envs, env)
	}
	scanErr := sc.Err()
	if zr != nil {
		zr.Close()
	}
	f.Close()

	if scanErr != nil {
		log.Printf("[redarch] buffer read %s: %v", path, scanErr)
	}
	if corrupt > 0 {
		log.Printf("[redarch] buffer %s: skipped %d corrupted line(s)", path, corrupt)
		if err := os.Rename(path, path+".corrupt"); err != nil {
			os.Remove(path)
		}
		return envs, nil
	}
	if err := os.Remove(path); err != nil {
		log.Printf("[redarch] buffer remove %s: %v", path, err)
	}
	return envs, nil
}

// ReadAll returns every valid envelope persisted for any service and removes
// the consumed files. It is used once per process, at startup, before new
// writes begin: leftover sending snapshots from a crashed drain are picked up
// first, then rotated files, then the current active file.
func (s *Store) ReadAll() ([]model.Envelope, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read buffer root: %w", err)
	}

	var all []model.Envelope
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		service := e.Name()
		for _, path := range s.pendingFiles(service) {
			envs, err := s.DrainFile(path)
			if err != nil {
				log.Printf("[redarch] buffer drain %s: %v", path, err)
				continue
			}
			all = append(all, envs...)
		}
		if sending, ok := s.BeginDrain(service); ok {
			envs, err := s.DrainFile(sending)
			if err != nil {
				log.Printf("[redarch] buffer drain %s: %v", sending, err)
				continue
			}
			all = append(all, envs...)
		}
	}
	return all, nil
}

// pendingFiles lists snapshot and rotated files for a service, oldest first.
func (s *Store) pendingFiles(service string) []string {
	entries, err := os.ReadDir(s.serviceDir(service))
	if err != nil {
		return nil
	}
	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == activeName || strings.HasSuffix(name, ".corrupt") {
			continue
		}
		if strings.HasPrefix(name, sendingPrefix) || strings.HasPrefix(name, rotatedPrefix) {
			paths = append(paths, filepath.Join(s.serviceDir(service), name))
		}
	}
	sort.Strings(paths)
	return paths
}
