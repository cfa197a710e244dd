package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileStore stores each run as a JSON file in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based run store in baseDir, creating it if
// needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("history dir is empty")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) runPath(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Record(_ context.Context, run *Run) error {
	if run.ID == "" || strings.ContainsAny(run.ID, `/\`) {
		return fmt.Errorf("invalid run id %q", run.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	if err := os.WriteFile(s.runPath(run.ID), data, 0644); err != nil {
		return fmt.Errorf("write run file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, id string) (*Run, error) {
	if strings.ContainsAny(id, `/\`) {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, err := readRun(s.runPath(id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	return run, err
}

func (s *FileStore) List(_ context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	runs, err := s.all()
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	if limit = normalizeLimit(limit); len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *FileStore) Cleanup(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	runs, err := s.all()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, r := range runs {
		if r.CreatedAt.Before(before) {
			if err := os.Remove(s.runPath(r.ID)); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for run files.
func (s *FileStore) Path() string { return s.baseDir }

// all reads every run file. Unreadable files are skipped.
func (s *FileStore) all() ([]*Run, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read history dir: %w", err)
	}
	var runs []*Run
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		run, err := readRun(filepath.Join(s.baseDir, e.Name()))
		if err != nil {
			continue
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func readRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parse run %s: %w", filepath.Base(path), err)
	}
	return &run, nil
}

var _ Store = (*FileStore)(nil)
