// Package fsdir provides a directory-backed implementation of
// driven.MaterialStore. Each course lives in a <courseID>.json file
// containing an array of materials; file changes are observed with
// fsnotify and forwarded to registered watchers.
package fsdir

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/doccloud/retrieval/internal/core/domain"
	"github.com/doccloud/retrieval/internal/core/ports/driven"
	"github.com/doccloud/retrieval/internal/logger"
)

// Ensure MaterialStore implements the interface.
var _ driven.MaterialStore = (*MaterialStore)(nil)

// MaterialStore reads course materials from JSON files in a directory.
type MaterialStore struct {
	dir string

	mu       sync.RWMutex
	watchers []func(courseID string)

	fsWatcher *fsnotify.Watcher
	closeOnce sync.Once
}

// NewMaterialStore opens a material store over dir. The directory must
// exist; a filesystem watcher is started so that edits to course files
// invalidate dependent indexes.
func NewMaterialStore(dir string) (*MaterialStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: materials directory: %w", domain.ErrStoreUnavailable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrStoreUnavailable, dir)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	s := &MaterialStore{dir: dir, fsWatcher: fsWatcher}
	go s.handleEvents()
	return s, nil
}

// ListMaterials loads all materials for a course from its JSON file.
func (s *MaterialStore) ListMaterials(_ context.Context, courseID string) ([]domain.CourseMaterial, error) {
	data, err := os.ReadFile(s.coursePath(courseID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, fmt.Errorf("%w: reading course %s: %w", domain.ErrStoreUnavailable, courseID, err)
	}

	var materials []domain.CourseMaterial
	if err := json.Unmarshal(data, &materials); err != nil {
		return nil, fmt.Errorf("%w: parsing course %s: %w", domain.ErrStoreUnavailable, courseID, err)
	}
	// The filename is authoritative for course membership.
	for i := range materials {
		materials[i].CourseID = courseID
	}
	return materials, nil
}

// ListCourses returns the course IDs derived from the directory's JSON files.
func (s *MaterialStore) ListCourses(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: listing courses: %w", domain.ErrStoreUnavailable, err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if id, ok := courseIDFromFile(entry.Name()); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Watch registers a callback invoked when a course file changes on disk.
func (s *MaterialStore) Watch(fn func(courseID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// Close stops the filesystem watcher.
func (s *MaterialStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.fsWatcher.Close()
	})
	return err
}

func (s *MaterialStore) coursePath(courseID string) string {
	return filepath.Join(s.dir, courseID+".json")
}

func (s *MaterialStore) handleEvents() {
	for {
		select {
		case event, ok := <-s.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			courseID, ok := courseIDFromFile(filepath.Base(event.Name))
			if !ok {
				continue
			}
			logger.Debug("course file changed: %s (%s)", courseID, event.Op)
			s.notify(courseID)

		case err, ok := <-s.fsWatcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				logger.Warn("material watcher error: %v", err)
			}
		}
	}
}

func (s *MaterialStore) notify(courseID string) {
	s.mu.RLock()
	watchers := append([]func(string){}, s.watchers...)
	s.mu.RUnlock()
	for _, fn := range watchers {
		fn(courseID)
	}
}

func courseIDFromFile(name string) (string, bool) {
	if !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".") {
		return "", false
	}
	id := strings.TrimSuffix(name, ".json")
	if id == "" {
		return "", false
	}
	return id, true
}
