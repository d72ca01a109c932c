// Package memory provides in-memory implementations of driven ports,
// primarily for testing and ephemeral course catalogs.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/doccloud/retrieval/internal/core/domain"
	"github.com/doccloud/retrieval/internal/core/ports/driven"
)

// Ensure MaterialStore implements the interface.
var _ driven.MaterialStore = (*MaterialStore)(nil)

// MaterialStore is an in-memory implementation of driven.MaterialStore.
// Mutations notify registered watchers so dependent indexes can invalidate.
type MaterialStore struct {
	mu        sync.RWMutex
	materials map[string]map[string]domain.CourseMaterial
	watchers  []func(courseID string)
}

// NewMaterialStore creates a new in-memory material store.
func NewMaterialStore() *MaterialStore {
	return &MaterialStore{
		materials: make(map[string]map[string]domain.CourseMaterial),
	}
}

// SaveMaterial stores or updates a material and notifies watchers.
func (s *MaterialStore) SaveMaterial(_ context.Context, m *domain.CourseMaterial) error {
	s.mu.Lock()
	course, ok := s.materials[m.CourseID]
	if !ok {
		course = make(map[string]domain.CourseMaterial)
		s.materials[m.CourseID] = course
	}
	course[m.ID] = *m
	watchers := append([]func(string){}, s.watchers...)
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(m.CourseID)
	}
	return nil
}

// DeleteMaterial removes a material and notifies watchers.
func (s *MaterialStore) DeleteMaterial(_ context.Context, courseID, id string) error {
	s.mu.Lock()
	course, ok := s.materials[courseID]
	if ok {
		delete(course, id)
		if len(course) == 0 {
			delete(s.materials, courseID)
		}
	}
	watchers := append([]func(string){}, s.watchers...)
	s.mu.Unlock()

	if !ok {
		return domain.ErrNotFound
	}
	for _, fn := range watchers {
		fn(courseID)
	}
	return nil
}

// ListMaterials returns all materials for a course.
func (s *MaterialStore) ListMaterials(_ context.Context, courseID string) ([]domain.CourseMaterial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course, ok := s.materials[courseID]
	if !ok {
		return nil, domain.ErrCourseNotFound
	}
	result := make([]domain.CourseMaterial, 0, len(course))
	for id := range course {
		result = append(result, course[id])
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListCourses returns the IDs of all courses with at least one material.
func (s *MaterialStore) ListCourses(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.materials))
	for id := range s.materials {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Watch registers a callback invoked whenever a course's materials change.
func (s *MaterialStore) Watch(fn func(courseID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}
