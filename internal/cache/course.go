package cache

import (
	"github.com/estrateji/edusync/internal/errors"
	"github.com/estrateji/edusync/internal/models"
	"github.com/estrateji/edusync/internal/storage"
)

// CourseCache stores full denormalized course documents for offline browsing
// of the course list and detail views. Last writer wins per course.
type CourseCache struct {
	s docStore
}

// NewCourseCache creates a CourseCache over kv.
func NewCourseCache(kv storage.KV) *CourseCache {
	return &CourseCache{s: docStore{kv: kv, prefix: "courses:"}}
}

// Put replaces the snapshot for course.ID wholesale.
func (c *CourseCache) Put(course *models.CourseSnapshot) error {
	if course == nil || course.ID == "" {
		return errors.New(errors.ErrInvalid, "course snapshot must have an id")
	}
	return c.s.put(course.ID, course)
}

// Get returns the cached snapshot, with found=false on a missing course.
func (c *CourseCache) Get(courseID string) (*models.CourseSnapshot, bool, error) {
	var course models.CourseSnapshot
	ok, err := c.s.get(courseID, &course)
	if !ok || err != nil {
		return nil, false, err
	}
	return &course, true, nil
}

// Has reports whether courseID is cached.
func (c *CourseCache) Has(courseID string) bool {
	return c.s.has(courseID)
}

// Keys returns the ids of all cached courses.
func (c *CourseCache) Keys() ([]string, error) {
	return c.s.keys()
}

// Clear wipes all cached courses. User-triggered only.
func (c *CourseCache) Clear() error {
	return c.s.clear()
}
