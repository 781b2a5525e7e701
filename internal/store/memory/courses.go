package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/MrEthical07/coursehub/internal/courses"
)

type Courses struct {
	mu   sync.RWMutex
	byID map[string]courses.Course
}

func NewCourses() *Courses {
	return &Courses{byID: make(map[string]courses.Course)}
}

func (s *Courses) Create(_ context.Context, c *courses.Course) (*courses.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[c.ID] = cloneCourse(*c)
	out := cloneCourse(*c)
	return &out, nil
}

func (s *Courses) Update(_ context.Context, c *courses.Course) (*courses.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[c.ID]; !ok {
		return nil, courses.ErrNotFound
	}
	s.byID[c.ID] = cloneCourse(*c)
	out := cloneCourse(*c)
	return &out, nil
}

func (s *Courses) List(_ context.Context) ([]courses.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]courses.Course, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, cloneCourse(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Courses) Get(_ context.Context, id string) (*courses.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, courses.ErrNotFound
	}
	out := cloneCourse(c)
	return &out, nil
}

func cloneCourse(c courses.Course) courses.Course {
	if c.Content != nil {
		c.Content = append([]courses.Section(nil), c.Content...)
	}
	return c
}
