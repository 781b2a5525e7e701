package courses

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo   Repository
	now    func() time.Time
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		repo:   repo,
		now:    time.Now,
		logger: logger.With("component", "courses"),
	}
}

func (s *Service) Create(ctx context.Context, in Input) (*Course, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	now := s.now().UTC()
	c, err := s.repo.Create(ctx, &Course{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Description:    in.Description,
		Price:          in.Price,
		EstimatedPrice: in.EstimatedPrice,
		Level:          in.Level,
		Tags:           in.Tags,
		DemoURL:        in.DemoURL,
		Content:        in.Content,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	s.logger.InfoContext(ctx, "course created", "course_id", c.ID)
	return c, nil
}

// Edit applies p to the course and validates the merged result.
func (s *Service) Edit(ctx context.Context, id string, p Patch) (*Course, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.apply(c).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	c.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "course updated", "course_id", id)
	return updated, nil
}

// List returns every course without content, newest first.
func (s *Service) List(ctx context.Context) ([]Course, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	out := make([]Course, 0, len(all))
	for _, c := range all {
		out = append(out, c.Public())
	}
	return out, nil
}

// Get returns one course without content.
func (s *Service) Get(ctx context.Context, id string) (*Course, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	pub := c.Public()
	return &pub, nil
}

// Content returns the lessons of a course.
func (s *Service) Content(ctx context.Context, id string) ([]Section, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Content == nil {
		return []Section{}, nil
	}
	return c.Content, nil
}
