// Package courses serves the course catalogue: admin create and edit,
// public listing without content, and content for authenticated callers.
package courses

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

var (
	ErrNotFound = errors.New("course not found")
	ErrInvalid  = errors.New("invalid course")
)

// Section is one lesson of a course.
type Section struct {
	Title       string `json:"title"`
	VideoURL    string `json:"videoUrl"`
	Description string `json:"description"`
}

func (s Section) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&s.VideoURL, validation.Required, is.URL),
	)
}

type Course struct {
	ID             string    `json:"_id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	EstimatedPrice float64   `json:"estimatedPrice,omitempty"`
	Level          string    `json:"level"`
	Tags           string    `json:"tags"`
	DemoURL        string    `json:"demoUrl"`
	Content        []Section `json:"courseData,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Public returns c without its lesson content.
func (c Course) Public() Course {
	c.Content = nil
	return c
}

// Repository persists courses. Get and Update return ErrNotFound for an
// unknown id.
type Repository interface {
	Create(ctx context.Context, c *Course) (*Course, error)
	Update(ctx context.Context, c *Course) (*Course, error)
	List(ctx context.Context) ([]Course, error)
	Get(ctx context.Context, id string) (*Course, error)
}

// Input is the payload for creating a course.
type Input struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	EstimatedPrice float64   `json:"estimatedPrice"`
	Level          string    `json:"level"`
	Tags           string    `json:"tags"`
	DemoURL        string    `json:"demoUrl"`
	Content        []Section `json:"courseData"`
}

func (in Input) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Description, validation.Required, validation.Length(1, 5000)),
		validation.Field(&in.Price, validation.Min(0.0)),
		validation.Field(&in.EstimatedPrice, validation.Min(0.0)),
		validation.Field(&in.Level, validation.Length(0, 50)),
		validation.Field(&in.DemoURL, is.URL),
		validation.Field(&in.Content),
	)
}

// Patch carries optional course changes. Nil fields are left alone.
type Patch struct {
	Name           *string    `json:"name"`
	Description    *string    `json:"description"`
	Price          *float64   `json:"price"`
	EstimatedPrice *float64   `json:"estimatedPrice"`
	Level          *string    `json:"level"`
	Tags           *string    `json:"tags"`
	DemoURL        *string    `json:"demoUrl"`
	Content        *[]Section `json:"courseData"`
}

// apply writes p onto c and returns the merged course as an Input for
// validation.
func (p Patch) apply(c *Course) Input {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.EstimatedPrice != nil {
		c.EstimatedPrice = *p.EstimatedPrice
	}
	if p.Level != nil {
		c.Level = *p.Level
	}
	if p.Tags != nil {
		c.Tags = *p.Tags
	}
	if p.DemoURL != nil {
		c.DemoURL = *p.DemoURL
	}
	if p.Content != nil {
		c.Content = *p.Content
	}
	return Input{
		Name:           c.Name,
		Description:    c.Description,
		Price:          c.Price,
		EstimatedPrice: c.EstimatedPrice,
		Level:          c.Level,
		Tags:           c.Tags,
		DemoURL:        c.DemoURL,
		Content:        c.Content,
	}
}
