package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrEthical07/coursehub/internal/courses"
	"github.com/MrEthical07/coursehub/internal/dbx"
)

const (
	courseColumns        = `id, name, description, price, estimated_price, level, tags, demo_url, content, created_at, updated_at`
	invalidTextRepresent = "22P02"
)

// Courses is the Postgres courses.Repository. Sections are stored as a
// JSONB array.
type Courses struct {
	db dbx.DBTX
}

func NewCourses(db dbx.DBTX) *Courses {
	return &Courses{db: db}
}

func scanCourse(row rowScanner) (*courses.Course, error) {
	var (
		c       courses.Course
		content []byte
	)
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Price, &c.EstimatedPrice,
		&c.Level, &c.Tags, &c.DemoURL, &content, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isBadID(err) {
			return nil, courses.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(content) > 0 {
		if err := json.Unmarshal(content, &c.Content); err != nil {
			return nil, fmt.Errorf("decode course content: %w", err)
		}
	}
	return &c, nil
}

// isBadID reports a malformed UUID, which is treated as a missing course.
func isBadID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresent
}

func encodeContent(sections []courses.Section) ([]byte, error) {
	if sections == nil {
		sections = []courses.Section{}
	}
	return json.Marshal(sections)
}

func (r *Courses) Create(ctx context.Context, c *courses.Course) (*courses.Course, error) {
	content, err := encodeContent(c.Content)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO courses (id, name, description, price, estimated_price, level, tags, demo_url, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING `+courseColumns,
		c.ID, c.Name, c.Description, c.Price, c.EstimatedPrice, c.Level, c.Tags, c.DemoURL,
		content, c.CreatedAt, c.UpdatedAt)
	return scanCourse(row)
}

func (r *Courses) Update(ctx context.Context, c *courses.Course) (*courses.Course, error) {
	content, err := encodeContent(c.Content)
	if err != nil {
		return nil, err
	}
	row := r.db.QueryRowContext(ctx,
		`UPDATE courses
		 SET name = $2, description = $3, price = $4, estimated_price = $5, level = $6,
		     tags = $7, demo_url = $8, content = $9, updated_at = $10
		 WHERE id = $1
		 RETURNING `+courseColumns,
		c.ID, c.Name, c.Description, c.Price, c.EstimatedPrice, c.Level, c.Tags, c.DemoURL,
		content, c.UpdatedAt)
	return scanCourse(row)
}

// List returns every course, newest first.
func (r *Courses) List(ctx context.Context) ([]courses.Course, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []courses.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *Courses) Get(ctx context.Context, id string) (*courses.Course, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	return scanCourse(row)
}
