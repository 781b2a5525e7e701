// Package mail renders templated messages and delivers them over SMTP, or
// to the log in development.
package mail

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/*.html
var templateFS embed.FS

var ErrUnknownTemplate = errors.New("mail: unknown template")

// Renderer renders the embedded pongo2 templates by name. The name is the
// file name without the .html suffix.
type Renderer struct {
	set *pongo2.TemplateSet
}

func NewRenderer() *Renderer {
	return &Renderer{set: pongo2.NewSet("mail", pongo2.NewFSLoader(templateFS))}
}

func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	file := path.Join("templates", strings.TrimSuffix(name, ".html")+".html")
	if _, err := fs.Stat(templateFS, file); err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}

	tpl, err := r.set.FromCache(file)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	out, err := tpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", fmt.Errorf("render template %s: %w", name, err)
	}
	return out, nil
}
