package handlers

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"

	"github.com/eknkc/pug"
)

// Renderer writes a named page template with data
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// PugRenderer compiles views/<name>.pug on every render, so template edits
// show up without a restart.
type PugRenderer struct {
	dir string
}

// NewPugRenderer creates a renderer reading templates from dir
func NewPugRenderer(dir string) *PugRenderer {
	return &PugRenderer{dir: dir}
}

// Render compiles and executes the template. Output is buffered so a failing
// template never leaves a half-written page.
func (p *PugRenderer) Render(w io.Writer, name string, data any) error {
	template, err := pug.CompileFile(filepath.Join(p.dir, name+".pug"), pug.Options{})
	if err != nil {
		return fmt.Errorf("compile %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := template.Execute(&buf, data); err != nil {
		return fmt.Errorf("execute %s: %w", name, err)
	}

	_, err = buf.WriteTo(w)
	return err
}
