// Package template renders attribute records into detail lines using
// text/template with sprout functions.
package template

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/AntoineGS/ticklist/internal/source"
	"github.com/go-sprout/sprout"
	"github.com/go-sprout/sprout/registry/std"
	sproutstrings "github.com/go-sprout/sprout/registry/strings"
)

// Data is what a detail template sees for one record.
type Data struct {
	// Attrs holds the fields keyed by column name, for {{ .Attrs.column }}
	Attrs  map[string]string
	Key    string
	Fields []source.Field
}

// Engine renders detail lines from a parsed template.
type Engine struct {
	tmpl *template.Template
}

// Funcs returns the template function map.
func Funcs() (template.FuncMap, error) {
	handler := sprout.New()
	if err := handler.AddRegistries(std.NewRegistry(), sproutstrings.NewRegistry()); err != nil {
		return nil, fmt.Errorf("registering template functions: %w", err)
	}
	return template.FuncMap(handler.Build()), nil
}

// NewEngine parses text as a detail template.
func NewEngine(text string) (*Engine, error) {
	funcs, err := Funcs()
	if err != nil {
		return nil, err
	}

	t, err := template.New("detail").Option("missingkey=zero").Funcs(funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing detail template: %w", err)
	}

	return &Engine{tmpl: t}, nil
}

// Render executes the template for rec.
func (e *Engine) Render(rec source.Record) (string, error) {
	var buf bytes.Buffer
	data := Data{Key: rec.Key, Fields: rec.Fields, Attrs: rec.Map()}

	if err := e.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering detail for %q: %w", rec.Key, err)
	}

	return buf.String(), nil
}
