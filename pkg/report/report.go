// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package report renders the collected version records as an HTML page.
package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"

	"github.com/Masterminds/sprig/v3"

	"github.com/datawire/kolla-versions/pkg/config"
	"github.com/datawire/kolla-versions/pkg/inventory"
	"github.com/datawire/kolla-versions/pkg/reproducible"
	"github.com/datawire/kolla-versions/pkg/version"
)

// DefaultOutput is where the report is written unless told otherwise.
const DefaultOutput = "versions.html"

//go:embed templates/versions.html.tmpl
var defaultTemplate string

// Context is everything the template gets to see.
type Context struct {
	LastUpdate        string
	Release           string
	ReleaseName       string
	DownstreamRelease string

	ProjectNames []string
	Projects     map[string]*inventory.Record

	ServiceNames []string
	Services     map[string]*inventory.Record
}

func NewContext(cfg *config.Config, projects, services map[string]*inventory.Record, downstreamRelease string) *Context {
	return &Context{
		LastUpdate:        reproducible.Timestamp(),
		Release:           cfg.KollaRelease,
		ReleaseName:       cfg.OpenStackRelease,
		DownstreamRelease: downstreamRelease,

		ProjectNames: inventory.Names(projects),
		Projects:     projects,

		ServiceNames: inventory.Names(services),
		Services:     services,
	}
}

// behind reports whether ver is known to be older than latest.
func behind(ver, latest string) bool {
	if ver == "" || ver == inventory.Unknown || latest == "" || latest == inventory.Unknown {
		return false
	}
	return version.Compare(ver, latest) < 0
}

func funcMap() template.FuncMap {
	funcs := sprig.FuncMap()
	funcs["behind"] = behind
	return funcs
}

// Parse parses a report template.
func Parse(name, content string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(funcMap()).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return tmpl, nil
}

// Default returns the built-in report template.
func Default() *template.Template {
	tmpl, err := Parse("versions.html", defaultTemplate)
	if err != nil {
		panic(err)
	}
	return tmpl
}

// Load parses a report template from a file.  An empty filename means the built-in template.
func Load(filename string) (*template.Template, error) {
	if filename == "" {
		return Default(), nil
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Parse(filepath.Base(filename), string(content))
}

// Render executes the template.  Nothing is written to w unless the template executes
// successfully.
func Render(w io.Writer, tmpl *template.Template, data *Context) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// WriteFile renders the report and then replaces filename with it.
func WriteFile(filename string, tmpl *template.Template, data *Context) error {
	var buf bytes.Buffer
	if err := Render(&buf, tmpl, data); err != nil {
		return err
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
