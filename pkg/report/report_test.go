// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package report_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/datawire/kolla-versions/pkg/config"
	"github.com/datawire/kolla-versions/pkg/htmlutil"
	"github.com/datawire/kolla-versions/pkg/inventory"
	"github.com/datawire/kolla-versions/pkg/report"
	"github.com/datawire/kolla-versions/pkg/testutil"
)

func testContext() *report.Context {
	cfg := &config.Config{
		KollaRelease:     "3.0.2",
		OpenStackRelease: "newton",
	}
	projects := map[string]*inventory.Record{
		"nova":  {Name: "nova", Bundled: "14.0.1", Current: "14.0.2", Downstream: "14.0.1"},
		"heat":  {Name: "heat", Bundled: "7.0.0", Current: inventory.Unknown, Downstream: inventory.Unknown},
		"rally": {Name: "rally", Bundled: "0.7.0", Current: "0.7.0", Downstream: "0.7.0"},
	}
	services := map[string]*inventory.Record{
		"rabbitmq":  {Name: "rabbitmq", Current: "3.6.10", Kolla: "3.6.5", Downstream: "3.6.10"},
		"memcached": {Name: "memcached", Current: "1.5.0", Kolla: "1.5.0", Downstream: "1.4.25"},
	}
	ctx := report.NewContext(cfg, projects, services, "3.1.0")
	ctx.LastUpdate = "2016-10-20 18:40:00"
	return ctx
}

func render(t *testing.T, data *report.Context) *html.Node {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, report.Default(), data))
	doc, err := html.Parse(&buf)
	require.NoError(t, err)
	return doc
}

func classOf(t *testing.T, table *html.Node) map[string]string {
	t.Helper()
	ret := make(map[string]string)
	for _, tr := range htmlutil.FindAll(table, "tr") {
		cells := htmlutil.FindAll(tr, "td")
		if len(cells) == 0 {
			continue
		}
		class, _ := htmlutil.GetAttr(tr, "", "class")
		ret[htmlutil.Text(cells[0])] = class
	}
	return ret
}

func TestNewContext(t *testing.T) {
	t.Parallel()
	ctx := testContext()
	assert.Equal(t, "3.0.2", ctx.Release)
	assert.Equal(t, "newton", ctx.ReleaseName)
	assert.Equal(t, "3.1.0", ctx.DownstreamRelease)
	assert.Equal(t, []string{"heat", "nova", "rally"}, ctx.ProjectNames)
	assert.Equal(t, []string{"memcached", "rabbitmq"}, ctx.ServiceNames)
}

func TestRenderDefault(t *testing.T) {
	t.Parallel()
	doc := render(t, testContext())

	var metas []string
	for _, meta := range htmlutil.FindAll(doc, "meta") {
		if name, ok := htmlutil.GetAttr(meta, "", "name"); ok {
			content, _ := htmlutil.GetAttr(meta, "", "content")
			metas = append(metas, name+"="+content)
		}
	}
	assert.Equal(t, []string{"kolla-release=3.0.2", "openstack-release=newton"}, metas)
	assert.Equal(t, "Kolla 3.0.2 (Newton) versions", htmlutil.Text(htmlutil.FindAll(doc, "title")[0]))
	assert.Equal(t, "Last update: 2016-10-20 18:40:00", htmlutil.Text(htmlutil.FindByID(doc, "last-update")))
	assert.Equal(t, "Downstream release: 3.1.0", htmlutil.Text(htmlutil.FindByID(doc, "downstream-release")))

	projects := htmlutil.FindByID(doc, "projects")
	require.NotNil(t, projects)
	assert.Equal(t,
		[][]string{
			{"heat", "7.0.0", "-", "-"},
			{"nova", "14.0.1", "14.0.2", "14.0.1"},
			{"rally", "0.7.0", "0.7.0", "0.7.0"},
		},
		htmlutil.TableRows(projects))
	assert.Equal(t,
		map[string]string{
			"heat":  "",
			"nova":  "behind",
			"rally": "",
		},
		classOf(t, projects))

	services := htmlutil.FindByID(doc, "services")
	require.NotNil(t, services)
	assert.Equal(t,
		[][]string{
			{"memcached", "1.5.0", "1.5.0", "1.4.25"},
			{"rabbitmq", "3.6.10", "3.6.5", "3.6.10"},
		},
		htmlutil.TableRows(services))
	assert.Equal(t,
		map[string]string{
			"memcached": " downstream-behind",
			"rabbitmq":  "behind",
		},
		classOf(t, services))
}

func TestRenderNoServices(t *testing.T) {
	t.Parallel()
	data := testContext()
	data.ServiceNames = nil
	data.Services = nil
	doc := render(t, data)
	assert.NotNil(t, htmlutil.FindByID(doc, "projects"))
	assert.Nil(t, htmlutil.FindByID(doc, "services"))
	assert.Nil(t, htmlutil.FindByID(doc, "downstream-release"))
}

func TestRenderEscapes(t *testing.T) {
	t.Parallel()
	data := testContext()
	data.Projects["nova"].Current = "<b>14</b>"
	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, report.Default(), data))
	assert.Contains(t, buf.String(), "&lt;b&gt;14&lt;/b&gt;")
	assert.NotContains(t, buf.String(), "<b>14</b>")
}

func TestCustomTemplate(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	tmplFile := filepath.Join(dir, "custom.tmpl")
	require.NoError(t, os.WriteFile(tmplFile, []byte(
		`{{ range .ProjectNames }}{{ . | upper }} {{ end }}@ {{ .LastUpdate }}`), 0o644))

	tmpl, err := report.Load(tmplFile)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, report.Render(&buf, tmpl, testContext()))
	testutil.AssertEqualText(t, "HEAT NOVA RALLY @ 2016-10-20 18:40:00", buf.String())
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := report.Load(filepath.Join(dir, "missing.tmpl"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	badFile := filepath.Join(dir, "bad.tmpl")
	require.NoError(t, os.WriteFile(badFile, []byte(`{{ .Release `), 0o644))
	_, err = report.Load(badFile)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing template")

	tmpl, err := report.Load("")
	require.NoError(t, err)
	assert.Equal(t, "versions.html", tmpl.Name())
}

func TestWriteFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		out := filepath.Join(dir, "versions.html")
		require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))
		require.NoError(t, report.WriteFile(out, report.Default(), testContext()))
		content, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(content), "<!DOCTYPE html>")
		assert.Contains(t, string(content), "14.0.2")
	})
	t.Run("failure-leaves-output-alone", func(t *testing.T) {
		t.Parallel()
		out := filepath.Join(dir, "broken.html")
		require.NoError(t, os.WriteFile(out, []byte("previous report"), 0o644))
		tmpl, err := report.Parse("broken", `before {{ .NoSuchField }} after`)
		require.NoError(t, err)
		err = report.WriteFile(out, tmpl, testContext())
		assert.Error(t, err)
		content, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, "previous report", string(content))
	})
}
