// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

package releases_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/datawire/dlib/dlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datawire/kolla-versions/pkg/config"
	"github.com/datawire/kolla-versions/pkg/inventory"
	"github.com/datawire/kolla-versions/pkg/releases"
)

var deliverables = map[string]string{
	"/deliverables/ocata/nova.yaml": `
launchpad: nova
team: nova
type: service
release-model: cycle-with-milestones
releases:
  - version: 15.0.0
    projects:
      - repo: openstack/nova
        hash: 6ba97a8a8c16db6c58f1a43a2a3dfa0c7d6b0ed5
  - version: 15.0.2
    projects:
      - repo: openstack/nova
        hash: 9c2c05e06e4c0d10e7f6b8ba6c1c4e0fc6a2b2d1
`,
	"/deliverables/_independent/gnocchi.yaml": `
releases:
  - version: 3.0.4
  - version: 3.1.2
`,
	"/deliverables/_independent/rally.yaml": `
releases:
  - version: 0.1.0
`,
	"/deliverables/ocata/empty.yaml":  "releases: []\n",
	"/deliverables/ocata/broken.yaml": "releases: {{{\n",
}

type stubServer struct {
	mu       sync.Mutex
	requests []string
}

func (s *stubServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.Path)
	s.mu.Unlock()
	body, ok := deliverables[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write([]byte(body))
}

func newResolver(t *testing.T, cfg *config.Config) (releases.Resolver, *stubServer) {
	t.Helper()
	stub := &stubServer{}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	return releases.Resolver{
		Client: releases.Client{DeliverableURL: srv.URL + "/deliverables/%s/%s.yaml"},
		Config: cfg,
	}, stub
}

func testConfig() *config.Config {
	return &config.Config{
		KollaRelease:        "4.0.0",
		OpenStackRelease:    "ocata",
		IndependentProjects: []string{"gnocchi", "rally", "tempest"},
		Versions: map[string]string{
			"rally":                   "0.8.1",
			"neutron_lbaas_dashboard": "2.0.0",
		},
		DownstreamVersions: map[string]string{
			"nova": "15.0.0",
		},
	}
}

func TestLatest(t *testing.T) {
	t.Parallel()
	resolver, _ := newResolver(t, testConfig())
	ctx := dlog.NewTestContext(t, true)

	ver, err := resolver.Client.Latest(ctx, "ocata", "nova")
	require.NoError(t, err)
	assert.Equal(t, "15.0.2", ver)

	_, err = resolver.Client.Latest(ctx, "ocata", "empty")
	assert.ErrorIs(t, err, releases.ErrNoReleases)

	_, err = resolver.Client.Latest(ctx, "ocata", "broken")
	assert.Error(t, err)

	_, err = resolver.Client.Latest(ctx, "ocata", "missing")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	t.Parallel()
	resolver, stub := newResolver(t, testConfig())
	ctx := dlog.NewTestContext(t, false)

	records := resolver.Resolve(ctx, map[string]string{
		"nova":                    "15.0.0",
		"gnocchi":                 "3.0.4",
		"glance":                  "14.0.0",
		"broken":                  "1.0.0",
		"rally":                   "0.8.1",
		"tempest":                 "15.0.0",
		"neutron-lbaas-dashboard": "2.0.0",
	})

	assert.Equal(t, &inventory.Record{
		Name:       "nova",
		Bundled:    "15.0.0",
		Current:    "15.0.2",
		Downstream: "15.0.0",
	}, records["nova"])
	assert.Equal(t, &inventory.Record{
		Name:       "gnocchi",
		Bundled:    "3.0.4",
		Current:    "3.1.2",
		Downstream: inventory.Unknown,
	}, records["gnocchi"])

	// missing data degrades to the placeholder without affecting anything else
	assert.Equal(t, inventory.Unknown, records["glance"].Current)
	assert.Equal(t, inventory.Unknown, records["broken"].Current)

	// overrides win over whatever the releases repository says
	assert.Equal(t, "0.8.1", records["rally"].Current)
	assert.Equal(t, "2.0.0", records["neutron-lbaas-dashboard"].Current)
	// ... but only when the settings file supplies a literal
	assert.Equal(t, inventory.Unknown, records["tempest"].Current)

	assert.Len(t, records, 7)
	assert.Contains(t, stub.requests, "/deliverables/_independent/gnocchi.yaml")
	assert.Contains(t, stub.requests, "/deliverables/_independent/tempest.yaml")
	assert.Contains(t, stub.requests, "/deliverables/ocata/glance.yaml")
	for _, req := range stub.requests {
		assert.False(t, strings.Contains(req, "/ocata/gnocchi"), req)
	}
}
