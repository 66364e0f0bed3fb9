// Copyright (C) 2022  Ambassador Labs
//
// SPDX-License-Identifier: Apache-2.0

// Package releases resolves the latest published release of OpenStack projects, using the
// deliverable files of the openstack/releases repository.
package releases

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/datawire/dlib/dlog"
	"sigs.k8s.io/yaml"

	"github.com/datawire/kolla-versions/pkg/config"
	"github.com/datawire/kolla-versions/pkg/fetch"
	"github.com/datawire/kolla-versions/pkg/inventory"
)

// DefaultDeliverableURL takes the release series and the project name.
const DefaultDeliverableURL = "https://raw.githubusercontent.com/openstack/releases/master/deliverables/%s/%s.yaml"

// Deliverable is the subset of a deliverable file that we care about.
type Deliverable struct {
	Releases []struct {
		Version string `json:"version"`
	} `json:"releases"`
}

var ErrNoReleases = errors.New("deliverable lists no releases")

// Latest returns the version of the last release listed in the deliverable.
func (d Deliverable) Latest() (string, error) {
	if len(d.Releases) == 0 || d.Releases[len(d.Releases)-1].Version == "" {
		return "", ErrNoReleases
	}
	return d.Releases[len(d.Releases)-1].Version, nil
}

type Client struct {
	fetch.Client
	// DeliverableURL defaults to DefaultDeliverableURL.
	DeliverableURL string
}

// Latest fetches the deliverable of a project in a release series and returns its most recently
// listed release.
func (c Client) Latest(ctx context.Context, series, project string) (string, error) {
	urlFmt := c.DeliverableURL
	if urlFmt == "" {
		urlFmt = DefaultDeliverableURL
	}
	content, err := c.Get(ctx, fmt.Sprintf(urlFmt, series, project))
	if err != nil {
		return "", err
	}
	var deliverable Deliverable
	if err := yaml.Unmarshal(content, &deliverable); err != nil {
		return "", fmt.Errorf("deliverable %s/%s: %w", series, project, err)
	}
	return deliverable.Latest()
}

// Overrides names the projects whose releases data is known to be wrong, and the key in the
// settings file's "versions" table that holds the literal to use instead.
var Overrides = map[string]string{
	"rally":                   "rally",
	"tempest":                 "tempest",
	"neutron-lbaas-dashboard": "neutron_lbaas_dashboard",
}

// Resolver fills in the "current" version of each project bundled by Kolla.
type Resolver struct {
	Client Client
	Config *config.Config
}

// Current returns the current version of a single project.  A project without release data
// resolves to inventory.Unknown; that is logged but is not an error.
func (r Resolver) Current(ctx context.Context, project string) string {
	series := r.Config.ReleaseSeries(project)
	current, err := r.Client.Latest(ctx, series, project)
	if err != nil {
		var httpErr *fetch.HTTPError
		if errors.As(err, &httpErr) {
			dlog.Warnf(ctx, "%s: no deliverable in series %s: %v", project, series, err)
		} else {
			dlog.Warnf(ctx, "%s: %v", project, err)
		}
		current = inventory.Unknown
	}
	if key, ok := Overrides[project]; ok {
		if literal := r.Config.Versions[key]; literal != "" {
			dlog.Infof(ctx, "%s: overriding %s with configured version %s", project, current, literal)
			current = literal
		}
	}
	return current
}

// Resolve builds the records for a set of bundled projects (as returned by kolla.Client.Projects).
func (r Resolver) Resolve(ctx context.Context, bundled map[string]string) map[string]*inventory.Record {
	projects := make([]string, 0, len(bundled))
	for project := range bundled {
		projects = append(projects, project)
	}
	sort.Strings(projects)

	records := make(map[string]*inventory.Record, len(bundled))
	for _, project := range projects {
		record := &inventory.Record{
			Name:       project,
			Bundled:    bundled[project],
			Current:    r.Current(ctx, project),
			Downstream: inventory.Unknown,
		}
		if pinned := r.Config.DownstreamVersions[project]; pinned != "" {
			record.Downstream = pinned
		}
		dlog.Debugf(ctx, "%s: bundled=%s current=%s downstream=%s",
			project, record.Bundled, record.Current, record.Downstream)
		records[project] = record
	}
	return records
}
